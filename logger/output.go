package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information the CLI prints regardless of severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Minimum values, converted values
	OutputErrors                        // Errors with hints

	// Level 1 (-v)
	OutputPipelineSummary // Stage chain, rule counts, seed domain size

	// Level 2 (-vv)
	OutputTiming // Per-strategy duration and candidate counts
	OutputConfig // Effective resolve configuration

	// Level 3 (-vvv)
	OutputTrace // Every intermediate stage value during convert
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:         VerbosityUser,
	OutputErrors:          VerbosityUser,
	OutputPipelineSummary: VerbosityInfo,
	OutputTiming:          VerbosityDebug,
	OutputConfig:          VerbosityDebug,
	OutputTrace:           VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
