package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across almanac.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Pipeline
	FieldStage     = "stage"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldRules     = "rules"
	FieldStages    = "stages"
	FieldSeeds     = "seeds"
	FieldIntervals = "intervals"

	// Search
	FieldStrategy   = "strategy"
	FieldCandidate  = "candidate"
	FieldCandidates = "candidates"
	FieldBound      = "bound"
	FieldWorkers    = "workers"
	FieldShardSize  = "shard_size"
	FieldValue      = "value"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
	FieldHints = "hints"

	// Files and paths
	FieldFile   = "file"
	FieldLine   = "line"
	FieldFormat = "format"
	FieldPath   = "path"

	// Counts and sizes
	FieldCount = "count"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	componentKey contextKey = "logger_component"
)

// WithRunID adds a resolution run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns base enriched with fields extracted from context.
// A nil base falls back to the global Logger.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	r := resolver.New(p, logger.ComponentLogger("resolver"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
