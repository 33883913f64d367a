package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/store"
	"github.com/teranos/almanac/version"
)

const examplePath = "../../../almanac/testdata/example.txt"

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// writeConfig creates an isolated config file whose run store lives in a
// temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	content := fmt.Sprintf("[resolve]\nprogress_per_second = 0\n\n[store]\npath = %q\n",
		filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, cfgPath string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()
	return out.String(), err
}

// executeStderr runs the command and returns what it wrote to stderr.
func executeStderr(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func decodeRuns(t *testing.T, out string) []store.Run {
	t.Helper()
	var runs []store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs), out)
	return runs
}

func TestSolveReverse(t *testing.T) {
	out, err := execute(t, writeConfig(t), nil, "solve", examplePath, "--strategy", "reverse", "--json")
	require.NoError(t, err)

	runs := decodeRuns(t, out)
	require.Len(t, runs, 1)
	assert.Equal(t, "reverse", runs[0].Strategy)
	assert.Equal(t, store.StatusOK, runs[0].Status)
	require.NotNil(t, runs[0].Value)
	assert.Equal(t, uint64(46), *runs[0].Value)
	assert.Equal(t, examplePath, runs[0].Source)
	assert.NotEmpty(t, runs[0].InputDigest)
	assert.Equal(t, "unbounded", runs[0].Options["bound"])
}

func TestSolveExplicitZeroBound(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, nil, "solve", examplePath, "--strategy", "reverse", "--bound", "0")
	require.Error(t, err)
	assert.True(t, errors.IsNoSolutionFound(err), "bound 0 scans candidate 0 only")

	out, err := execute(t, cfg, nil, "solve", examplePath, "--strategy", "all", "--bound", "0", "--json")
	require.NoError(t, err)
	for _, r := range decodeRuns(t, out) {
		assert.Equal(t, "0", r.Options["bound"], r.Strategy)
		switch r.Strategy {
		case "reverse", "parallel":
			assert.Equal(t, store.StatusFailed, r.Status, r.Strategy)
		default:
			assert.Equal(t, store.StatusOK, r.Status, r.Strategy)
		}
	}
}

func TestSolveAllStrategies(t *testing.T) {
	out, err := execute(t, writeConfig(t), nil, "solve", examplePath, "--strategy", "all", "--json")
	require.NoError(t, err)

	runs := decodeRuns(t, out)
	require.Len(t, runs, 4)
	values := map[string]uint64{}
	for _, r := range runs {
		require.NotNil(t, r.Value, r.Strategy)
		values[r.Strategy] = *r.Value
	}
	assert.Equal(t, map[string]uint64{"direct": 35, "reverse": 46, "parallel": 46, "forward": 46}, values)
}

func TestSolveTable(t *testing.T) {
	out, err := execute(t, writeConfig(t), nil, "solve", examplePath, "--strategy", "all", "--budget", "5")
	require.NoError(t, err, "one failed strategy out of four is not a command error")

	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "35")
	assert.Contains(t, out, "46")
	assert.Contains(t, out, "failed: ")
}

func TestSolveStdin(t *testing.T) {
	example, err := os.ReadFile(examplePath)
	require.NoError(t, err)

	out, err := execute(t, writeConfig(t), bytes.NewReader(example), "solve", "-", "--strategy", "direct", "--json")
	require.NoError(t, err)

	runs := decodeRuns(t, out)
	require.Len(t, runs, 1)
	assert.Equal(t, uint64(35), *runs[0].Value)
	assert.Equal(t, "-", runs[0].Source)
}

func TestSolveErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, nil, "solve", examplePath, "--strategy", "reverse", "--bound", "45")
	require.Error(t, err)
	assert.True(t, errors.IsNoSolutionFound(err))

	_, err = execute(t, cfg, nil, "solve", examplePath, "--strategy", "sideways")
	assert.Error(t, err)

	_, err = execute(t, cfg, nil, "solve", examplePath, "--shard-size", "0")
	assert.Error(t, err)

	_, err = execute(t, cfg, strings.NewReader("seeds: 1\n"), "solve", "--watch")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "almanac solve input.txt --watch")

	_, err = execute(t, cfg, strings.NewReader("seed-to-soil map:\n1 2 3\n"), "solve", "-")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestSolveRecordAndRuns(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, nil, "solve", examplePath, "--strategy", "reverse", "--record")
	require.NoError(t, err)
	_, err = execute(t, cfg, nil, "solve", examplePath, "--strategy", "direct", "--record")
	require.NoError(t, err)

	out, err := execute(t, cfg, nil, "runs", "ls", "--json")
	require.NoError(t, err)
	runs := decodeRuns(t, out)
	require.Len(t, runs, 2)

	out, err = execute(t, cfg, nil, "runs", "ls", "--strategy", "reverse", "--json")
	require.NoError(t, err)
	runs = decodeRuns(t, out)
	require.Len(t, runs, 1)
	id := runs[0].ID

	out, err = execute(t, cfg, nil, "runs", "show", id[:8])
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "46")
	assert.Contains(t, out, "option shard_size")

	out, err = execute(t, cfg, nil, "runs", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, id[:8])

	out, err = execute(t, cfg, nil, "runs", "prune", "--older-than", "1h")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 0 runs\n", out)

	_, err = execute(t, cfg, nil, "runs", "prune")
	assert.Error(t, err)

	_, err = execute(t, cfg, nil, "runs", "show", "zzzz")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRunsEmpty(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, nil, "runs", "ls")
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded\n", out)

	out, err = execute(t, cfg, nil, "runs", "ls", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestConvert(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"forward", []string{"convert", "79", examplePath}, "82\n"},
		{"forward unmapped", []string{"convert", "13", examplePath}, "35\n"},
		{"reverse", []string{"convert", "82", examplePath, "--reverse"}, "79\n"},
		{"mid chain", []string{"convert", "74", examplePath, "--from", "light"}, "82\n"},
		{"reverse mid chain", []string{"convert", "78", examplePath, "-r", "--from", "temperature"}, "79\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, cfg, nil, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConvertTrace(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, nil, "convert", "79", examplePath, "--trace", "--json")
	require.NoError(t, err)

	var got conversion
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "seed", got.From)
	assert.Equal(t, "location", got.To)
	assert.Equal(t, uint64(82), got.Output)
	require.Len(t, got.Steps, 8)
	assert.Equal(t, "light", got.Steps[4].Label)
	assert.Equal(t, uint64(74), got.Steps[4].Value)

	out, err = execute(t, cfg, nil, "convert", "79", examplePath, "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "DOMAIN")
	assert.Contains(t, out, "humidity")
}

func TestSolveVerbosityOutput(t *testing.T) {
	cfg := writeConfig(t)

	_, stderr, err := executeStderr(t, cfg, "solve", examplePath, "--strategy", "direct")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Pipeline")

	_, stderr, err = executeStderr(t, cfg, "solve", examplePath, "--strategy", "direct", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "seed -> soil")
	assert.Contains(t, stderr, "7 stages")
	assert.NotContains(t, stderr, "Resolve settings")
	assert.NotContains(t, stderr, "candidates in")

	_, stderr, err = executeStderr(t, cfg, "solve", examplePath, "--strategy", "direct", "-vv")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Resolve settings: bound unbounded")
	assert.Contains(t, stderr, "Debug (-vv)")
	assert.Contains(t, stderr, "direct ok after")
}

func TestConvertTraceAtHighestVerbosity(t *testing.T) {
	out, _, err := executeStderr(t, writeConfig(t), "convert", "79", examplePath, "-vvv")
	require.NoError(t, err)
	assert.Contains(t, out, "DOMAIN")
	assert.Contains(t, out, "humidity")
}

func TestPrintError(t *testing.T) {
	err := errors.WithHint(errors.New("boom"), "try again")

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "try again")

	logger.JSONOutput = true
	t.Cleanup(func() { logger.JSONOutput = false })
	buf.Reset()
	printError(&buf, err)
	assert.Empty(t, buf.String(), "JSON logs carry the error instead")
}

func TestConvertInvalidValue(t *testing.T) {
	_, err := execute(t, writeConfig(t), nil, "convert", "abc", examplePath)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "unsigned")
}

func TestAmCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, nil, "am", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"strategy": "reverse"`)
	assert.Contains(t, out, `"progress_per_second": 0`)

	out, err = execute(t, cfg, nil, "am", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[resolve]")

	out, err = execute(t, cfg, nil, "am", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "resolve:")

	_, err = execute(t, cfg, nil, "am", "show", "--format", "xml")
	assert.Error(t, err)

	out, err = execute(t, cfg, nil, "am", "get", "resolve.end_label")
	require.NoError(t, err)
	assert.Equal(t, "location\n", out)

	_, err = execute(t, cfg, nil, "am", "get", "resolve.nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	out, err = execute(t, cfg, nil, "am", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = execute(t, cfg, nil, "am", "where", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"source": "system"`)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, writeConfig(t), nil, "version", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Get(), info)

	out, err = execute(t, writeConfig(t), nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "almanac dev")
}
