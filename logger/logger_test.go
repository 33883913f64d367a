package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: VerbosityInfo},
		{name: "Console output mode", jsonOutput: false, verbosity: VerbosityUser},
		{name: "Console debug", jsonOutput: false, verbosity: VerbosityDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			err := Initialize(tt.jsonOutput, tt.verbosity)
			require.NoError(t, err)
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			want := VerbosityToLevel(tt.verbosity)
			assert.True(t, Logger.Desugar().Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, Logger.Desugar().Core().Enabled(want-1))
			}

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(LevelName(tt.verbosity), func(t *testing.T) {
			assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity))
		})
	}
}

func TestShouldOutput(t *testing.T) {
	assert.True(t, ShouldOutput(VerbosityUser, OutputResults))
	assert.True(t, ShouldOutput(VerbosityUser, OutputErrors))
	assert.False(t, ShouldOutput(VerbosityUser, OutputPipelineSummary))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputPipelineSummary))
	assert.False(t, ShouldOutput(VerbosityInfo, OutputTiming))
	assert.True(t, ShouldOutput(VerbosityDebug, OutputTiming))
	assert.False(t, ShouldOutput(VerbosityDebug, OutputTrace))
	assert.True(t, ShouldOutput(VerbosityTrace, OutputTrace))
	assert.False(t, ShouldOutput(VerbosityDebug, OutputCategory(99)))
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithComponent(ctx, "resolver")

	LoggerFromContext(ctx, base).Infow("scan finished", FieldValue, 46)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-1", fields[FieldRunID])
	assert.Equal(t, "resolver", fields[FieldComponent])
	assert.EqualValues(t, 46, fields[FieldValue])
}

func TestLoggerFromContextWithoutFields(t *testing.T) {
	base := zap.NewNop().Sugar()
	assert.Same(t, base, LoggerFromContext(context.Background(), base))
}

func TestComponentLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Logger
	Logger = zap.New(core).Sugar()
	defer func() { Logger = prev }()

	ComponentLogger("pipeline").Infow("built")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline", entries[0].LoggerName)
}

func TestPackageHelpersWithNilLogger(t *testing.T) {
	prev := Logger
	Logger = nil
	defer func() { Logger = prev }()

	assert.NotPanics(t, func() {
		Infow("info")
		Warnw("warn")
		Errorw("error")
		Debugw("debug")
		Cleanup()
	})
}
