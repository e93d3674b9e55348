//go:build unit

package zap

import (
	"context"
	"errors"
	"testing"

	logpkg "github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, observed := observer.New(level)

	return &Logger{logger: zap.New(core)}, observed
}

func TestLoggerNilReceiverFallsBackToNop(t *testing.T) {
	var nilLogger *Logger

	assert.NotPanics(t, func() {
		nilLogger.Log(context.Background(), logpkg.LevelInfo, "message")
	})
	assert.False(t, nilLogger.Enabled(logpkg.LevelError))
}

func TestLogDispatchesLevels(t *testing.T) {
	logger, observed := newObservedLogger(zapcore.DebugLevel)
	ctx := context.Background()

	logger.Log(ctx, logpkg.LevelDebug, "debug message")
	logger.Log(ctx, logpkg.LevelInfo, "info message", logpkg.String("secret_id", "arn:1"))
	logger.Log(ctx, logpkg.LevelWarn, "warn message")
	logger.Log(ctx, logpkg.LevelError, "error message", logpkg.Err(errors.New("boom")))

	entries := observed.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "arn:1", entries[1].ContextMap()["secret_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestLogSanitizesControlCharacters(t *testing.T) {
	logger, observed := newObservedLogger(zapcore.InfoLevel)

	logger.Log(context.Background(), logpkg.LevelInfo, "line1\nline2", logpkg.String("value", "a\tb"))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, `line1\nline2`, entries[0].Message)
	assert.Equal(t, `a\tb`, entries[0].ContextMap()["value"])
}

func TestLogAddsTraceCorrelation(t *testing.T) {
	logger, observed := newObservedLogger(zapcore.InfoLevel)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.Log(ctx, logpkg.LevelInfo, "with trace")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, traceID.String(), entries[0].ContextMap()["trace_id"])
	assert.Equal(t, spanID.String(), entries[0].ContextMap()["span_id"])
}

func TestWithAddsFields(t *testing.T) {
	logger, observed := newObservedLogger(zapcore.InfoLevel)

	child := logger.With(logpkg.String("component", "secrets"))
	child.Log(context.Background(), logpkg.LevelInfo, "child")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "secrets", entries[0].ContextMap()["component"])
}

func TestEnabled(t *testing.T) {
	logger, _ := newObservedLogger(zapcore.WarnLevel)

	assert.False(t, logger.Enabled(logpkg.LevelInfo))
	assert.True(t, logger.Enabled(logpkg.LevelWarn))
	assert.True(t, logger.Enabled(logpkg.LevelError))
}

func TestSyncHonorsCanceledContext(t *testing.T) {
	logger, _ := newObservedLogger(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, logger.Sync(ctx), context.Canceled)
	assert.NoError(t, logger.Sync(context.Background()))
}

func TestNew(t *testing.T) {
	t.Run("defaults to production info", func(t *testing.T) {
		logger, err := New(Config{})

		require.NoError(t, err)
		assert.True(t, logger.Enabled(logpkg.LevelInfo))
		assert.False(t, logger.Enabled(logpkg.LevelDebug))
	})

	t.Run("development defaults to debug", func(t *testing.T) {
		logger, err := New(Config{Environment: EnvironmentDevelopment})

		require.NoError(t, err)
		assert.True(t, logger.Enabled(logpkg.LevelDebug))
	})

	t.Run("explicit level wins", func(t *testing.T) {
		logger, err := New(Config{Environment: EnvironmentLocal, Level: "warn", Console: true})

		require.NoError(t, err)
		assert.True(t, logger.Enabled(logpkg.LevelWarn))
		assert.False(t, logger.Enabled(logpkg.LevelInfo))
	})

	t.Run("rejects invalid environment", func(t *testing.T) {
		_, err := New(Config{Environment: "moon"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid environment")
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid level")
	})
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input   string
		want    Environment
		wantErr bool
	}{
		{input: "", want: EnvironmentProduction},
		{input: " Staging ", want: EnvironmentStaging},
		{input: "local", want: EnvironmentLocal},
		{input: "prod", want: EnvironmentProduction, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEnvironment(tt.input)

			assert.Equal(t, tt.want, got)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
