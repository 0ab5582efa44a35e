package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *testMemOutWriter) Sync() error { return nil }

func (w *testMemOutWriter) lines(t *testing.T) []map[string]any {
	w.lock.Lock()
	defer w.lock.Unlock()
	res := make([]map[string]any, 0, 8)
	for _, line := range strings.Split(strings.TrimSpace(w.data.String()), "\n") {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		res = append(res, m)
	}
	return res
}

func testMemLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	w := &testMemOutWriter{}
	opts = append([]XLoggerOption{
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriteSyncer(w),
	}, opts...)
	return NewXLogger(opts...), w
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
}

func TestGetLogLevelOrDefault(t *testing.T) {
	testcases := []struct {
		in       string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"  ", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"trace", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(tt *testing.T) {
			require.Equal(tt, tc.expected, getLogLevelOrDefault(tc.in))
		})
	}
}

func TestXLogger_LevelName(t *testing.T) {
	logger, _ := testMemLogger(t, WithXLoggerLevelName("warn"))
	require.Equal(t, "warn", logger.Level())

	logger, _ = testMemLogger(t, WithXLoggerLevelName(" "))
	require.Equal(t, "debug", logger.Level())
}

func TestXLogger_Levels(t *testing.T) {
	logger, w := testMemLogger(t)
	require.Equal(t, "debug", logger.Level())

	logger.Debug("debug msg", zap.Int("n", 1))
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error(errors.New("boom"), "error msg")
	logger.Logf(zapcore.InfoLevel, "formatted %d", 42)

	logger.IncreaseLogLevel(zapcore.WarnLevel)
	require.Equal(t, "warn", logger.Level())
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 6)
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, float64(1), lines[0]["n"])
	require.Equal(t, "ERROR", lines[3]["lvl"])
	require.Equal(t, "boom", lines[3]["error"])
	require.Equal(t, "formatted 42", lines[4]["msg"])
	require.Equal(t, "kept", lines[5]["msg"])
	require.Contains(t, lines[0]["callAt"], "xlog_test.go")
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, w := testMemLogger(t)

	err := infra.WrapErrorStackWithMessage(errors.New("inner"), "outer")
	logger.ErrorStack(err, "with frames")
	logger.ErrorStack(errors.New("plain"), "without frames")
	logger.ErrorStack(nil, "nil error")

	lines := w.lines(t)
	require.Len(t, lines, 3)
	require.Equal(t, "outer: inner", lines[0]["error"])
	frames, ok := lines[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Equal(t, "plain", lines[1]["error"])
	require.NotContains(t, lines[1], "errorStack")
	require.NotContains(t, lines[2], "error")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := testMemLogger(t,
		WithXLoggerContextFieldExtract("traceId"),
		WithXLoggerContextFieldExtract("cmd", "command"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)

	ctx := context.WithValue(context.Background(), ContextKey("traceId"), "abc")
	ctx = context.WithValue(ctx, ContextKey("secret"), "hidden")
	logger.InfoContext(ctx, "info")
	logger.DebugContext(ctx, "debug")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, errors.New("boom"), "error")

	lines := w.lines(t)
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.Equal(t, "abc", line["traceId"])
		require.Equal(t, "nil", line["command"])
		require.NotContains(t, line, "secret")
	}
	require.Equal(t, "boom", lines[3]["error"])
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriteSyncer(nil))
	})
	require.NotPanics(t, func() {
		l := NewXLogger(
			nil,
			WithXLoggerWriter(StdErr),
			WithXLoggerEncoder(PlainText),
			WithXLoggerLevel(LogLevelError),
			WithXLoggerLevelEncoder(nil),
			WithXLoggerTimeEncoder(nil),
		)
		l.Debug("dropped")
	})
}

func TestNopXLogger(t *testing.T) {
	l := NewNopXLogger()
	require.Equal(t, "fatal", l.Level())
	l.Info("nothing")
	l.ErrorStack(errors.New("nothing"), "nothing")
	require.NoError(t, l.Sync())
}

func TestStreamCore(t *testing.T) {
	w := &testMemOutWriter{}
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	require.Nil(t, newStreamCore(lvlEnabler, JSON, nil, nil, nil))

	core := newStreamCore(
		lvlEnabler,
		logEncoderType(6), // unknown encoder falls back to JSON
		w,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, core)
	require.True(t, core.Enabled(zapcore.DebugLevel))
	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, core.Enabled(zapcore.WarnLevel))
	require.True(t, core.Enabled(zapcore.ErrorLevel))
	lvlEnabler.SetLevel(zapcore.DebugLevel)

	ent := core.With([]zap.Field{zap.String("key", "value")}).
		Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "direct"}, nil)
	require.NotNil(t, ent)
	ent.Write()

	component := componentCore(core)
	require.NoError(t, component.Write(zapcore.Entry{
		Level:      zapcore.InfoLevel,
		LoggerName: "Tree",
		Message:    "component",
		Caller:     zapcore.NewEntryCaller(0, "xlog_test.go", 1, true),
	}, nil))
	require.NoError(t, component.Sync())

	// The component core follows the level of the stream it was derived from.
	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, component.Enabled(zapcore.InfoLevel))

	lines := w.lines(t)
	require.Len(t, lines, 2)
	require.Equal(t, "value", lines[0]["key"])
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, "Tree", lines[1]["component"])
	require.Equal(t, "INFO", lines[1]["lvl"])
	require.NotContains(t, lines[1], "callAt")
}

func TestComponentLogger(t *testing.T) {
	nop := zapcore.NewNopCore()
	require.Equal(t, nop, componentCore(nop))
	require.NotPanics(t, func() {
		newComponentLogger(NewNopXLogger(), "Nop").Info("nothing")
	})

	parent, w := testMemLogger(t)
	child := newComponentLogger(parent, "Child")
	parent.Info("from parent")
	child.Info("from child", zap.Int("n", 1))
	parent.IncreaseLogLevel(zapcore.WarnLevel)
	child.Info("dropped")
	child.Warn("kept")
	require.NoError(t, child.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 3)
	require.Contains(t, lines[0]["callAt"], "xlog_test.go")
	require.NotContains(t, lines[0], "component")
	require.Equal(t, "Child", lines[1]["component"])
	require.Equal(t, float64(1), lines[1]["n"])
	require.NotContains(t, lines[1], "callAt")
	require.Equal(t, "kept", lines[2]["msg"])
}
