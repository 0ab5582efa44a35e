package xlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func TestFxXLogger_Lifecycle(t *testing.T) {
	var logger *FxXLogger
	logger.LogEvent(&fxevent.Started{})

	parentLogger, w := testMemLogger(t)
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return NewFxXLogger(parentLogger)
		}),
		fx.Provide(func() string { return "xtree" }),
		fx.Invoke(func(lc fx.Lifecycle, name string) {
			lc.Append(fx.StartStopHook(
				func() error { return nil },
				func() error { return errors.New("stop failure") },
			))
		}),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.Error(t, app.Stop(context.Background()))

	msgs := make(map[string]map[string]any, 8)
	for _, line := range w.lines(t) {
		require.Equal(t, "Lifecycle", line["component"])
		require.NotContains(t, line, "callAt")
		msgs[line["msg"].(string)+"/"+line["lvl"].(string)] = line
	}
	require.Contains(t, msgs, "xtree app started/DEBUG")
	require.Equal(t, "start", msgs["xtree app hook done/DEBUG"]["stage"])

	failed, ok := msgs["xtree app hook failed/ERROR"]
	require.True(t, ok)
	require.Equal(t, "stop", failed["stage"])
	require.Equal(t, "stop failure", failed["error"])
	require.Contains(t, msgs["xtree app stop failed/ERROR"]["error"], "stop failure")
}

func TestFxXLogger_AssembleFailed(t *testing.T) {
	parentLogger, w := testMemLogger(t)
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return NewFxXLogger(parentLogger)
		}),
		fx.Invoke(func(name string) {}),
	)
	require.Error(t, app.Err())

	var failed []map[string]any
	for _, line := range w.lines(t) {
		if line["msg"] == "xtree app assemble failed" {
			failed = append(failed, line)
		}
	}
	require.NotEmpty(t, failed)
	require.Equal(t, "invoke", failed[0]["step"])
	require.NotEmpty(t, failed[0]["function"])
}
