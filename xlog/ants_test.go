package xlog

import (
	"sync"
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestAntsXLogger_ParentLogLevelChanged(t *testing.T) {
	var logger *AntsXLogger
	logger.Printf("test %d", 123)

	parentLogger, w := testMemLogger(t)
	logger = NewAntsXLogger(parentLogger)
	parentLogger.IncreaseLogLevel(zapcore.InfoLevel)
	logger.Printf("test %d", 1)
	parentLogger.IncreaseLogLevel(zapcore.FatalLevel)
	logger.Printf("test %d", 2)
	parentLogger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Printf("test %d", 3)
	require.NoError(t, parentLogger.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 2)
	require.Equal(t, "WorkerPool", lines[0]["component"])
	require.Equal(t, "test 1", lines[0]["msg"])
	require.Equal(t, "test 3", lines[1]["msg"])
}

func TestAntsXLogger_AntsPool(t *testing.T) {
	parentLogger, w := testMemLogger(t)
	logger := NewAntsXLogger(parentLogger)

	p, err := antsv2.NewPool(2, antsv2.WithLogger(logger))
	require.NoError(t, err)
	defer p.Release()

	var wg sync.WaitGroup
	wg.Add(2)
	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		parentLogger.Logf(LogLevelDebug.zapLevel(), "test %d", 123)
	}))
	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		panic("xlogger panic in ants pool")
	}))
	wg.Wait()

	require.Eventually(t, func() bool {
		for _, line := range w.lines(t) {
			if line["component"] == "WorkerPool" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, parentLogger.Sync())
}
