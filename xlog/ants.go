package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger receives the messages of the stress worker pool. The pool
// only reports recovered worker panics and purge failures, both errors.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{logger: newComponentLogger(logger, "WorkerPool")}
}
