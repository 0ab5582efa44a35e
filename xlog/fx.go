package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger prints the lifecycle of the xtree app: the start and stop hooks
// of the metrics exporter and the worker pool, and the failures while the
// app is assembled. Successful provides and invokes are not printed.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hook("start", e.FunctionName, e.CallerName, e.Runtime.String(), e.Err)
	case *fxevent.OnStopExecuted:
		l.hook("stop", e.FunctionName, e.CallerName, e.Runtime.String(), e.Err)
	case *fxevent.Supplied:
		l.assembleFailed(e.Err, "supply", zap.String("type", e.TypeName))
	case *fxevent.Provided:
		l.assembleFailed(e.Err, "provide", zap.String("constructor", e.ConstructorName))
	case *fxevent.Invoked:
		l.assembleFailed(e.Err, "invoke", zap.String("function", e.FunctionName))
	case *fxevent.RollingBack:
		l.logger.Warn("xtree app start failed, stopping started hooks",
			zap.NamedError("cause", e.StartErr),
		)
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "xtree app start failed")
			return
		}
		l.logger.Debug("xtree app started")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "xtree app stop failed")
			return
		}
		l.logger.Debug("xtree app stopped")
	}
}

func (l *FxXLogger) hook(stage, fn, caller, runtime string, err error) {
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("function", fn),
		zap.String("caller", caller),
		zap.String("in", runtime),
	}
	if err != nil {
		l.logger.Error(err, "xtree app hook failed", fields...)
		return
	}
	l.logger.Debug("xtree app hook done", fields...)
}

func (l *FxXLogger) assembleFailed(err error, step string, fields ...zap.Field) {
	if err == nil {
		return
	}
	l.logger.Error(err, "xtree app assemble failed", append(fields, zap.String("step", step))...)
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{logger: newComponentLogger(logger, "Lifecycle")}
}
