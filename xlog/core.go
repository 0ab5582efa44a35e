package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (*streamCore)(nil)

// streamCore writes the entries of a logger to one stream. It remembers how
// it was built so the component loggers can reuse the stream and the level
// with other keys.
type streamCore struct {
	zapcore.Core
	lvlEnabler zapcore.LevelEnabler
	ws         zapcore.WriteSyncer
	newEnc     func(cfg zapcore.EncoderConfig) zapcore.Encoder
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
}

func newStreamCore(
	lvlEnabler zapcore.LevelEnabler,
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	if ws == nil {
		return nil
	}
	sc := &streamCore{
		lvlEnabler: lvlEnabler,
		ws:         ws,
		newEnc:     getEncoderByType(encoder),
		lvlEnc:     lvlEnc,
		tsEnc:      tsEnc,
	}
	return sc.reencode(entryEncoderConfig())
}

func (sc *streamCore) reencode(cfg zapcore.EncoderConfig) xLogCore {
	cfg.EncodeLevel = sc.lvlEnc
	cfg.EncodeTime = sc.tsEnc
	clone := *sc
	clone.Core = zapcore.NewCore(sc.newEnc(cfg), sc.ws, sc.lvlEnabler)
	return &clone
}

func entryEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
}

// The callers of the worker pool and fx entries are always the adapters.
func componentEncoderConfig() zapcore.EncoderConfig {
	cfg := entryEncoderConfig()
	cfg.CallerKey = coreKeyIgnored
	cfg.FunctionKey = coreKeyIgnored
	return cfg
}

// componentCore drops the caller keys from core. Cores not built by xlog,
// such as the one of NewNopXLogger, are kept as they are.
func componentCore(core zapcore.Core) zapcore.Core {
	xc, ok := core.(xLogCore)
	if !ok {
		return core
	}
	return xc.reencode(componentEncoderConfig())
}

// newComponentLogger derives the logger handed to a third-party library.
// The entries are named after the library and follow the level of parent.
func newComponentLogger(parent XLogger, name string) XLogger {
	l := &xLogger{}
	l.logger.Store(parent.zap().
		Named(name).
		WithOptions(zap.WrapCore(componentCore)),
	)
	return l
}
