// Package logging provides the structured logger every component of the
// collision core accepts, so call sites never import zap directly. It is
// adapted from the teacher's logging package: a thin indirection in front of
// go.uber.org/zap, with a default global logger and a test-logger
// constructor for table-driven tests.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface that broadphase, narrowphase,
// sched and physcore accept for diagnostics; the one message logged today is
// broadphase's rebuild-vs-refit decision. None of the hot per-pair or
// per-pixel paths log (per spec.md §5, "no I/O, no awaits" in the hot path);
// logging happens at step boundaries only.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Named(name string) Logger
}

type impl struct {
	sugar *zap.SugaredLogger
}

func (i *impl) Debugw(msg string, kv ...interface{}) { i.sugar.Debugw(msg, kv...) }
func (i *impl) Infow(msg string, kv ...interface{})  { i.sugar.Infow(msg, kv...) }
func (i *impl) Warnw(msg string, kv ...interface{})  { i.sugar.Warnw(msg, kv...) }
func (i *impl) Errorw(msg string, kv ...interface{}) { i.sugar.Errorw(msg, kv...) }

func (i *impl) Named(name string) Logger {
	return &impl{sugar: i.sugar.Named(name)}
}

func newConfig(level zapcore.Level) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	return cfg
}

// NewLogger returns a logger that emits Info+ logs to stderr, named for the
// given component (e.g. "broadphase", "narrowphase").
func NewLogger(name string) Logger {
	zl, err := newConfig(zapcore.InfoLevel).Build()
	if err != nil {
		panic(err)
	}
	return &impl{sugar: zl.Sugar().Named(name)}
}

// NewDebugLogger returns a logger that emits Debug+ logs to stderr.
func NewDebugLogger(name string) Logger {
	zl, err := newConfig(zapcore.DebugLevel).Build()
	if err != nil {
		panic(err)
	}
	return &impl{sugar: zl.Sugar().Named(name)}
}

// NewTestLogger returns a logger that discards every message, suitable for
// use inside table-driven tests.
func NewTestLogger() Logger {
	zl := zap.NewNop()
	return &impl{sugar: zl.Sugar()}
}

var (
	globalMu     sync.RWMutex
	globalLogger = NewLogger("physcore")
)

// Global returns the package-wide default logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// ReplaceGlobal swaps the package-wide default logger, for callers that want
// to route this module's diagnostics into their own logging pipeline.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}
