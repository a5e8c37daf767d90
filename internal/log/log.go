// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger

// Init initializes the package-level logger. Production output is JSON;
// debug output is the colored development console format.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapLogger, err = cfg.Build(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log = zapLogger.Sugar()
	return nil
}

// SetLogger replaces the package-level logger. Tests use it with an observer
// core.
func SetLogger(l *zap.Logger) {
	log = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// Logger returns the sugared logger, creating a no-op one if Init was never
// called.
func Logger() *zap.SugaredLogger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Timed logs the duration of a stage when the returned func is called.
//
//	defer log.Timed("render")()
func Timed(stage string) func() {
	start := time.Now()
	return func() {
		Logger().Debugw("stage complete", "stage", stage, "elapsed", time.Since(start))
	}
}

// Package-level convenience functions
func Debugf(template string, args ...interface{}) {
	Logger().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	Logger().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	Logger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	Logger().Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	Logger().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	Logger().Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	Logger().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	Logger().Errorw(msg, keysAndValues...)
}
