package log

// This package wraps the zap logger used throughout the storage server
// tooling, hiding initialization details behind a global sugared logger.

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _default *zap.SugaredLogger

func init() {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Encoding = "console"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.DisableStacktrace = true

	ConfigureLogger(zapConfig)
}

// ConfigureLogger configures a global zap logger instance.
func ConfigureLogger(zapConfig zap.Config) *zap.SugaredLogger {
	logger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}

	// Skip this wrapper in a call stack.
	logger = logger.WithOptions(zap.AddCallerSkip(1))

	_default = logger.Sugar()
	return _default
}

// Default returns the default global logger.
func Default() *zap.SugaredLogger {
	return _default
}

// Debug uses fmt.Sprint to construct and log a message.
func Debug(args ...interface{}) {
	Default().Debug(args...)
}

// Info uses fmt.Sprint to construct and log a message.
func Info(args ...interface{}) {
	Default().Info(args...)
}

// Warn uses fmt.Sprint to construct and log a message.
func Warn(args ...interface{}) {
	Default().Warn(args...)
}

// Error uses fmt.Sprint to construct and log a message.
func Error(args ...interface{}) {
	Default().Error(args...)
}

// Fatal uses fmt.Sprint to construct and log a message, then calls os.Exit.
func Fatal(args ...interface{}) {
	Default().Fatal(args...)
}

// Debugf uses fmt.Sprintf to log a templated message.
func Debugf(template string, args ...interface{}) {
	Default().Debugf(template, args...)
}

// Infof uses fmt.Sprintf to log a templated message.
func Infof(template string, args ...interface{}) {
	Default().Infof(template, args...)
}

// Warnf uses fmt.Sprintf to log a templated message.
func Warnf(template string, args ...interface{}) {
	Default().Warnf(template, args...)
}

// Errorf uses fmt.Sprintf to log a templated message.
func Errorf(template string, args ...interface{}) {
	Default().Errorf(template, args...)
}

// Fatalf uses fmt.Sprintf to log a templated message, then calls os.Exit.
func Fatalf(template string, args ...interface{}) {
	Default().Fatalf(template, args...)
}

// With adds a variadic number of fields to the logging context. It accepts a
// mix of strongly-typed zapcore.Field objects and loosely-typed key-value
// pairs.
func With(args ...interface{}) *zap.SugaredLogger {
	return Default().With(args...)
}
