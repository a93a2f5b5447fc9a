// Package logger provides logging functionality for the application.
package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface defines the logger interface.
type Interface interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Fatal(msg string, fields ...any)
	With(fields ...any) Interface
	WithError(err error) Interface
	WithComponent(component string) Interface
}

// Logger implements the Interface.
type Logger struct {
	zapLogger *zap.Logger
}

// logLevels maps string levels to zapcore.Level
var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}

// New creates a new logger instance from the given config.
func New(config *Config) (Interface, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Level == "" {
		config.Level = DefaultLevel
	}
	if config.Encoding == "" {
		config.Encoding = DefaultEncoding
	}
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = DefaultOutputPaths
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if config.Development {
		if config.EnableColor {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
		}
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.ConsoleSeparator = " | "
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	var encoder zapcore.Encoder
	if config.Encoding == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(outputWriter(config.OutputPaths)),
		getLogLevel(string(config.Level)),
	)

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if config.Development {
		opts = append(opts, zap.Development())
	}

	return &Logger{zapLogger: zap.New(core, opts...)}, nil
}

// outputWriter selects the destination for log output. File targets are not
// supported; anything other than stderr falls back to stdout.
func outputWriter(paths []string) *os.File {
	for _, p := range paths {
		if p == "stderr" {
			return os.Stderr
		}
	}
	return os.Stdout
}

// getLogLevel converts a string level to zapcore.Level
func getLogLevel(level string) zapcore.Level {
	lvl, exists := logLevels[strings.ToLower(level)]
	if !exists {
		return zapcore.InfoLevel
	}
	return lvl
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...any) {
	l.zapLogger.Debug(msg, toZapFields(fields)...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...any) {
	l.zapLogger.Info(msg, toZapFields(fields)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...any) {
	l.zapLogger.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...any) {
	l.zapLogger.Error(msg, toZapFields(fields)...)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, fields ...any) {
	l.zapLogger.Fatal(msg, toZapFields(fields)...)
}

// With creates a new logger with the given fields.
func (l *Logger) With(fields ...any) Interface {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields)...),
	}
}

// WithError adds an error to the logger.
func (l *Logger) WithError(err error) Interface {
	return l.With("error", err)
}

// WithComponent adds a component name to the logger.
func (l *Logger) WithComponent(component string) Interface {
	return l.With("component", component)
}

// toZapFields converts a list of any fields to zap.Field. Fields are expected
// as alternating string keys and values; a malformed list is recorded under a
// logger_error field instead of being dropped silently.
func toZapFields(fields []any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		switch field := fields[i].(type) {
		case zap.Field:
			zapFields = append(zapFields, field)
		case string:
			if i+1 >= len(fields) {
				zapFields = append(zapFields, zap.NamedError("logger_error", ErrInvalidFields))
				continue
			}
			zapFields = append(zapFields, zap.Any(field, fields[i+1]))
			i++ // Skip the value in the next iteration
		default:
			zapFields = append(zapFields, zap.NamedError("logger_error", ErrInvalidFields))
		}
	}

	return zapFields
}
