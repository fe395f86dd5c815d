package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LogLevel can be adjusted at runtime (set from config at startup).
	LogLevel = zap.NewAtomicLevel()
	// Logger is the process-wide structured logger.
	Logger *zap.Logger
)

func init() {
	config := zap.NewProductionConfig()
	config.Level = LogLevel
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig = zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "severity",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var err error
	Logger, err = config.Build()
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Logger)
}

// SetLevel parses a level string ("debug", "info", ...) and applies it.
// Invalid input leaves the current level unchanged.
func SetLevel(level string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		Logger.Warn("invalid log level, keeping current", zap.String("level", level))
		return
	}
	LogLevel.SetLevel(l)
}
