package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger: console output to stdout and, when
// file is set, JSON lines to a rotated log file.
func New(level zapcore.Level, file string) *zap.Logger {
	return zap.New(newCore(level, file, os.Stdout), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func newCore(level zapcore.Level, file string, console io.Writer) zapcore.Core {
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(console), level)
	if file == "" {
		return consoleCore
	}

	fileSync := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // mb
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoder), fileSync, level),
		consoleCore,
	)
}
