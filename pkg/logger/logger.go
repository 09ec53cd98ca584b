// Package logger provides opinionated logging capabilities for the parley chatbots.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a console logger. Stdout carries chat output, so logs
// go to stderr.
func NewLogger(debug bool) *zap.Logger {
	// Set log level
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	return newConsole(level)
}

// NewQuiet creates a logger that only reports errors. Full-screen
// interfaces use it to keep the terminal clean.
func NewQuiet() *zap.Logger {
	return newConsole(zap.ErrorLevel)
}

func newConsole(level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	return zap.New(core, zap.AddCaller())
}
