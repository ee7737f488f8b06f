// Package logging builds the process logger: a rotated JSON file under the
// user config directory plus a console core on stderr. The TUI owns stdout,
// so console output stays on stderr and is limited to errors unless verbose
// mode is on.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates the logger. dir is the directory holding the log file,
// typically the config manager's directory. An empty dir disables the file
// core.
func New(dir string, verbose bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	var cores []zapcore.Core

	if dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "catchat.log"),
			MaxSize:    10, // Megabytes
			MaxBackups: 3,  // Files
			MaxAge:     30, // Days
			Compress:   true,
		}
		fileLevel := zap.InfoLevel
		if verbose {
			fileLevel = zap.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), fileLevel))
	}

	consoleLevel := zap.ErrorLevel
	if verbose {
		consoleLevel = zap.DebugLevel
	}
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel))

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
