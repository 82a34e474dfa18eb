// Package logger provides run logging for the asrs CLI.
//
// Messages go to two sinks: the console (stderr by default) and an
// optional run log file. The console shows warnings and errors, plus
// info and debug output when verbose mode is enabled via --verbose.
// The log file, when set, receives everything.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  = zapcore.Lock(zapcore.AddSync(os.Stderr))
	logFile *os.File
	base    = build()
)

// SetVerbose enables or disables verbose console logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = zapcore.Lock(zapcore.AddSync(w))
	base = build()
}

// OpenFile starts writing every message to path, truncating any previous
// content. The returned function closes the file and detaches it.
func OpenFile(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	base = build()
	mu.Unlock()

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		_ = base.Sync()
		if logFile != f {
			return nil
		}
		logFile = nil
		base = build()
		return f.Close()
	}, nil
}

// Debug logs a diagnostic message.
func Debug(format string, args ...any) {
	get().Debugf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	get().Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	get().Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	get().Errorf(format, args...)
}

// Section logs a section header at info level.
func Section(name string) {
	get().Infof("=== %s ===", name)
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// build assembles the logger from the current sinks. Caller holds mu.
func build() *zap.SugaredLogger {
	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}

	consoleCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), output, consoleLevel),
	}

	if logFile != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.AddSync(logFile), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}
