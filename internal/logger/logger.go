// Package logger wraps zap with runtime-configurable log levels.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger carries the shared zap instance used across the application.
type Logger struct {
	// Log is the underlying zap logger.
	Log *zap.Logger
	// level allows changing verbosity after initialization.
	level zap.AtomicLevel
}

// New returns a Logger with a no-op zap instance. Call Init to make it
// produce output.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init configures the logger at the given level ("Debug", "Info",
// "Warn", "Error"). It replaces the no-op instance with a production
// zap logger.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	l.level = lvl
	l.Log = log
	return nil
}

// SetLevel changes verbosity at runtime.
func (l *Logger) SetLevel(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	l.level.SetLevel(lvl.Level())
	return nil
}
