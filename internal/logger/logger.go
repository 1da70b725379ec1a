// Package logger holds the process-wide slog instance configured by the
// root command.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	global *slog.Logger
	mu     sync.RWMutex
)

// SetGlobal installs the logger configured from CLI flags.
func SetGlobal(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// Get returns the configured logger, or an info-level stderr text logger
// when none has been installed (library use, tests).
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if global != nil {
		return global
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler)
}
