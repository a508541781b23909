// Package logger initializes and hands out the process-wide logger so the
// rest of the code never configures logging itself; level and format are
// controlled through the environment.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Shared default logger, reused process-wide so output stays consistent.
var defaultLogger *slog.Logger

// Setup initializes the default logger.
// Output goes to standard error; LOG_LEVEL and LOG_FORMAT pick the level and
// the text/json handler.
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, falling back to Setup when it was never
// initialized (tests, one-off tools).
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
