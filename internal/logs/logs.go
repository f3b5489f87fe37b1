// Package logs builds the process-wide slog loggers.
package logs

import (
	"log/slog"
	"os"
	"strings"
)

// GetLoggerFromLevel returns a text handler logger writing to stdout.
func GetLoggerFromLevel(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// GetLoggerFromString maps a configuration string ("DEBUG", "INFO", "WARN",
// "ERROR") to a logger. Unknown strings fall back to INFO.
func GetLoggerFromString(level string) *slog.Logger {
	return GetLoggerFromLevel(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
