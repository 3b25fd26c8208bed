package core

import (
	"io"
	"log/slog"
	"os"
)

// SetupLogger configures the process-wide slog default with a JSON handler
// at the given level. Components log through the slog package functions, so
// this is called once at startup.
func SetupLogger(level string) *slog.Logger {
	return setupLogger(level, os.Stderr)
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
