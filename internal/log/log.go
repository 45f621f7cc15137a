// Package log is the process-wide structured logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// ParseLevel maps a settings level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init sets up logging with the given level and optional file writer.
// The file, usually the run's qcflow.log, always receives debug output.
func Init(level string, fileWriter io.Writer) {
	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLevel(level)})
	if fileWriter == nil {
		logger = slog.New(console)
		return
	}
	file := slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger = slog.New(teeHandler{console, file})
}

// With returns a logger carrying args on every record, e.g. the item a
// worker is processing.
func With(args ...any) *slog.Logger { return logger.With(args...) }

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }
