// Package logging configures the process-wide slog logger.
//
// Development output is colored with tint; production deployments set
// LOG_FORMAT=json so log shipping can parse the lines.
//
//	logging.Setup("debug", "text")
//	logging.Setup(cfg.LogLevel, cfg.LogFormat)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a logger at the named level and format as the slog default
// and returns it. Unknown levels mean info; any format but "json" means tint.
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, ParseLevel(level), strings.EqualFold(format, "json"))
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
	}))
}

// ParseLevel maps debug, info, warn and error (any case) to slog levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
