// Package logging configures the process-wide structured logger both
// services log through, and attaches the "service" attribute
// (SPEC_FULL.md §6) that lets one process-wide logger distinguish DHCP
// output from DNS output in a shared log stream.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jroosing/netsvcd/internal/config"
)

// Configure builds the process-wide logger from the logging section of the
// daemon's configuration record and installs it as slog's default.
func Configure(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := io.Writer(os.Stderr)

	var handler slog.Handler
	if cfg.Structured && strings.ToLower(cfg.StructuredFormat) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	if cfg.IncludePID {
		handler = handler.WithAttrs([]slog.Attr{slog.Int("pid", os.Getpid())})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ForService returns a child logger tagged with the given service name
// ("dhcp" or "dns"), so log lines from the two services can be told apart
// in the shared stream without either service knowing about the other.
func ForService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With("service", service)
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
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
