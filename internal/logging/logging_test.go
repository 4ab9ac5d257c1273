package logging

import (
	"log/slog"
	"testing"

	"github.com/jroosing/netsvcd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{
			name: "default config",
			cfg:  config.LoggingConfig{Level: "INFO"},
		},
		{
			name: "debug level",
			cfg:  config.LoggingConfig{Level: "DEBUG"},
		},
		{
			name: "structured JSON",
			cfg:  config.LoggingConfig{Level: "INFO", Structured: true, StructuredFormat: "json"},
		},
		{
			name: "structured text",
			cfg:  config.LoggingConfig{Level: "INFO", Structured: true, StructuredFormat: "keyvalue"},
		},
		{
			name: "with PID",
			cfg:  config.LoggingConfig{Level: "INFO", IncludePID: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Configure(tt.cfg)
			require.NotNil(t, logger)
		})
	}
}

func TestForService(t *testing.T) {
	base := Configure(config.LoggingConfig{Level: "INFO"})
	dhcp := ForService(base, "dhcp")
	dns := ForService(base, "dns")
	require.NotNil(t, dhcp)
	require.NotNil(t, dns)
	assert.NotSame(t, dhcp, dns)
	assert.NotSame(t, base, dhcp)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}
