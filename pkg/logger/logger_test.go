package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "production")

	log.Info("revision saved", "item_uuid", "item-1")

	out := buf.String()
	assert.Contains(t, out, `"msg":"revision saved"`)
	assert.Contains(t, out, `"item_uuid":"item-1"`)
}

func TestNewWithWriter_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "development")

	log.Debug("resolving window", "days", 30)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=\"resolving window\"")
	assert.Contains(t, out, "days=30")
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "development")

	log.Info("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}
