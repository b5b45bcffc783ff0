package helpers

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		verbosity int
		enabled   []slog.Level
		disabled  []slog.Level
	}{
		{name: "quiet", verbosity: 0, enabled: []slog.Level{slog.LevelWarn, slog.LevelError}, disabled: []slog.Level{slog.LevelInfo}},
		{name: "info", verbosity: 1, enabled: []slog.Level{slog.LevelInfo}, disabled: []slog.Level{slog.LevelDebug}},
		{name: "debug", verbosity: 2, enabled: []slog.Level{slog.LevelDebug}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := NewLogger(&bytes.Buffer{}, tc.verbosity, false)
			for _, level := range tc.enabled {
				assert.True(t, logger.Enabled(context.Background(), level), level.String())
			}
			for _, level := range tc.disabled {
				assert.False(t, logger.Enabled(context.Background(), level), level.String())
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, 1, true).Info("received webhook", slog.String("object", "page"))
	assert.Contains(t, buf.String(), `"msg":"received webhook"`)
	assert.Contains(t, buf.String(), `"object":"page"`)
	assert.Contains(t, buf.String(), `"source":`)
}
