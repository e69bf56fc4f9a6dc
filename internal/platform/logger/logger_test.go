package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name        string
		level       string
		logDebug    bool
		logInfo     bool
		logWarnings bool
	}{
		{name: "debug", level: "debug", logDebug: true, logInfo: true, logWarnings: true},
		{name: "info", level: "info", logDebug: false, logInfo: true, logWarnings: true},
		{name: "warn uppercase", level: "WARN", logDebug: false, logInfo: false, logWarnings: true},
		{name: "invalid falls back to info", level: "loud", logDebug: false, logInfo: true, logWarnings: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tc.logDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.logInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tc.logWarnings, strings.Contains(out, "warn message"))
			assert.Same(t, l, slog.Default())
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	l.Info("deck created", slog.String("deck_id", "deck-1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "deck created", entry["msg"])
	assert.Equal(t, "deck-1", entry["deck_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestContextLogger(t *testing.T) {
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	scoped := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	t.Run("missing logger uses fallback", func(t *testing.T) {
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("nil fallback uses default", func(t *testing.T) {
		assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	})

	t.Run("stored logger wins", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
		assert.Same(t, scoped, logger.FromContext(ctx))
	})
}
