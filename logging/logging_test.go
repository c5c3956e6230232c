package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := New(zap.New(core))

	logger.Debugf(context.Background(), "polling every %s", "30s")
	logger.Errorf(context.Background(), "send failed: %v", "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "polling every 30s", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "send failed: boom", entries[1].Message)
}

func TestLoggerAdapterNil(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).Debugf(context.Background(), "dropped")
	})
}

func TestNewZapWritesFile(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "logs", "agent.log")
		cfg := DefaultConfig()
		cfg.Format = "json"
		cfg.Outputs = []string{path}
		cfg.Rotation.Enable = rotate

		logger, err := NewZap(cfg)
		require.NoError(t, err)
		logger.Debug("hidden")
		logger.Info("visible")
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"visible"`)
		assert.NotContains(t, string(data), "hidden")
	}
}

func TestNewZapRejectsInvalidConfig(t *testing.T) {
	_, err := NewZap(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = NewZap(Config{Format: "xml"})
	assert.Error(t, err)
}
