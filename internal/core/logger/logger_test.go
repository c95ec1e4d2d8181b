package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestRotateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := NewWithRotate("info", true, FileRotate{Filename: path, MaxSizeMB: 1})
	l.Info("order placed", zap.String("order_id", "o1"))
	l.Debug("dropped below level")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"order_id":"o1"`)
	assert.NotContains(t, string(b), "dropped below level")
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("nonsense", false)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
