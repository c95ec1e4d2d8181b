package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/core/config"
	"bytebazaar/internal/core/events"
	"bytebazaar/internal/core/storage"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.App{Env: "dev"},
		JWT: config.JWT{AccessSecret: "a", RefreshSecret: "b", Issuer: "test", AccessTokenTTLMin: 15, RefreshTokenTTLDay: 7},
		DB:  config.DB{Driver: "sqlite", DSN: "file:" + filepath.Join(dir, "app.db"), AutoMigrate: true, LogLevel: "silent"},
		Storage: config.Storage{
			Driver:   "local",
			TmpDir:   filepath.Join(dir, "tmp"),
			LocalDir: filepath.Join(dir, "files"),
		},
	}
}

func TestBuildSQLiteLocal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d, cleanup, err := Build(context.Background(), testConfig(t), zap.New(core))
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &auth.MemoryDenylist{}, d.Deny)
	assert.Equal(t, 1, logs.FilterMessage("redis not configured: token denylist is per-process").Len())
	assert.IsType(t, events.Noop{}, d.Events)
	assert.IsType(t, &storage.Local{}, d.Store)
	assert.Nil(t, d.Cache)
	assert.False(t, d.SecureCookie)
	assert.Equal(t, "debug", d.Mode)

	n, err := d.Repos.Users.Counts(context.Background(), weekAgo())
	require.NoError(t, err)
	assert.Zero(t, n.Total)
}

func TestBuildRejectsUnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "ftp"
	_, cleanup, err := Build(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	cleanup()
}

func TestProdModeSecuresCookie(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.Env = "production"
	d, cleanup, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.True(t, d.SecureCookie)
	assert.Equal(t, "release", d.Mode)
}

func weekAgo() time.Time { return time.Now().Add(-7 * 24 * time.Hour) }
