package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestReadDefaultsAndLegacyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "a-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "r-secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("APP_DB_DRIVER", "mongo")
	t.Setenv("CLIENT_URL", "https://shop.example.com")

	c, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "a-secret", c.JWT.AccessSecret)
	assert.Equal(t, "r-secret", c.JWT.RefreshSecret)
	assert.Equal(t, "mongo", c.DB.Driver)
	assert.Equal(t, "mongodb://localhost:27017", c.DB.DSN)
	assert.Equal(t, []string{"https://shop.example.com"}, c.CORS.ClientURLs)
	assert.Equal(t, 15, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, 7, c.JWT.RefreshTokenTTLDay)
	assert.Equal(t, "local", c.Storage.Driver)
}

func TestReadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
  http:
    port: 8081
jwt:
  access_secret: one
  refresh_secret: two
db:
  driver: sqlite
  dsn: "file::memory:"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := Read(path)
	require.NoError(t, err)
	assert.True(t, c.App.IsProd())
	assert.Equal(t, 8081, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
}

func TestValidateRejectsMissingSecrets(t *testing.T) {
	c := &Config{DB: DB{Driver: "postgres"}}
	assert.Error(t, c.Validate())

	c.JWT = JWT{AccessSecret: "same", RefreshSecret: "same"}
	assert.Error(t, c.Validate())

	c.JWT.RefreshSecret = "other"
	assert.NoError(t, c.Validate())

	c.DB.Driver = "oracle"
	assert.Error(t, c.Validate())
}

func TestExplicitMissingFileFails(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
