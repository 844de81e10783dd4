package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CI", "ENV", "COLLECTOR_URL", "JWT_SECRET", "STORAGE_BACKEND", "SYNC_BACKEND",
		"DB_DRIVER", "DB_PASSWORD", "DISCOVER_LIMIT", "SECRETS_DIR", "SEARCH_DEBOUNCE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultCollectorURL, cfg.CollectorURL)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, "gorm", cfg.SyncBackend)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 24, cfg.DiscoverLimit)
	assert.Equal(t, "flavr-dev-secret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COLLECTOR_URL", "https://collector.example.com/")
	t.Setenv("STORAGE_BACKEND", "gorm")
	t.Setenv("SYNC_BACKEND", "s3")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SEARCH_DEBOUNCE", "1s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://collector.example.com", cfg.CollectorURL)
	assert.Equal(t, "gorm", cfg.StorageBackend)
	assert.Equal(t, "s3", cfg.SyncBackend)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, time.Second, cfg.SearchDebounce)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "etcd")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestLoadConfigRejectsRelativeCollectorURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("COLLECTOR_URL", "collector:8080")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COLLECTOR_URL")
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", t.TempDir())

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestProductionReadsSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("Production"))
	assert.Equal(t, Production, ParseEnvironment("prod"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("staging"))
}
