package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "DB_DRIVER", "DATABASE_DSN", "CORS_ALLOWED_ORIGINS", "SYNC_SHARED_SECRET", "TRANSACTION_READ_LIMIT", "GIN_DEBUG"} {
		t.Setenv(k, "")
	}
	cfg := LoadServer()
	assert.Equal(t, "127.0.0.1:5000", cfg.Addr())
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "./inventory.db", cfg.DatabaseDSN)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 5000, cfg.TransactionReadLimit)
	assert.False(t, cfg.GinDebug)
}

func TestLoadServerPostgresDSN(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a, http://b")

	cfg := LoadServer()
	assert.Contains(t, cfg.DatabaseDSN, "host=db.internal")
	assert.Contains(t, cfg.DatabaseDSN, "dbname=shop")
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
}

func TestLoadClientFileThenEnv(t *testing.T) {
	for _, k := range []string{"MART_DATA_FILE", "MART_API_ENDPOINT", "MART_SHARED_SECRET", "MART_SAVE_DELAY",
		"MART_HEALTH_TIMEOUT", "MART_FETCH_TIMEOUT", "MART_PUSH_TIMEOUT", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "martctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: /var/lib/mart.db\napi_endpoint: http://file/api\nsave_delay: 250ms\n"), 0o600))
	t.Setenv("MART_API_ENDPOINT", "http://env/api")

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/mart.db", cfg.DataFile)
	assert.Equal(t, "http://env/api", cfg.APIEndpoint)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDelay)
	assert.Equal(t, 2*time.Second, cfg.HealthTimeout)
}

func TestLoadClientErrors(t *testing.T) {
	t.Setenv("MART_FETCH_TIMEOUT", "")
	_, err := LoadClient(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch_timeout: 0s\n"), 0o600))
	_, err = LoadClient(path)
	assert.ErrorContains(t, err, "fetch_timeout")
}
