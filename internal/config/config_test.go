package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceEnvKeys = []string{
	"ENV", "PORT", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "LOG_LEVEL",
	"RECOMPUTE_DEFAULT_LIMIT", "RECOMPUTE_MAX_LIMIT", "RECOMPUTE_CONCURRENCY", "RECOMPUTE_TIMEOUT",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS", "OTEL_SERVICE_NAME",
}

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, k := range serviceEnvKeys {
		t.Setenv(k, "")
	}
}

func TestNewServiceConfig_Defaults(t *testing.T) {
	clearServiceEnv(t)

	cfg, err := NewServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "talent_pool.db", cfg.SQLitePath)
	assert.Equal(t, RecomputeSettings{DefaultLimit: 200, MaxLimit: 1000, Concurrency: 4, Timeout: 60 * time.Second}, cfg.Recompute)
	assert.Equal(t, "talent-pool", cfg.OTel.ServiceName)
	assert.Empty(t, cfg.OTel.Endpoint)
}

func TestNewServiceConfig_FromEnv(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/pool.db")
	t.Setenv("RECOMPUTE_DEFAULT_LIMIT", "50")
	t.Setenv("RECOMPUTE_MAX_LIMIT", "500")
	t.Setenv("RECOMPUTE_CONCURRENCY", "8")
	t.Setenv("RECOMPUTE_TIMEOUT", "2m")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")

	cfg, err := NewServiceConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/pool.db", cfg.SQLitePath)
	assert.Equal(t, RecomputeSettings{DefaultLimit: 50, MaxLimit: 500, Concurrency: 8, Timeout: 2 * time.Minute}, cfg.Recompute)
	assert.Equal(t, "http://collector:4318", cfg.OTel.Endpoint)
}

func TestNewServiceConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "unknown driver", key: "STORE_DRIVER", value: "mongo", wantErr: "STORE_DRIVER"},
		{name: "port not a number", key: "PORT", value: "http", wantErr: "invalid PORT"},
		{name: "port out of range", key: "PORT", value: "70000", wantErr: "PORT out of range"},
		{name: "default above max", key: "RECOMPUTE_DEFAULT_LIMIT", value: "5000", wantErr: "RECOMPUTE_DEFAULT_LIMIT"},
		{name: "zero concurrency", key: "RECOMPUTE_CONCURRENCY", value: "0", wantErr: "RECOMPUTE_CONCURRENCY"},
		{name: "bad timeout", key: "RECOMPUTE_TIMEOUT", value: "soon", wantErr: "invalid RECOMPUTE_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServiceEnv(t)
			t.Setenv(tt.key, tt.value)
			cfg, err := NewServiceConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"store_driver": "sqlite",
		"sqlite_path": "local.db",
		"default_limit": 25,
		"concurrency": 2,
		"timeout": "90s"
	}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "local.db", cfg.SQLitePath)
	assert.Equal(t, 25, cfg.DefaultLimit)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "90s", cfg.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ invalid json }`), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "invalid json", path: bad, wantErr: "failed to parse config JSON"},
		{name: "missing file", path: "/nonexistent/path/config.json", wantErr: "failed to read config file"},
		{name: "empty path", path: "", wantErr: "config path is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty is valid", cfg: Config{}},
		{name: "unknown driver", cfg: Config{StoreDriver: "mongo"}, wantErr: "store_driver"},
		{name: "negative limit", cfg: Config{DefaultLimit: -1}, wantErr: "default_limit"},
		{name: "negative max", cfg: Config{MaxLimit: -1}, wantErr: "max_limit"},
		{name: "negative concurrency", cfg: Config{Concurrency: -2}, wantErr: "concurrency"},
		{name: "bad timeout", cfg: Config{Timeout: "forever"}, wantErr: "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{SQLitePath: "mine.db", Concurrency: 3}
	defaults := Config{StoreDriver: "sqlite", SQLitePath: "default.db", Concurrency: 1, DefaultLimit: 10, Timeout: "5s"}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "sqlite", merged.StoreDriver)
	assert.Equal(t, "mine.db", merged.SQLitePath)
	assert.Equal(t, 3, merged.Concurrency)
	assert.Equal(t, 10, merged.DefaultLimit)
	assert.Equal(t, "5s", merged.Timeout)
}

func TestApplyFile(t *testing.T) {
	clearServiceEnv(t)
	cfg, err := NewServiceConfig()
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyFile(&Config{StoreDriver: "sqlite", MaxLimit: 300, Timeout: "10s"}))
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, 300, cfg.Recompute.MaxLimit)
	assert.Equal(t, 200, cfg.Recompute.DefaultLimit)
	assert.Equal(t, 10*time.Second, cfg.Recompute.Timeout)

	assert.Error(t, cfg.ApplyFile(&Config{MaxLimit: 100}), "default limit above new max")
	assert.NoError(t, cfg.ApplyFile(nil))
}
