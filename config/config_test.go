package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 300*time.Second, cfg.Cache.SearchTTL())
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
	assert.False(t, cfg.App.Verbose())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: development
http:
  address: ":8081"
database:
  driver: sqlite
  sqlite_path: /tmp/flights.db
cache:
  backend: memory
kafka:
  brokers: ["localhost:9092"]
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.True(t, cfg.App.Verbose())
	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 300, cfg.Cache.SearchTTLSeconds)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, ":9090", cfg.GRPC.Address)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  host: filehost\n")
	t.Setenv("DATABASE_HOST", "envhost")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	path := writeConfig(t, "http:\n  allowed_origins: [\"https://a.example\"]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example"}, cfg.HTTP.AllowedOrigins)

	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://b.example,https://c.example")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.HTTP.AllowedOrigins)

	assert.Equal(t, []string{"https://studio.apollographql.com"}, DefaultConfig().HTTP.AllowedOrigins)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"zero ttl", func(c *Config) { c.Cache.SearchTTLSeconds = 0 }},
		{"no retries", func(c *Config) { c.Database.ConnectRetries = 0 }},
		{"sqlite without path", func(c *Config) { c.Database.Driver = DriverSQLite; c.Database.SQLitePath = "" }},
		{"redis without addr", func(c *Config) { c.Redis.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
