package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "./data/warrior.db", cfg.DBPath)
	assert.Equal(t, "mpt-warrior", cfg.CosmosDatabase)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "@hourly", cfg.LeaderboardSchedule)
	assert.Equal(t, 5, cfg.AuthRateBurst)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JWT_SECRET=from-file\nPORT=9090\n"), 0o600))

	// Values already in the environment take precedence over the file.
	t.Setenv("PORT", "7070")
	// godotenv only fills unset keys; t.Setenv restores the previous value afterwards.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TOKEN_TTL", "a week")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:              8080,
			StorageDriver:     DriverSQLite,
			DBPath:            "x.db",
			CosmosDatabase:    "mpt-warrior",
			JWTSecret:         "s",
			TokenTTL:          time.Hour,
			AuthRatePerSecond: 1,
			AuthRateBurst:     1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sqlite ok", func(c *Config) {}, false},
		{"driver is case-insensitive", func(c *Config) { c.StorageDriver = "SQLite" }, false},
		{"unknown driver", func(c *Config) { c.StorageDriver = "postgres" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"cosmos without endpoint", func(c *Config) { c.StorageDriver = DriverCosmos }, true},
		{"cosmos with endpoint", func(c *Config) {
			c.StorageDriver = DriverCosmos
			c.CosmosEndpoint = "https://acct.documents.azure.com:443/"
		}, false},
		{"cosmos with connection string", func(c *Config) {
			c.StorageDriver = DriverCosmos
			c.CosmosConnectionString = "AccountEndpoint=https://x/;AccountKey=eA==;"
		}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"zero burst", func(c *Config) { c.AuthRateBurst = 0 }, true},
		{"trusted proxies", func(c *Config) { c.TrustedProxies = "10.0.0.0/8, 192.168.1.4" }, false},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = "10.0.0.0/99" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrustedProxyPrefixes(t *testing.T) {
	c := Config{TrustedProxies: " 10.1.2.3/8 ,192.168.1.4,, ::1 "}
	prefixes, err := c.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.1.4/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	empty, err := (&Config{}).TrustedProxyPrefixes()
	require.NoError(t, err)
	assert.Empty(t, empty)
}
