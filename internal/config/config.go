// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverCosmos = "cosmos"
)

// Config is shared by the server and warriorctl.
type Config struct {
	Port       int    `env:"PORT,default=8080"`
	CORSOrigin string `env:"CORS_ORIGIN,default=*"`

	StorageDriver string `env:"STORAGE_DRIVER,default=sqlite"`
	DBPath        string `env:"DB_PATH,default=./data/warrior.db"`

	CosmosConnectionString string `env:"AZURE_COSMOS_CONNECTION_STRING"`
	CosmosEndpoint         string `env:"AZURE_COSMOS_ENDPOINT"`
	CosmosKey              string `env:"AZURE_COSMOS_KEY"`
	CosmosDatabase         string `env:"AZURE_COSMOS_DATABASE,default=mpt-warrior"`

	// RedisURL enables the shared leaderboard cache. Empty means in-memory.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=168h"`

	// CronSecret guards POST /api/leaderboard/cron-update. Empty disables the route.
	CronSecret          string `env:"CRON_SECRET"`
	LeaderboardSchedule string `env:"LEADERBOARD_SCHEDULE,default=@hourly"`

	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND,default=1"`
	AuthRateBurst     int     `env:"AUTH_RATE_BURST,default=5"`

	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs allowed
	// to set X-Forwarded-For. Empty trusts nobody.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load reads the given .env files (missing ones are skipped), decodes the
// environment and validates the result. Variables already set in the
// environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverCosmos:
		if c.CosmosConnectionString == "" && c.CosmosEndpoint == "" {
			return errors.New("AZURE_COSMOS_CONNECTION_STRING or AZURE_COSMOS_ENDPOINT is required for the cosmos driver")
		}
		if c.CosmosDatabase == "" {
			return errors.New("AZURE_COSMOS_DATABASE is required for the cosmos driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", c.StorageDriver, DriverSQLite, DriverCosmos)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL %s", c.TokenTTL)
	}
	if c.AuthRatePerSecond <= 0 || c.AuthRateBurst < 1 {
		return errors.New("AUTH_RATE_PER_SECOND and AUTH_RATE_BURST must be positive")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, field := range strings.Split(c.TrustedProxies, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.Contains(field, "/") {
			p, err := netip.ParsePrefix(field)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", field, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", field, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
