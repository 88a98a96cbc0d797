// Package config loads service settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the service.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds every runtime setting of the catalog service.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	Migrate       bool

	JWTSecret   string
	JWTIssuer   string
	TokenTTL    time.Duration
	MaxSessions int

	SearchCacheSize  int
	SeedDemoProducts bool

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Load reads .env (if present) into the process environment and builds a Config from it.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:                getString("APP_ENV", "development"),
		Port:               getString("APP_PORT", "8080"),
		LogLevel:           getString("LOG_LEVEL", "info"),
		StorageDriver:      strings.ToLower(getString("STORAGE_DRIVER", DriverMemory)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getString("SQLITE_PATH", "catalog.db"),
		JWTSecret:          getString("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:          getString("JWT_ISSUER", "catalog-service"),
		CORSAllowedOrigins: splitList(getString("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.Migrate, err = getBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.SeedDemoProducts, err = getBool("SEED_DEMO_PRODUCTS", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("AUTH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxSessions, err = getInt("AUTH_MAX_SESSIONS", 1024); err != nil {
		return nil, err
	}
	if cfg.SearchCacheSize, err = getInt("SEARCH_CACHE_SIZE", 512); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.MaxSessions <= 0 {
		return errors.New("AUTH_MAX_SESSIONS must be positive")
	}
	if c.SearchCacheSize <= 0 {
		return errors.New("SEARCH_CACHE_SIZE must be positive")
	}
	if c.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
