// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every setting used by the pipeline and the server.
type Config struct {
	AppEnv string
	Port   string

	Paths    Paths
	Database Database
	Redis    Redis

	CacheTTL           time.Duration
	SyncCron           string
	RegionIndexVariant string
}

// Paths locates the pipeline's inputs and outputs.
type Paths struct {
	SourceDir     string
	ReleaseDir    string
	RawFile       string
	RawSheet      string
	ReferenceFile string
}

// Database selects and configures the warehouse.
type Database struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

// Redis configures the optional response cache. An empty Host disables it.
type Redis struct {
	Host     string
	Port     string
	Password string
}

// Load reads .env (when present) then the environment. Variables already set
// in the environment win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	sourceDir := getEnv("SOURCE_DIR", "source")
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		Paths: Paths{
			SourceDir:     sourceDir,
			ReleaseDir:    getEnv("RELEASE_DIR", "release"),
			RawFile:       getEnv("RAW_FILE", filepath.Join(sourceDir, "dataset.xlsx")),
			RawSheet:      getEnv("RAW_SHEET", ""),
			ReferenceFile: getEnv("REFERENCE_FILE", ""),
		},
		Database: Database{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			User:       getEnv("PG_USER", "postgres"),
			Password:   getEnv("PG_PASSWORD", ""),
			Name:       getEnv("PG_DB", "airlines"),
			SQLitePath: getEnv("SQLITE_PATH", "airlines.db"),
		},
		Redis: Redis{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		CacheTTL:           time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		SyncCron:           getEnv("SYNC_CRON", ""),
		RegionIndexVariant: getEnv("REGION_INDEX_VARIANT", "raw"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}
	return nil
}

// PostgresDSN builds the lib/pq connection URL.
func (d Database) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

// Addr is host:port, or "" when Redis is disabled.
func (r Redis) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
