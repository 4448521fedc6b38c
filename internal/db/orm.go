package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-analytics/modernity/internal/config"
	"fleet-analytics/modernity/internal/logging"
)

// Handles bundles the sqlx read pool and the gorm write handle of one database.
type Handles struct {
	Read  *sqlx.DB
	Write *gorm.DB
}

// Close releases both pools.
func (h *Handles) Close() error {
	if h.Read != nil {
		_ = h.Read.Close()
	}
	if h.Write != nil {
		if sqlDB, err := h.Write.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// InitPostgresORM opens the gorm write handle.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	orm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return orm, nil
}

// InitSQLite opens a SQLite file (or ":memory:") and shares the single
// connection between gorm and sqlx, so both see the same in-memory database.
func InitSQLite(path string) (*Handles, error) {
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Handles{Read: sqlx.NewDb(sqlDB, "sqlite3"), Write: orm}, nil
}

// Open connects to the configured warehouse.
func Open(cfg config.Database) (*Handles, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.PostgresDSN()
		read, err := InitPostgres(dsn)
		if err != nil {
			return nil, err
		}
		logging.Info("Connected to Postgres (sqlx)", "host", cfg.Host, "db", cfg.Name)

		write, err := InitPostgresORM(dsn)
		if err != nil {
			read.Close()
			return nil, err
		}
		logging.Info("Connected to Postgres (GORM)", "host", cfg.Host, "db", cfg.Name)
		return &Handles{Read: read, Write: write}, nil

	case config.DriverSQLite:
		h, err := InitSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logging.Info("Opened SQLite warehouse", "path", cfg.SQLitePath)
		return h, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
