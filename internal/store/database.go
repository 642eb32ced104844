// Package store persists mapping configurations, balances, declarations and
// import sessions with gorm on sqlite or postgres.
package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the database connection settings
type Config struct {
	Driver          string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN             string `mapstructure:"dsn" validate:"required"`
	LogLevel        string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"` // minutes
}

// DefaultConfig returns a local sqlite file database
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "dsf.db",
		LogLevel:        "silent",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30,
	}
}

// Database wraps the gorm connection
type Database struct {
	DB *gorm.DB
}

// Open connects to the configured database
func Open(cfg Config) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "database.driver", cfg.Driver,
			fmt.Errorf("unsupported driver"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageFailure, "database", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageFailure, "database", cfg.Driver, err)
	}

	// every connection to an in-memory sqlite database sees its own empty schema
	if cfg.Driver == DriverSQLite && strings.Contains(cfg.DSN, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.StorageError(errors.CodeStorageFailure, "database", cfg.Driver, err)
	}

	logger.GetGlobalLogger().WithComponent("store").WithFields(logger.Fields{
		"driver": cfg.Driver,
	}).Debug("Database connected")

	return &Database{DB: db}, nil
}

// Migrate creates or updates every table
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(
		&MappingConfigModel{},
		&BalanceModel{},
		&DeclarationModel{},
		&ImportSessionModel{},
	); err != nil {
		return errors.StorageError(errors.CodeStorageFailure, "schema", "migrate", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}
