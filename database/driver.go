// Package database manages the connection to the device-local database that
// backs the offline cache and sync queue. It exposes a pluggable Driver so
// the store logic stays independent of the concrete database engine.
package database

import (
	"log/slog"

	"gorm.io/gorm"
)

// Driver defines the interface for database-specific operations.
type Driver interface {
	// Name returns the driver name (e.g., "sqlite").
	Name() string

	// Open returns a GORM dialector for the given DSN.
	Open(dsn string) gorm.Dialector

	// ConfigureDSN decorates the DSN with driver-specific options.
	// For SQLite: appends _txlock=immediate.
	ConfigureDSN(dsn string, cfg *Config) string

	// AfterConnect runs driver-specific setup after the connection is
	// established. For SQLite: applies pragmas (WAL, busy_timeout, etc.).
	AfterConnect(db *gorm.DB, cfg *Config, logger *slog.Logger) error

	// Close performs driver-specific cleanup before the connection closes.
	// For SQLite: a passive WAL checkpoint.
	Close(db *gorm.DB, logger *slog.Logger) error
}
