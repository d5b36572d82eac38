// Package sqlite implements database.Driver for SQLite, the storage engine
// used on-device.
package sqlite

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/heet9201/guruai-offline/database"
)

// Driver implements database.Driver for SQLite.
type Driver struct{}

// NewDriver creates a new SQLite driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Name returns "sqlite".
func (d *Driver) Name() string {
	return "sqlite"
}

// Open returns a GORM SQLite dialector.
func (d *Driver) Open(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

// ConfigureDSN adds SQLite-specific options to the DSN.
func (d *Driver) ConfigureDSN(dsn string, cfg *database.Config) string {
	if cfg.TxImmediate && !strings.Contains(dsn, "_txlock") {
		dsn += "?_txlock=immediate"
	}
	return dsn
}

// AfterConnect applies SQLite pragmas.
func (d *Driver) AfterConnect(db *gorm.DB, cfg *database.Config, logger *slog.Logger) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}

	if cfg.EnableWAL {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			logger.Error("failed to apply pragma", slog.String("pragma", pragma), slog.Any("error", err))
			return fmt.Errorf("sqlite: apply pragma %s: %w", pragma, err)
		}
	}

	return nil
}

// Close performs a passive WAL checkpoint before closing.
func (d *Driver) Close(db *gorm.DB, logger *slog.Logger) error {
	logger.Info("performing WAL checkpoint before close")
	return db.Exec("PRAGMA wal_checkpoint(PASSIVE);").Error
}

// Ensure Driver implements database.Driver
var _ database.Driver = (*Driver)(nil)
