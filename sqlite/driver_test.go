package sqlite_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/heet9201/guruai-offline/database"
	"github.com/heet9201/guruai-offline/sqlite"
)

func TestConfigureDSNAppendsImmediateTxLock(t *testing.T) {
	d := sqlite.NewDriver()
	cfg := database.DefaultConfig("cache.db")

	assert.Equal(t, "cache.db?_txlock=immediate", d.ConfigureDSN("cache.db", cfg))
}

func TestConfigureDSNLeavesExistingTxLockAlone(t *testing.T) {
	d := sqlite.NewDriver()
	cfg := database.DefaultConfig("cache.db")

	dsn := "cache.db?_txlock=deferred"
	assert.Equal(t, dsn, d.ConfigureDSN(dsn, cfg))
}

func TestConfigureDSNRespectsDisabledImmediateLock(t *testing.T) {
	d := sqlite.NewDriver()
	cfg := database.DefaultConfig("cache.db")
	cfg.TxImmediate = false

	assert.Equal(t, "cache.db", d.ConfigureDSN("cache.db", cfg))
}

func TestAfterConnectAppliesPragmas(t *testing.T) {
	d := sqlite.NewDriver()
	cfg := database.DefaultConfig(":memory:")
	// WAL is meaningless for an in-memory database.
	cfg.EnableWAL = false
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(d.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, d.AfterConnect(db, cfg, log))

	var busy int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&busy).Error)
	assert.Equal(t, cfg.BusyTimeout, busy)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}
