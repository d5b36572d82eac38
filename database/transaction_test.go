package database_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/heet9201/guruai-offline/database"
)

type txRecord struct {
	ID    int64 `gorm:"primaryKey"`
	Value string
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&txRecord{}))
	return db
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPerformWriteCommits(t *testing.T) {
	db := newTxTestDB(t)

	err := database.PerformWrite(discard(), db, func(tx *gorm.DB) error {
		return tx.Create(&txRecord{Value: "hello"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&txRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPerformWriteRollsBackOnError(t *testing.T) {
	db := newTxTestDB(t)
	boom := errors.New("boom")

	err := database.PerformWrite(discard(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&txRecord{Value: "doomed"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&txRecord{}).Count(&count).Error)
	assert.Zero(t, count, "failed transaction must leave no partial row")
}

func TestPerformWriteDoesNotRetryLogicErrors(t *testing.T) {
	db := newTxTestDB(t)

	calls := 0
	err := database.PerformWriteWithConfig(discard(), db, func(tx *gorm.DB) error {
		calls++
		return errors.New("constraint violation")
	}, database.TransactionConfig{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "only busy errors are worth retrying")
}
