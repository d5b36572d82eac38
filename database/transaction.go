package database

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"
)

// TransactionConfig controls retry behavior for write transactions.
type TransactionConfig struct {
	// MaxRetries is the maximum number of attempts on busy errors.
	MaxRetries int

	// BaseDelay is the initial delay before a retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff between retries.
	MaxDelay time.Duration
}

// DefaultTransactionConfig returns sensible defaults for SQLite transactions.
func DefaultTransactionConfig() TransactionConfig {
	return TransactionConfig{
		MaxRetries: 10,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// PerformWrite executes f inside a write transaction, retrying with
// exponential backoff on SQLite busy errors.
//
// Write serialization is left to SQLite itself: busy_timeout provides native
// lock waiting, _txlock=immediate prevents lock upgrade deadlocks, and WAL
// mode keeps readers unblocked during the write. The transaction boundary is
// what keeps compound sequences (write, evict, refresh bookkeeping) atomic.
func PerformWrite(logger *slog.Logger, db *gorm.DB, f func(tx *gorm.DB) error) error {
	return PerformWriteWithConfig(logger, db, f, DefaultTransactionConfig())
}

// PerformWriteWithConfig executes a write transaction with custom retry
// configuration.
func PerformWriteWithConfig(logger *slog.Logger, db *gorm.DB, f func(tx *gorm.DB) error, cfg TransactionConfig) error {
	var err error
	for i := 0; i < cfg.MaxRetries; i++ {
		if i > 0 {
			delay := retryDelay(i, cfg.BaseDelay, cfg.MaxDelay)
			logger.Info("retrying write transaction",
				slog.Int("attempt", i+1),
				slog.Duration("delay", delay),
				slog.Any("error", err))
			time.Sleep(delay)
		}

		tx := db.Session(&gorm.Session{
			SkipDefaultTransaction: true,
		}).Begin()

		if tx.Error != nil {
			return fmt.Errorf("database: begin transaction: %w", tx.Error)
		}

		err = f(tx)
		if err != nil {
			tx.Rollback()
			if !isBusyError(err) {
				return err
			}
			continue
		}

		err = tx.Commit().Error
		if err != nil {
			tx.Rollback()
			if isBusyError(err) {
				continue
			}
			return fmt.Errorf("database: commit transaction: %w", err)
		}

		return nil
	}
	return fmt.Errorf("database: transaction failed after %d retries: %w", cfg.MaxRetries, err)
}

// retryDelay calculates exponential backoff with 20% jitter.
func retryDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.2 * float64(delay))
	return delay + jitter
}

// isBusyError checks if the error is a database busy/locked error.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database is busy") ||
		strings.Contains(msg, "locked") ||
		strings.Contains(msg, "busy")
}
