// Package offline implements the device-local cache and durable sync queue
// for the teaching-assistant client: bounded caches of server-derived
// content (responses, user content, lesson plans, FAQs) plus an ordered
// queue of user mutations that must survive restarts until delivered.
package offline

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/heet9201/guruai-offline/database"
)

// Store is the offline cache and sync queue. Construct one per database
// file and pass it to collaborators; there is no package-level singleton.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
	opts   Options
	txCfg  database.TransactionConfig
	stopCh chan struct{}
}

// New creates a Store on the given database connection, migrating the
// schema and seeding the sync status row. A background cleanup loop starts
// when WithCleanupInterval is set; stop it with Close.
func New(db *gorm.DB, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "offline"))

	options := applyOptions(opts...)

	if err := db.AutoMigrate(
		&CachedResponse{},
		&CachedContent{},
		&CachedPlan{},
		&CachedFAQ{},
		&QueueItem{},
		&CacheMetadata{},
		&SyncStatus{},
	); err != nil {
		return nil, storageErr("migrate", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		opts:   options,
		txCfg:  database.DefaultTransactionConfig(),
		stopCh: make(chan struct{}),
	}

	if err := s.seedSyncStatus(); err != nil {
		return nil, err
	}

	if options.CleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s, nil
}

// Close stops the background cleanup goroutine. It does not close the
// database connection; that belongs to the database.Manager that opened it.
func (s *Store) Close() error {
	close(s.stopCh)
	return nil
}

// Options returns a copy of the effective options.
func (s *Store) Options() Options {
	return s.opts
}

// ClearAll removes every cached row and queue item and resets bookkeeping.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		for _, fam := range families() {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(fam.model).Error; err != nil {
				return err
			}
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CacheMetadata{}).Error; err != nil {
			return err
		}
		return tx.Model(&SyncStatus{}).Where("id = ?", syncStatusID).Updates(map[string]any{
			"pending_sync_count": 0,
			"sync_in_progress":   false,
		}).Error
	})
	if err != nil {
		return storageErr("clear all", err)
	}
	s.logger.Info("cache cleared")
	return nil
}

// write runs f as one retried write transaction. Compound sequences
// (write, evict, refresh bookkeeping) stay atomic inside it.
func (s *Store) write(ctx context.Context, f func(tx *gorm.DB) error) error {
	return database.PerformWriteWithConfig(s.logger, s.db.WithContext(ctx), f, s.txCfg)
}

// seedSyncStatus creates the singleton sync status row if missing. An
// existing row gets its in-progress flag cleared: a fresh store means no
// drain loop is running in this process, so a persisted true is a
// leftover from a crash mid-sync and would block every future lease.
func (s *Store) seedSyncStatus() error {
	var count int64
	if err := s.db.Model(&SyncStatus{}).Where("id = ?", syncStatusID).Count(&count).Error; err != nil {
		return storageErr("seed sync status", err)
	}
	if count > 0 {
		err := s.db.Model(&SyncStatus{}).Where("id = ?", syncStatusID).
			Update("sync_in_progress", false).Error
		if err != nil {
			return storageErr("seed sync status", err)
		}
		return nil
	}
	if err := s.db.Create(&SyncStatus{ID: syncStatusID}).Error; err != nil {
		return storageErr("seed sync status", err)
	}
	return nil
}

// nowMillis returns the current time in Unix milliseconds, the timestamp
// unit shared by all record families.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
