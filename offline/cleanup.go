package offline

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// RunCleanup performs the time-based sweep, independent of and
// complementary to count-based eviction:
//
//   - responses and FAQs not accessed within the retention window AND
//     below the proven-useful access count are removed; frequently used
//     rows survive no matter how old,
//   - content not touched within the unsynced window and never confirmed
//     on the server is presumed an abandoned draft and removed; a draft
//     still being edited keeps a fresh updated_at and survives,
//   - plans stay until explicitly deleted and queue items are only removed
//     by acknowledgement, so neither is touched.
//
// Afterwards every metadata row is recomputed and last_cleanup stamped.
// The sweep is idempotent: a second run right after the first removes
// nothing further.
func (s *Store) RunCleanup(ctx context.Context) error {
	now := nowMillis()
	staleAccess := now - s.opts.ResponseRetention.Milliseconds()
	staleUnsynced := now - s.opts.UnsyncedRetention.Milliseconds()

	var removed int64
	err := s.write(ctx, func(tx *gorm.DB) error {
		for _, model := range []any{&CachedResponse{}, &CachedFAQ{}} {
			res := tx.Where("last_accessed < ? AND access_count < ?", staleAccess, s.opts.MinAccessCount).
				Delete(model)
			if res.Error != nil {
				return res.Error
			}
			removed += res.RowsAffected
		}

		res := tx.Where("updated_at < ? AND synced = ?", staleUnsynced, false).
			Delete(&CachedContent{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected

		for _, fam := range families() {
			if err := refreshMetadata(tx, fam); err != nil {
				return err
			}
		}
		return tx.Model(&CacheMetadata{}).Where("1 = 1").
			Update("last_cleanup", now).Error
	})
	if err != nil {
		return storageErr("cleanup", err)
	}

	s.logger.Info("cleanup pass finished", slog.Int64("removed", removed))
	return nil
}

// cleanupLoop runs RunCleanup on a ticker until Close.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunCleanup(context.Background()); err != nil {
				s.logger.Error("background cleanup failed", slog.Any("error", err))
			}
		case <-s.stopCh:
			return
		}
	}
}
