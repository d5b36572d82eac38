package offline

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GetSyncStatus returns the singleton sync bookkeeping row.
func (s *Store) GetSyncStatus(ctx context.Context) (SyncStatus, error) {
	var status SyncStatus
	err := s.db.WithContext(ctx).Where("id = ?", syncStatusID).First(&status).Error
	if err != nil {
		return SyncStatus{}, storageErr("get sync status", err)
	}
	return status, nil
}

// SetSyncInProgress toggles the in-progress flag. Turning it on also
// stamps last_sync_timestamp. This is bookkeeping only; it has no effect
// on delivery.
func (s *Store) SetSyncInProgress(ctx context.Context, inProgress bool) error {
	updates := map[string]any{"sync_in_progress": inProgress}
	if inProgress {
		updates["last_sync_timestamp"] = nowMillis()
	}

	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&SyncStatus{}).Where("id = ?", syncStatusID).Updates(updates).Error
	})
	if err != nil {
		return storageErr("set sync in progress", err)
	}
	return nil
}

// AcquireSyncLease atomically claims the in-progress flag for a drain
// loop. Returns ErrSyncInProgress when another sync already holds it, so
// two concurrent drains cannot re-send the same action.
func (s *Store) AcquireSyncLease(ctx context.Context) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&SyncStatus{}).
			Where("id = ? AND sync_in_progress = ?", syncStatusID, false).
			Updates(map[string]any{
				"sync_in_progress":    true,
				"last_sync_timestamp": nowMillis(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSyncInProgress
		}
		return nil
	})
	if errors.Is(err, ErrSyncInProgress) {
		return ErrSyncInProgress
	}
	if err != nil {
		return storageErr("acquire sync lease", err)
	}
	return nil
}

// ReleaseSyncLease clears the in-progress flag.
func (s *Store) ReleaseSyncLease(ctx context.Context) error {
	return s.SetSyncInProgress(ctx, false)
}

// RecordSuccessfulSync stamps last_successful_sync.
func (s *Store) RecordSuccessfulSync(ctx context.Context) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&SyncStatus{}).Where("id = ?", syncStatusID).
			Update("last_successful_sync", nowMillis()).Error
	})
	if err != nil {
		return storageErr("record successful sync", err)
	}
	return nil
}
