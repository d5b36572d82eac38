package offline

import (
	"context"

	"gorm.io/gorm"
)

// EnqueueAction appends a pending mutation to the durable queue and
// refreshes the pending count in the same transaction. Unlike the cache
// families, any storage failure here always surfaces: the caller must not
// believe an action was durably queued when it was not.
func (s *Store) EnqueueAction(ctx context.Context, actionType string, payload any, priority int) (int64, error) {
	encoded, _, err := encodePayload(payload)
	if err != nil {
		return 0, encodingErr("enqueue action", err)
	}

	item := QueueItem{
		ActionType: actionType,
		Payload:    encoded,
		CreatedAt:  nowMillis(),
		RetryCount: 0,
		Priority:   priority,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if err := refreshMetadata(tx, queueFamily); err != nil {
			return err
		}
		return refreshPendingCount(tx)
	})
	if err != nil {
		return 0, storageErr("enqueue action", err)
	}
	return item.ID, nil
}

// ListPendingActions returns every queued mutation in delivery order:
// higher priority first, ties broken by age so old low-priority actions
// are never starved, sequence id as the final tiebreak.
func (s *Store) ListPendingActions(ctx context.Context) ([]QueueItem, error) {
	var items []QueueItem
	err := s.db.WithContext(ctx).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, storageErr("list pending actions", err)
	}
	return items, nil
}

// AcknowledgeAction removes a queue item after confirmed delivery. This
// is the only path that removes queue items; a missing id is a no-op.
func (s *Store) AcknowledgeAction(ctx context.Context, id int64) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&QueueItem{}).Error; err != nil {
			return err
		}
		if err := refreshMetadata(tx, queueFamily); err != nil {
			return err
		}
		return refreshPendingCount(tx)
	})
	if err != nil {
		return storageErr("acknowledge action", err)
	}
	return nil
}

// BumpRetry increments the retry count after a failed delivery attempt.
// The item stays queued; backoff and dead-lettering are the drain loop's
// policy, not the queue's.
func (s *Store) BumpRetry(ctx context.Context, id int64) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&QueueItem{}).Where("id = ?", id).
			Update("retry_count", gorm.Expr("retry_count + 1")).Error
	})
	if err != nil {
		return storageErr("bump retry", err)
	}
	return nil
}

// refreshPendingCount recomputes pending_sync_count from the queue's
// current row count, inside the caller's transaction.
func refreshPendingCount(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&QueueItem{}).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&SyncStatus{}).Where("id = ?", syncStatusID).
		Update("pending_sync_count", count).Error
}
