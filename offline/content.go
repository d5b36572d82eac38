package offline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheContent stores user-authored content for offline access. Metadata
// is optional; pass nil to omit it. Re-saving an existing id overwrites
// the row, refreshes updated_at, and resets the synced flag since the
// server no longer reflects the local state.
func (s *Store) CacheContent(ctx context.Context, id, contentType, title string, payload any, metadata map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	encoded, size, err := encodePayload(payload)
	if err != nil {
		return "", encodingErr("cache content", err)
	}

	var meta *string
	if metadata != nil {
		m, _, err := encodePayload(metadata)
		if err != nil {
			return "", encodingErr("cache content metadata", err)
		}
		meta = &m
	}

	now := nowMillis()
	row := CachedContent{
		ID:          id,
		ContentType: contentType,
		Title:       title,
		Payload:     encoded,
		Metadata:    meta,
		CreatedAt:   now,
		UpdatedAt:   now,
		SizeBytes:   size,
		Synced:      false,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content_type", "title", "payload", "metadata", "updated_at", "size_bytes", "synced",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := evictOverLimit(tx, contentFamily, &s.opts, ""); err != nil {
			return err
		}
		return refreshMetadata(tx, contentFamily)
	})
	if err != nil {
		return "", storageErr("cache content", err)
	}
	return id, nil
}

// GetCachedContent returns cached content, most recently touched first.
// An empty contentType matches all types. Storage failures degrade to an
// empty result.
func (s *Store) GetCachedContent(ctx context.Context, contentType string, limit int) ([]CachedContent, error) {
	if limit <= 0 {
		limit = s.opts.MaxContentItems
	}

	q := s.db.WithContext(ctx).Order("updated_at DESC").Limit(limit)
	if contentType != "" {
		q = q.Where("content_type = ?", contentType)
	}

	var rows []CachedContent
	if err := q.Find(&rows).Error; err != nil {
		s.logger.Warn("content lookup failed, treating as miss",
			slog.String("content_type", contentType), slog.Any("error", err))
		return nil, nil
	}
	return rows, nil
}

// DeleteContent removes one content row. A missing id is a no-op.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&CachedContent{}).Error; err != nil {
			return err
		}
		return refreshMetadata(tx, contentFamily)
	})
	if err != nil {
		return storageErr("delete content", err)
	}
	return nil
}

// MarkContentSynced flags a content row as reflected on the server,
// protecting it from the unsynced-draft cleanup window. A missing id is a
// no-op: a row evicted between save and sync confirmation has nothing
// left to protect.
func (s *Store) MarkContentSynced(ctx context.Context, id string) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&CachedContent{}).Where("id = ?", id).Update("synced", true).Error
	})
	if err != nil {
		return storageErr("mark content synced", err)
	}
	return nil
}
