package offline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheResponse stores a memoized answer for a category and language.
// A blank id gets a generated one; the effective id is returned. Writing
// an existing id overwrites the row. The write, the per-category eviction
// sweep, and the bookkeeping refresh commit as one transaction.
func (s *Store) CacheResponse(ctx context.Context, id, category, query, response, language string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	payload, size, err := encodePayload(response)
	if err != nil {
		return "", encodingErr("cache response", err)
	}

	now := nowMillis()
	row := CachedResponse{
		ID:           id,
		Category:     category,
		Query:        query,
		Response:     payload,
		Language:     language,
		CachedAt:     now,
		AccessCount:  0,
		LastAccessed: now,
		SizeBytes:    size,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := evictOverLimit(tx, responseFamily, &s.opts, category); err != nil {
			return err
		}
		return refreshMetadata(tx, responseFamily)
	})
	if err != nil {
		return "", storageErr("cache response", err)
	}
	return id, nil
}

// GetCachedResponses returns memoized answers for a category, most useful
// first. An empty language matches any language. Returned rows get their
// access count and recency bumped so they rank higher for eviction
// survival. Storage failures degrade to an empty result; the caller
// fetches fresh from the server.
func (s *Store) GetCachedResponses(ctx context.Context, category, language string, limit int) ([]CachedResponse, error) {
	if limit <= 0 {
		limit = s.opts.MaxResponsesPerCategory
	}

	q := s.db.WithContext(ctx).
		Where("category = ?", category).
		Order("access_count DESC, last_accessed DESC").
		Limit(limit)
	if language != "" {
		q = q.Where("language = ?", language)
	}

	var rows []CachedResponse
	if err := q.Find(&rows).Error; err != nil {
		s.logger.Warn("response lookup failed, treating as miss",
			slog.String("category", category), slog.Any("error", err))
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}

	s.touchRows(ctx, responseFamily, rowIDs(rows))

	now := nowMillis()
	for i := range rows {
		rows[i].AccessCount++
		rows[i].LastAccessed = now
	}
	return rows, nil
}

// touchRows bumps access_count and last_accessed for the given ids as one
// small write transaction, so concurrent readers do not lose updates. A
// failed bump only weakens future ranking; the read itself already
// succeeded, so the error is logged and swallowed.
func (s *Store) touchRows(ctx context.Context, fam family, ids []string) {
	if len(ids) == 0 {
		return
	}
	now := nowMillis()
	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(fam.model).Where("id IN ?", ids).Updates(map[string]any{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": now,
		}).Error
	})
	if err != nil {
		s.logger.Warn("access bump failed", slog.String("table", fam.table), slog.Any("error", err))
	}
}

// accessTracked is implemented by the families whose reads bump access
// counters.
type accessTracked interface{ rowID() string }

func (r CachedResponse) rowID() string { return r.ID }
func (f CachedFAQ) rowID() string      { return f.ID }

func rowIDs[R accessTracked](rows []R) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.rowID()
	}
	return ids
}
