package offline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper neutralizes LIKE metacharacters so a literal "100%" in a
// user query does not turn into a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CacheFaq stores a frequently-asked question with its answer. The FAQ
// cache is one partition; the limit applies across all categories, ranked
// by use so canonical answers outlive one-off lookups.
func (s *Store) CacheFaq(ctx context.Context, id, question, answer, category, language string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	payload, size, err := encodePayload(answer)
	if err != nil {
		return "", encodingErr("cache faq", err)
	}

	now := nowMillis()
	row := CachedFAQ{
		ID:           id,
		Question:     question,
		Answer:       payload,
		Category:     category,
		Language:     language,
		CreatedAt:    now,
		AccessCount:  0,
		LastAccessed: now,
		SizeBytes:    size,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := evictOverLimit(tx, faqFamily, &s.opts, ""); err != nil {
			return err
		}
		return refreshMetadata(tx, faqFamily)
	})
	if err != nil {
		return "", storageErr("cache faq", err)
	}
	return id, nil
}

// SearchFaqs matches the query against questions and answers, most used
// first. Empty category or language match anything; an empty query
// matches every FAQ in scope. Returned rows get their access count and
// recency bumped. Storage failures degrade to an empty result.
func (s *Store) SearchFaqs(ctx context.Context, query, category, language string, limit int) ([]CachedFAQ, error) {
	if limit <= 0 {
		limit = s.opts.MaxFaqs
	}

	q := s.db.WithContext(ctx).
		Order("access_count DESC, last_accessed DESC").
		Limit(limit)
	if query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		q = q.Where(`question LIKE ? ESCAPE '\' OR answer LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if language != "" {
		q = q.Where("language = ?", language)
	}

	var rows []CachedFAQ
	if err := q.Find(&rows).Error; err != nil {
		s.logger.Warn("faq search failed, treating as miss",
			slog.String("query", query), slog.Any("error", err))
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}

	s.touchRows(ctx, faqFamily, rowIDs(rows))

	now := nowMillis()
	for i := range rows {
		rows[i].AccessCount++
		rows[i].LastAccessed = now
	}
	return rows, nil
}
