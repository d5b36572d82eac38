package offline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanInput is a structured weekly plan handed over by the plan service.
// The store keeps the full payload plus flattened fields so plan lists
// render offline without decoding every payload.
type PlanInput struct {
	ID              string
	Title           string
	Subject         string
	Grade           string
	Payload         any
	Objectives      []string
	Materials       []string
	DurationMinutes int
}

// CachePlan stores a denormalized snapshot of a weekly plan. Re-saving an
// existing id overwrites the snapshot and resets the synced flag.
func (s *Store) CachePlan(ctx context.Context, plan PlanInput) (string, error) {
	id := plan.ID
	if id == "" {
		id = uuid.NewString()
	}

	encoded, size, err := encodePayload(plan.Payload)
	if err != nil {
		return "", encodingErr("cache plan", err)
	}

	now := nowMillis()
	row := CachedPlan{
		ID:               id,
		Title:            plan.Title,
		Subject:          plan.Subject,
		Grade:            plan.Grade,
		Payload:          encoded,
		Objectives:       strings.Join(plan.Objectives, "\n"),
		Materials:        strings.Join(plan.Materials, "\n"),
		TotalDurationMin: plan.DurationMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
		SizeBytes:        size,
		Synced:           false,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "subject", "grade", "payload", "objectives", "materials",
				"total_duration_min", "updated_at", "size_bytes", "synced",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := evictOverLimit(tx, planFamily, &s.opts, ""); err != nil {
			return err
		}
		return refreshMetadata(tx, planFamily)
	})
	if err != nil {
		return "", storageErr("cache plan", err)
	}
	return id, nil
}

// GetCachedPlans returns cached plans, most recently touched first. Empty
// subject or grade match anything. Storage failures degrade to an empty
// result.
func (s *Store) GetCachedPlans(ctx context.Context, subject, grade string, limit int) ([]CachedPlan, error) {
	if limit <= 0 {
		limit = s.opts.MaxPlans
	}

	q := s.db.WithContext(ctx).Order("updated_at DESC").Limit(limit)
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if grade != "" {
		q = q.Where("grade = ?", grade)
	}

	var rows []CachedPlan
	if err := q.Find(&rows).Error; err != nil {
		s.logger.Warn("plan lookup failed, treating as miss",
			slog.String("subject", subject), slog.String("grade", grade), slog.Any("error", err))
		return nil, nil
	}
	return rows, nil
}

// DeletePlan removes one plan row. A missing id is a no-op.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&CachedPlan{}).Error; err != nil {
			return err
		}
		return refreshMetadata(tx, planFamily)
	})
	if err != nil {
		return storageErr("delete plan", err)
	}
	return nil
}

// MarkPlanSynced flags a plan as reflected on the server. A missing id is
// a no-op.
func (s *Store) MarkPlanSynced(ctx context.Context, id string) error {
	err := s.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&CachedPlan{}).Where("id = ?", id).Update("synced", true).Error
	})
	if err != nil {
		return storageErr("mark plan synced", err)
	}
	return nil
}
