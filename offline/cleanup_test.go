package offline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backdateMillis(d time.Duration) int64 {
	return time.Now().Add(-d).UnixMilli()
}

func TestCleanupRemovesStaleLowUseRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Stale and rarely used: removed.
	_, err := s.CacheResponse(ctx, "stale", "math", "q", "a", "en")
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_responses SET last_accessed = ?, access_count = 1 WHERE id = ?",
		backdateMillis(40*24*time.Hour), "stale").Error)

	// Stale but proven useful: kept.
	_, err = s.CacheResponse(ctx, "popular", "math", "q", "a", "en")
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_responses SET last_accessed = ?, access_count = 9 WHERE id = ?",
		backdateMillis(40*24*time.Hour), "popular").Error)

	// Fresh: kept.
	_, err = s.CacheResponse(ctx, "fresh", "math", "q", "a", "en")
	require.NoError(t, err)

	// Same shape for FAQs.
	_, err = s.CacheFaq(ctx, "faq_stale", "q", "a", "general", "en")
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_faqs SET last_accessed = ?, access_count = 0 WHERE id = ?",
		backdateMillis(40*24*time.Hour), "faq_stale").Error)

	require.NoError(t, s.RunCleanup(ctx))

	var ids []string
	require.NoError(t, s.db.Model(&CachedResponse{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []string{"fresh", "popular"}, ids)

	var faqCount int64
	require.NoError(t, s.db.Model(&CachedFAQ{}).Count(&faqCount).Error)
	assert.Zero(t, faqCount)
}

func TestCleanupRemovesAbandonedDrafts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CacheContent(ctx, "draft", "story", "t", "p", nil)
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_content SET created_at = ?, updated_at = ? WHERE id = ?",
		backdateMillis(10*24*time.Hour), backdateMillis(10*24*time.Hour), "draft").Error)

	_, err = s.CacheContent(ctx, "confirmed", "story", "t", "p", nil)
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_content SET created_at = ?, updated_at = ?, synced = ? WHERE id = ?",
		backdateMillis(10*24*time.Hour), backdateMillis(10*24*time.Hour), true, "confirmed").Error)

	require.NoError(t, s.RunCleanup(ctx))

	var ids []string
	require.NoError(t, s.db.Model(&CachedContent{}).Pluck("id", &ids).Error)
	assert.Equal(t, []string{"confirmed"}, ids, "synced rows survive, abandoned drafts do not")
}

func TestCleanupSparesActivelyEditedDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Created long ago but edited just now: re-saving refreshes updated_at
	// while preserving created_at, so the draft is anything but abandoned.
	_, err := s.CacheContent(ctx, "wip", "story", "t", "v1", nil)
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_content SET created_at = ? WHERE id = ?",
		backdateMillis(10*24*time.Hour), "wip").Error)
	_, err = s.CacheContent(ctx, "wip", "story", "t", "v2", nil)
	require.NoError(t, err)

	require.NoError(t, s.RunCleanup(ctx))

	var count int64
	require.NoError(t, s.db.Model(&CachedContent{}).Where("id = ?", "wip").Count(&count).Error)
	assert.Equal(t, int64(1), count, "a recently edited draft must survive the sweep")
}

func TestCleanupNeverTouchesPlansOrQueue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CachePlan(ctx, PlanInput{ID: "p1", Title: "t", Subject: "math", Grade: "5"})
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_plans SET created_at = ?, updated_at = ? WHERE id = ?",
		backdateMillis(365*24*time.Hour), backdateMillis(365*24*time.Hour), "p1").Error)

	_, err = s.EnqueueAction(ctx, "save", "x", 0)
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE sync_queue SET created_at = ?", backdateMillis(365*24*time.Hour)).Error)

	require.NoError(t, s.RunCleanup(ctx))

	var planCount, queueCount int64
	require.NoError(t, s.db.Model(&CachedPlan{}).Count(&planCount).Error)
	require.NoError(t, s.db.Model(&QueueItem{}).Count(&queueCount).Error)
	assert.Equal(t, int64(1), planCount)
	assert.Equal(t, int64(1), queueCount)
}

func TestCleanupIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("r%d", i)
		_, err := s.CacheResponse(ctx, id, "math", "q", "a", "en")
		require.NoError(t, err)
	}
	_, err := s.CacheResponse(ctx, "old", "math", "q", "a", "en")
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_responses SET last_accessed = ? WHERE id = ?",
		backdateMillis(40*24*time.Hour), "old").Error)

	require.NoError(t, s.RunCleanup(ctx))

	var after1 []string
	require.NoError(t, s.db.Model(&CachedResponse{}).Order("id").Pluck("id", &after1).Error)

	require.NoError(t, s.RunCleanup(ctx))

	var after2 []string
	require.NoError(t, s.db.Model(&CachedResponse{}).Order("id").Pluck("id", &after2).Error)
	assert.Equal(t, after1, after2, "second pass must delete nothing further")
}

func TestCleanupStampsMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CacheResponse(ctx, "r1", "math", "q", "a", "en")
	require.NoError(t, err)

	before := nowMillis()
	require.NoError(t, s.RunCleanup(ctx))

	var rows []CacheMetadata
	require.NoError(t, s.db.Find(&rows).Error)
	require.Len(t, rows, len(families()))
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.LastCleanup, before, "table %s", row.TableName_)
	}
}

func TestCustomRetentionOptions(t *testing.T) {
	s := newTestStore(t,
		WithResponseRetention(time.Hour),
		WithMinAccessCount(5),
		WithUnsyncedRetention(time.Hour),
	)
	ctx := context.Background()

	_, err := s.CacheResponse(ctx, "r1", "math", "q", "a", "en")
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE cached_responses SET last_accessed = ?, access_count = 4 WHERE id = ?",
		backdateMillis(2*time.Hour), "r1").Error)

	require.NoError(t, s.RunCleanup(ctx))

	var count int64
	require.NoError(t, s.db.Model(&CachedResponse{}).Count(&count).Error)
	assert.Zero(t, count, "tightened retention should remove the row")
}
