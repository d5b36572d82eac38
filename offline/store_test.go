package offline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection: a second pool connection would see a fresh
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := New(newTestDB(t), testLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreResponsesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CacheResponse(ctx, "r1", "math", "what is 2+2", "4", "en")
	require.NoError(t, err)
	assert.Equal(t, "r1", id)

	rows, err := s.GetCachedResponses(ctx, "math", "en", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "what is 2+2", rows[0].Query)
	assert.Equal(t, "4", rows[0].Response)
	assert.Equal(t, int64(1), rows[0].AccessCount, "read should bump access count")

	// Language filter
	rows, err = s.GetCachedResponses(ctx, "math", "hi", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStoreGeneratesIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CacheResponse(ctx, "", "math", "q", "a", "en")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	id2, err := s.CacheFaq(ctx, "", "q", "a", "general", "en")
	require.NoError(t, err)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id, id2)
}

func TestStoreOverwriteByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CacheResponse(ctx, "r1", "math", "q", "first", "en")
	require.NoError(t, err)
	_, err = s.CacheResponse(ctx, "r1", "math", "q", "second", "en")
	require.NoError(t, err)

	rows, err := s.GetCachedResponses(ctx, "math", "en", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "second", rows[0].Response)
}

func TestStoreContentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CacheContent(ctx, "c1", "story", "The River", map[string]any{"text": "once upon"}, map[string]any{"lang": "en"})
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	rows, err := s.GetCachedContent(ctx, "story", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "The River", rows[0].Title)
	assert.False(t, rows[0].Synced)
	require.NotNil(t, rows[0].Metadata)
	assert.JSONEq(t, `{"lang":"en"}`, *rows[0].Metadata)

	require.NoError(t, s.MarkContentSynced(ctx, "c1"))
	rows, err = s.GetCachedContent(ctx, "story", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Synced)

	require.NoError(t, s.DeleteContent(ctx, "c1"))
	rows, err = s.GetCachedContent(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Deleting again is a no-op, not an error.
	require.NoError(t, s.DeleteContent(ctx, "c1"))
}

func TestStorePlansRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CachePlan(ctx, PlanInput{
		ID:              "p1",
		Title:           "Fractions week",
		Subject:         "math",
		Grade:           "5",
		Payload:         map[string]any{"days": 5},
		Objectives:      []string{"add fractions", "compare fractions"},
		Materials:       []string{"paper strips"},
		DurationMinutes: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	rows, err := s.GetCachedPlans(ctx, "math", "5", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Fractions week", rows[0].Title)
	assert.Equal(t, "add fractions\ncompare fractions", rows[0].Objectives)
	assert.Equal(t, 200, rows[0].TotalDurationMin)

	// Subject filter that matches nothing
	rows, err = s.GetCachedPlans(ctx, "science", "", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.MarkPlanSynced(ctx, "p1"))
	rows, err = s.GetCachedPlans(ctx, "", "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Synced)

	require.NoError(t, s.DeletePlan(ctx, "p1"))
	rows, err = s.GetCachedPlans(ctx, "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CacheResponse(ctx, "r1", "math", "q", "a", "en")
	require.NoError(t, err)
	_, err = s.CacheFaq(ctx, "f1", "q", "a", "general", "en")
	require.NoError(t, err)
	_, err = s.EnqueueAction(ctx, "save_plan", map[string]any{"id": "p1"}, 0)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	report, err := s.GetCacheStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.TotalBytes)
	for table, usage := range report.Families {
		assert.Zero(t, usage.ItemCount, "family %s should be empty", table)
	}

	status, err := s.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.PendingSyncCount)
	assert.False(t, status.SyncInProgress)
}
