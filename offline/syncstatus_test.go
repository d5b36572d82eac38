package offline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heet9201/guruai-offline/database"
	"github.com/heet9201/guruai-offline/sqlite"
)

func TestSyncStatusDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	status, err := s.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.LastSyncTimestamp)
	assert.Zero(t, status.LastSuccessfulSync)
	assert.Zero(t, status.PendingSyncCount)
	assert.False(t, status.SyncInProgress)
}

func TestSetSyncInProgressStampsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := nowMillis()
	require.NoError(t, s.SetSyncInProgress(ctx, true))

	status, err := s.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.SyncInProgress)
	assert.GreaterOrEqual(t, status.LastSyncTimestamp, before)

	require.NoError(t, s.SetSyncInProgress(ctx, false))
	status, err = s.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.SyncInProgress)
}

func TestAcquireSyncLeaseIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AcquireSyncLease(ctx))
	assert.ErrorIs(t, s.AcquireSyncLease(ctx), ErrSyncInProgress)

	require.NoError(t, s.ReleaseSyncLease(ctx))
	require.NoError(t, s.AcquireSyncLease(ctx))
}

func TestStaleLeaseClearedOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline.db")
	ctx := context.Background()

	manager := database.NewManager(sqlite.NewDriver(), database.DefaultConfig(path), testLogger())
	db, err := manager.Connect()
	require.NoError(t, err)

	s, err := New(db, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.AcquireSyncLease(ctx))

	// Simulated crash mid-drain: the lease is never released before the
	// process dies.
	require.NoError(t, s.Close())
	require.NoError(t, manager.Close())

	manager2 := database.NewManager(sqlite.NewDriver(), database.DefaultConfig(path), testLogger())
	db2, err := manager2.Connect()
	require.NoError(t, err)
	defer manager2.Close()

	s2, err := New(db2, testLogger())
	require.NoError(t, err)
	defer s2.Close()

	status, err := s2.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.SyncInProgress, "a dead process cannot hold the lease")

	require.NoError(t, s2.AcquireSyncLease(ctx))
}

func TestRecordSuccessfulSync(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := nowMillis()
	require.NoError(t, s.RecordSuccessfulSync(ctx))

	status, err := s.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, status.LastSuccessfulSync, before)
}

func TestConcurrentWritesKeepEvictionBound(t *testing.T) {
	s := newTestStore(t, WithResponseLimit(5))
	ctx := context.Background()

	// Each write-then-evict sequence is one transaction; racing writers
	// must not leave the category over its limit.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id := fmt.Sprintf("w%d-%d", worker, j)
				_, err := s.CacheResponse(ctx, id, "math", "q", "a", "en")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	var count int64
	require.NoError(t, s.db.Model(&CachedResponse{}).Where("category = ?", "math").Count(&count).Error)
	assert.Equal(t, int64(5), count)
}
