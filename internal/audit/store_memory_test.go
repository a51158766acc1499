package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain"
)

func entry(actor, action, resource string, kind domain.ResourceKind, status domain.Status) domain.Entry {
	return domain.Entry{
		Actor:        actor,
		Action:       action,
		Resource:     resource,
		ResourceKind: kind,
		Status:       status,
		OriginAddr:   "192.168.1.100",
	}
}

func TestInMemoryStore_AppendAssignsOrderedIDs(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first, err := store.Append(ctx, entry("Officer Smith", domain.ActionViewed, "CASE-2024-001", domain.KindCase, domain.StatusSuccess))
	require.NoError(t, err)
	second, err := store.Append(ctx, entry("Officer Smith", domain.ActionModified, "CASE-2024-001", domain.KindCase, domain.StatusSuccess))
	require.NoError(t, err)

	assert.Equal(t, domain.EntryID(1), first)
	assert.Equal(t, domain.EntryID(2), second)

	entries, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].ID)
	assert.Equal(t, second, entries[1].ID)
	assert.False(t, entries[0].Timestamp.IsZero(), "zero timestamp is filled at append")
}

func TestInMemoryStore_KeepsCallerTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	supplied := time.Date(2024, 10, 18, 14, 32, 15, 0, time.UTC)

	e := entry("Officer Smith", domain.ActionViewed, "CASE-2024-001", domain.KindCase, domain.StatusSuccess)
	e.Timestamp = supplied
	_, err := store.Append(context.Background(), e)
	require.NoError(t, err)

	entries, err := store.Scan(context.Background())
	require.NoError(t, err)
	assert.True(t, entries[0].Timestamp.Equal(supplied))
}

func TestInMemoryStore_ScanIsASnapshot(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Append(ctx, entry("Officer Smith", domain.ActionViewed, "CASE-2024-001", domain.KindCase, domain.StatusSuccess))
	require.NoError(t, err)

	snapshot, err := store.Scan(ctx)
	require.NoError(t, err)

	_, err = store.Append(ctx, entry("Admin", domain.ActionModified, "User Settings", domain.KindSettings, domain.StatusSuccess))
	require.NoError(t, err)

	// The earlier snapshot is unaffected by the later append; a fresh scan
	// restarts from the first entry and sees both.
	assert.Len(t, snapshot, 1)
	fresh, err := store.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestInMemoryStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	const writers = 64

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, entry("Officer Smith", domain.ActionViewed, "CASE-2024-001", domain.KindCase, domain.StatusSuccess))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, entries, writers)

	seen := make(map[domain.EntryID]struct{}, writers)
	for _, e := range entries {
		seen[e.ID] = struct{}{}
	}
	assert.Len(t, seen, writers, "every append got a distinct id")
}
