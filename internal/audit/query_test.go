package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain"
)

// seedStore populates a store with the access-log shapes the records system
// produces: routine views, a download, an unauthorized probe, a report run.
func seedStore(t *testing.T) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	ctx := context.Background()

	base := time.Date(2024, 10, 18, 13, 0, 0, 0, time.UTC)
	seed := []domain.Entry{
		{Actor: "Officer Smith", Action: domain.ActionViewed, Resource: "CASE-2024-001", ResourceKind: domain.KindCase, Status: domain.StatusSuccess, Timestamp: base.Add(10 * time.Minute)},
		{Actor: "Evidence Custodian", Action: domain.ActionDownloaded, Resource: "ITEM-001", ResourceKind: domain.KindEvidence, Status: domain.StatusSuccess, Timestamp: base.Add(20 * time.Minute)},
		{Actor: "Unknown User", Action: "Attempted Access", Resource: "CASE-2024-003", ResourceKind: domain.KindCase, Status: domain.StatusUnauthorized, Timestamp: base.Add(30 * time.Minute)},
		{Actor: "Officer Johnson", Action: domain.ActionGenerated, Resource: "Report-001", ResourceKind: domain.KindReport, Status: domain.StatusSuccess, Timestamp: base.Add(40 * time.Minute)},
		{Actor: "Lab Technician", Action: domain.ActionModified, Resource: "CASE-2024-002", ResourceKind: domain.KindCase, Status: domain.StatusFailed, Timestamp: base.Add(50 * time.Minute)},
	}
	for _, e := range seed {
		_, err := store.Append(ctx, e)
		require.NoError(t, err)
	}
	return store
}

func TestQuery_NeutralFilterReturnsEverythingInOrder(t *testing.T) {
	store := seedStore(t)
	engine := NewEngine(store)

	got, err := engine.Query(context.Background(), FilterSpec{Text: "", Status: FilterAll})
	require.NoError(t, err)

	all, err := store.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, got)
}

func TestQuery_TextMatchesActorResourceAction(t *testing.T) {
	engine := NewEngine(seedStore(t))
	ctx := context.Background()

	t.Run("actor substring, case-insensitive", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Text: "johnson", Status: FilterAll})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Officer Johnson", got[0].Actor)
	})

	t.Run("resource substring", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Text: "item-001"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ITEM-001", got[0].Resource)
	})

	t.Run("action substring", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Text: "attempted"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.StatusUnauthorized, got[0].Status)
	})

	t.Run("whitespace text is literal, not neutral", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Text: "   "})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no matches is empty, not an error", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Text: "warrant"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQuery_StatusAndKindAndTimeRange(t *testing.T) {
	engine := NewEngine(seedStore(t))
	ctx := context.Background()

	t.Run("status filter", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Status: FilterUnauthorized})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Unknown User", got[0].Actor)
	})

	t.Run("kind filter", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Kind: domain.KindCase})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("predicates are conjunctive", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Kind: domain.KindCase, Status: FilterSuccess})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Officer Smith", got[0].Actor)
	})

	t.Run("time range, from inclusive to exclusive", func(t *testing.T) {
		from := time.Date(2024, 10, 18, 13, 30, 0, 0, time.UTC)
		to := time.Date(2024, 10, 18, 13, 50, 0, 0, time.UTC)
		got, err := engine.Query(ctx, FilterSpec{From: from, To: to})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Unknown User", got[0].Actor)
		assert.Equal(t, "Officer Johnson", got[1].Actor)
	})
}

func TestQuery_PaginationOverFilteredSequence(t *testing.T) {
	engine := NewEngine(seedStore(t))
	ctx := context.Background()

	// Three case entries; paginate within that filtered set.
	page, err := engine.Query(ctx, FilterSpec{Kind: domain.KindCase, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Unknown User", page[0].Actor)

	t.Run("offset past the end is empty", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Kind: domain.KindCase, Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("limit zero means no cap", func(t *testing.T) {
		got, err := engine.Query(ctx, FilterSpec{Kind: domain.KindCase})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestParseStatusFilter(t *testing.T) {
	for _, valid := range []string{"", "all", "success", "failed", "unauthorized"} {
		_, err := ParseStatusFilter(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseStatusFilter("pending")
	assert.Error(t, err)
}
