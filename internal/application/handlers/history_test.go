package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoren/circuitelo/internal/domain/mocks"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

func seedHistoryStore(t *testing.T) *mocks.RecordStore {
	t.Helper()
	store := mocks.NewRecordStore()
	ctx := context.Background()

	base := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveEvent(ctx, &records.Event{ID: 1, Name: "E1", StartAt: base, Tier: 1}))
	require.NoError(t, store.SaveEvent(ctx, &records.Event{ID: 2, Name: "E2", StartAt: base.AddDate(0, 0, 1), Tier: 3}))
	require.NoError(t, store.SaveIdentity(ctx, &records.Identity{ID: 1, DisplayName: "Alice", NormalizedName: "alice"}))
	require.NoError(t, store.SaveIdentity(ctx, &records.Identity{ID: 2, DisplayName: "alice alt", NormalizedName: "alicealt"}))
	require.NoError(t, store.SaveLink(ctx, records.IdentityLink{OldID: 2, NewID: 1}))
	require.NoError(t, store.ReplaceRatingRecords(ctx, []records.RatingRecord{
		{IdentityID: 1, EventID: 1, Rating: 215, Tiers: records.TierCounts{Tier1: 1}},
		{IdentityID: 1, EventID: 2, Rating: 220, Tiers: records.TierCounts{Tier1: 1, Tier3: 1}},
	}))
	return store
}

func TestHistoryHandler_ByName(t *testing.T) {
	handler := NewHistoryHandler(seedHistoryStore(t))

	result, err := handler.Handle(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Identity.ID)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 215.0, result.Records[0].Rating)
	assert.Equal(t, 220.0, result.Records[1].Rating)
}

func TestHistoryHandler_ByID(t *testing.T) {
	handler := NewHistoryHandler(seedHistoryStore(t))

	result, err := handler.Handle(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.Identity.DisplayName)
	assert.Len(t, result.Records, 2)
}

func TestHistoryHandler_ForwardsSupersededID(t *testing.T) {
	handler := NewHistoryHandler(seedHistoryStore(t))

	// Identity 2 was merged into 1; the query lands on the canonical record.
	result, err := handler.Handle(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Identity.ID)
	assert.Len(t, result.Records, 2)
}

func TestHistoryHandler_NotFound(t *testing.T) {
	handler := NewHistoryHandler(seedHistoryStore(t))

	_, err := handler.Handle(context.Background(), "nobody")
	assert.ErrorContains(t, err, "competitor not found")
}

func TestMergeHandler_Handle(t *testing.T) {
	store := mocks.NewRecordStore()
	ctx := context.Background()
	exts := []records.ExternalID{
		{Source: records.SourceStartGG, SourceID: "a", UserID: "same", IdentityID: 1},
		{Source: records.SourceStartGG, SourceID: "b", UserID: "same", IdentityID: 4},
	}
	for i := range exts {
		require.NoError(t, store.SaveExternalID(ctx, &exts[i]))
	}

	outcome, err := NewMergeHandler(store, zerolog.Nop()).Handle(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, 1, outcome.Result.Merged)
	assert.Equal(t, []string{"merge"}, store.Actions)

	canonical, err := store.CanonicalID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), canonical)
}

func TestIdentityHandler_Search(t *testing.T) {
	handler := NewIdentityHandler(seedHistoryStore(t))
	ctx := context.Background()

	all, err := handler.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := handler.Search(ctx, "alt", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(2), found[0].ID)
}
