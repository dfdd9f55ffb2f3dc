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

func seedTwoEventStore(t *testing.T) *mocks.RecordStore {
	t.Helper()
	store := mocks.NewRecordStore()
	ctx := context.Background()

	players := []records.PlayerRecord{
		{Source: records.SourceStartGG, PlayerID: "1", UserID: "u1", DisplayName: "Alice"},
		{Source: records.SourceStartGG, PlayerID: "2", UserID: "u2", DisplayName: "Bob"},
		{Source: records.SourceStartGG, PlayerID: "3", UserID: "u3", DisplayName: "Carol"},
	}
	for i := range players {
		require.NoError(t, store.SavePlayer(ctx, &players[i]))
	}

	base := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveEvent(ctx, &records.Event{ID: 1, Name: "E1", StartAt: base, Tier: 1}))
	require.NoError(t, store.SaveEvent(ctx, &records.Event{ID: 2, Name: "E2", StartAt: base.AddDate(0, 0, 7), Tier: 3}))

	// Set sides carry user ids, as all_sets.csv does. Alice's first tag
	// shares nothing with her registered name, so only the user id mapping
	// from the player table keeps her history on one identity.
	require.NoError(t, store.SaveSet(ctx, &records.Set{EventID: 1, SetID: 1, Source: records.SourceStartGG, Sides: []records.SetSide{
		{EntrantName: "ALC", SourceID: "u1", Standing: 1},
		{EntrantName: "Bob", SourceID: "u2", Standing: 2},
	}}))
	require.NoError(t, store.SaveSet(ctx, &records.Set{EventID: 2, SetID: 1, Source: records.SourceStartGG, Sides: []records.SetSide{
		{EntrantName: "Carol", SourceID: "u3", Standing: 1},
		{EntrantName: "Alice", SourceID: "u1", Standing: 2},
	}}))
	return store
}

func TestRecomputeHandler_Handle(t *testing.T) {
	store := seedTwoEventStore(t)
	handler := NewRecomputeHandler(store, nil, 0, 0, zerolog.Nop())

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Stats.Events)
	assert.Equal(t, 2, result.Stats.SetsApplied)
	assert.Equal(t, 3, result.IdentitiesCreated)
	assert.Equal(t, 4, result.RatingRecords)
	require.Len(t, store.Ratings, 4)
	assert.Equal(t, []string{"recompute"}, store.Actions)

	current, err := store.CurrentRatings(context.Background())
	require.NoError(t, err)
	require.Len(t, current, 3)

	// Carol beat an above-default Alice, so she gains more than the even +15.
	assert.Equal(t, "Carol", current[0].DisplayName)
	assert.InDelta(t, 215.65, current[0].Rating, 0.01)
	assert.Equal(t, "Bob", current[2].DisplayName)
	assert.Equal(t, 185.0, current[2].Rating)
}

func TestRecomputeHandler_Idempotent(t *testing.T) {
	store := seedTwoEventStore(t)
	handler := NewRecomputeHandler(store, nil, 0, 0, zerolog.Nop())
	ctx := context.Background()

	first, err := handler.Handle(ctx)
	require.NoError(t, err)
	firstRatings := append([]records.RatingRecord(nil), store.Ratings...)

	// A second full recompute over unchanged inputs reproduces the ledger
	// and creates no further identities.
	second, err := NewRecomputeHandler(store, nil, 0, 0, zerolog.Nop()).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.RatingRecords, second.RatingRecords)
	assert.Equal(t, 0, second.IdentitiesCreated)
	assert.Equal(t, firstRatings, store.Ratings)
}

func TestRecomputeHandler_TierCounters(t *testing.T) {
	store := seedTwoEventStore(t)
	handler := NewRecomputeHandler(store, nil, 0, 0, zerolog.Nop())

	_, err := handler.Handle(context.Background())
	require.NoError(t, err)

	current, err := store.CurrentRatings(context.Background())
	require.NoError(t, err)
	for _, row := range current {
		if row.DisplayName == "Alice" {
			assert.Equal(t, records.TierCounts{Tier1: 1, Tier3: 1}, row.Tiers)
		}
	}
}

func TestRecomputeHandler_PoolOnlyEvent(t *testing.T) {
	store := mocks.NewRecordStore()
	ctx := context.Background()

	base := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveEvent(ctx, &records.Event{ID: 1, Name: "Groups", StartAt: base, Tier: 2}))
	entries := []records.PoolEntry{
		{EventID: 1, Group: "A", EntrantName: "Alice", Wins: 3, Losses: 0},
		{EventID: 1, Group: "A", EntrantName: "Bob", Wins: 0, Losses: 3},
	}
	for i := range entries {
		require.NoError(t, store.SavePoolEntry(ctx, &entries[i]))
	}

	result, err := NewRecomputeHandler(store, nil, 0, 0, zerolog.Nop()).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.PoolEntriesApplied)
	assert.Equal(t, 2, result.RatingRecords)
}
