package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoren/circuitelo/internal/domain/mocks"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

func newTestResolver(t *testing.T, thresholds map[records.Source]float64) (*Resolver, *mocks.RecordStore) {
	t.Helper()
	store := mocks.NewRecordStore()
	resolver := NewResolver(store, thresholds)
	require.NoError(t, resolver.Load(context.Background()))
	return resolver, store
}

func TestResolverExactID(t *testing.T) {
	resolver, store := newTestResolver(t, nil)
	ctx := context.Background()

	err := resolver.RegisterPlayer(ctx, records.PlayerRecord{
		Source:      records.SourceStartGG,
		PlayerID:    "111",
		DisplayName: "Daigo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.Created())

	id1, err := resolver.Resolve(ctx, records.SourceStartGG, "111", "Daigo")
	require.NoError(t, err)

	// Repeating the same exact-id lookup is idempotent: same id, no new
	// identity.
	id2, err := resolver.Resolve(ctx, records.SourceStartGG, "111", "some other rendering")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, resolver.Created())
	assert.Len(t, store.Identities, 1)
}

func TestResolverResolvesByUserID(t *testing.T) {
	resolver, store := newTestResolver(t, nil)
	ctx := context.Background()

	// players.csv rows carry the entrant-level player id while set sides
	// carry the account-level user id. Both ids must land in the exact
	// table, or a tag change on the set side synthesizes a duplicate.
	require.NoError(t, resolver.RegisterPlayer(ctx, records.PlayerRecord{
		Source:      records.SourceStartGG,
		PlayerID:    "555",
		UserID:      "1234",
		DisplayName: "Daigo",
	}))
	require.Equal(t, 1, resolver.Created())

	// The set-side tag shares nothing with the registered name, so only
	// the user id can link it.
	byUser, err := resolver.Resolve(ctx, records.SourceStartGG, "1234", "Umehara")
	require.NoError(t, err)

	byPlayer, err := resolver.Resolve(ctx, records.SourceStartGG, "555", "")
	require.NoError(t, err)
	assert.Equal(t, byPlayer, byUser)
	assert.Equal(t, 1, resolver.Created())

	// The persisted user-id row carries the secondary key the merge pass
	// groups on.
	ext, err := store.FindExternalID(ctx, records.SourceStartGG, "1234")
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, "1234", ext.UserID)
	assert.Equal(t, byPlayer, ext.IdentityID)
}

func TestResolverFuzzyThreshold(t *testing.T) {
	// "streetfighterace" is 16 characters, so one substitution scores
	// exactly 100*(1 - 1/16) = 93.75 and two score 87.5.
	thresholds := map[records.Source]float64{records.SourceLiquipedia: 93.75}
	ctx := context.Background()

	t.Run("score at threshold is accepted", func(t *testing.T) {
		resolver, _ := newTestResolver(t, thresholds)
		known, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "streetfighterace")
		require.NoError(t, err)

		got, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "streetfighteracx")
		require.NoError(t, err)
		assert.Equal(t, known, got)
		assert.Equal(t, 1, resolver.Created())
	})

	t.Run("score below threshold creates a new identity", func(t *testing.T) {
		resolver, _ := newTestResolver(t, thresholds)
		known, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "streetfighterace")
		require.NoError(t, err)

		got, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "streetfighteraxx")
		require.NoError(t, err)
		assert.NotEqual(t, known, got)
		assert.Equal(t, 2, resolver.Created())
	})
}

func TestResolverAmbiguousTopScore(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	ctx := context.Background()

	// Two distinct identities whose names are equally close to the query.
	// Registered through source ids so the setup itself can't fuzzy-merge.
	require.NoError(t, resolver.RegisterPlayer(ctx, records.PlayerRecord{
		Source: records.SourceStartGG, PlayerID: "1", DisplayName: "longplayername1",
	}))
	require.NoError(t, resolver.RegisterPlayer(ctx, records.PlayerRecord{
		Source: records.SourceStartGG, PlayerID: "2", DisplayName: "longplayername2",
	}))
	a, err := resolver.Resolve(ctx, records.SourceStartGG, "1", "")
	require.NoError(t, err)
	b, err := resolver.Resolve(ctx, records.SourceStartGG, "2", "")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	// Both score 100*(1 - 1/15) ~= 93.3 against the query, above the
	// liquipedia threshold but tied: never auto-accepted.
	got, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "longplayername3")
	require.NoError(t, err)
	assert.NotEqual(t, a, got)
	assert.NotEqual(t, b, got)
	assert.Equal(t, 3, resolver.Created())
}

func TestResolverAliases(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	ctx := context.Background()

	err := resolver.RegisterPlayer(ctx, records.PlayerRecord{
		Source:      records.SourceStartGG,
		PlayerID:    "42",
		DisplayName: "Tokido",
		Aliases:     records.SplitAliases("Tokido|Murderface Tokido"),
	})
	require.NoError(t, err)

	id, err := resolver.Resolve(ctx, records.SourceStartGG, "42", "")
	require.NoError(t, err)

	// The alias resolves to the same identity by exact name score.
	got, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "Murderface Tokido")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestResolverUnresolved(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)

	_, err := resolver.Resolve(context.Background(), records.SourceLiquipedia, "", "   ")
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, 0, resolver.Created())
}

func TestResolverCachesFuzzyAcceptance(t *testing.T) {
	resolver, store := newTestResolver(t, nil)
	ctx := context.Background()

	id, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "MenaRD")
	require.NoError(t, err)

	// A source id seen for the first time alongside a matchable name gets
	// cached so the next lookup skips the fuzzy pass.
	got, err := resolver.Resolve(ctx, records.SourceStartGG, "777", "MenaRD")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	ext, err := store.FindExternalID(ctx, records.SourceStartGG, "777")
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, id, ext.IdentityID)
	assert.Equal(t, "777", ext.UserID)
}

func TestResolverDereferencesLinks(t *testing.T) {
	store := mocks.NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.SaveIdentity(ctx, &records.Identity{ID: 1, DisplayName: "Punk", NormalizedName: "punk"}))
	require.NoError(t, store.SaveIdentity(ctx, &records.Identity{ID: 2, DisplayName: "punk", NormalizedName: "punk"}))
	require.NoError(t, store.SaveExternalID(ctx, &records.ExternalID{Source: records.SourceStartGG, SourceID: "9", IdentityID: 2}))
	require.NoError(t, store.SaveLink(ctx, records.IdentityLink{OldID: 2, NewID: 1}))

	resolver := NewResolver(store, nil)
	require.NoError(t, resolver.Load(ctx))

	// The exact table points at a superseded id; resolution must follow the
	// forwarding link to the canonical id, never stop at an intermediate.
	id, err := resolver.Resolve(ctx, records.SourceStartGG, "9", "Punk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestResolverSynthesizesNextID(t *testing.T) {
	store := mocks.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.SaveIdentity(ctx, &records.Identity{ID: 17, DisplayName: "JB", NormalizedName: "jb"}))

	resolver := NewResolver(store, nil)
	require.NoError(t, resolver.Load(ctx))

	id, err := resolver.Resolve(ctx, records.SourceLiquipedia, "", "Problem X")
	require.NoError(t, err)
	assert.Equal(t, int64(18), id)
}
