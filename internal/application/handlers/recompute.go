package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/records"
	"github.com/dmoren/circuitelo/internal/domain/services"
)

// RecomputeHandler handles full rating recomputes: the entire ledger is
// rebuilt from the stored events rather than patched, so inserting an event
// anywhere in the timeline stays correct.
type RecomputeHandler struct {
	store         ports.RecordStore
	thresholds    map[records.Source]float64
	k             float64
	defaultRating float64
	log           zerolog.Logger
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(store ports.RecordStore, thresholds map[records.Source]float64, k, defaultRating float64, log zerolog.Logger) *RecomputeHandler {
	return &RecomputeHandler{
		store:         store,
		thresholds:    thresholds,
		k:             k,
		defaultRating: defaultRating,
		log:           log,
	}
}

// RecomputeResult contains the result of a recompute.
type RecomputeResult struct {
	RunID             string
	Stats             services.FoldStats
	IdentitiesCreated int
	RatingRecords     int
}

// Handle rebuilds the rating ledger from every stored event and persists it.
func (h *RecomputeHandler) Handle(ctx context.Context) (*RecomputeResult, error) {
	resolver := services.NewResolver(h.store, h.thresholds)
	if err := resolver.Load(ctx); err != nil {
		return nil, err
	}

	players, err := h.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	for _, player := range players {
		if err := resolver.RegisterPlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("registering player %s/%s: %w", player.Source, player.PlayerID, err)
		}
	}

	events, err := h.store.ListEventsChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	sets := make(map[int64][]records.Set, len(events))
	pools := make(map[int64][]records.PoolEntry)
	for _, event := range events {
		eventSets, err := h.store.ListSetsByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("listing sets for event %d: %w", event.ID, err)
		}
		if len(eventSets) > 0 {
			sets[event.ID] = eventSets
		}
		entries, err := h.store.ListPoolEntriesByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("listing pool entries for event %d: %w", event.ID, err)
		}
		if len(entries) > 0 {
			pools[event.ID] = entries
		}
	}

	engine := services.NewEngine(resolver, h.k, h.defaultRating, h.log)
	ledger, stats, err := engine.Recompute(ctx, events, sets, pools)
	if err != nil {
		return nil, err
	}

	recs := ledger.Records()
	if err := h.store.ReplaceRatingRecords(ctx, recs); err != nil {
		return nil, err
	}

	result := &RecomputeResult{
		RunID:             uuid.New().String(),
		Stats:             *stats,
		IdentitiesCreated: resolver.Created(),
		RatingRecords:     len(recs),
	}

	if err := h.store.LogAction(ctx, result.RunID, "recompute", map[string]any{
		"events":             stats.Events,
		"sets_applied":       stats.SetsApplied,
		"malformed_sets":     stats.MalformedSets,
		"dropped_sets":       stats.DroppedSets,
		"pool_entries":       stats.PoolEntriesApplied,
		"identities_created": resolver.Created(),
		"rating_records":     len(recs),
	}); err != nil {
		return nil, fmt.Errorf("logging recompute: %w", err)
	}

	h.log.Info().
		Str("run_id", result.RunID).
		Int("events", stats.Events).
		Int("sets_applied", stats.SetsApplied).
		Int("rating_records", len(recs)).
		Int("identities_created", resolver.Created()).
		Msg("recompute complete")
	return result, nil
}
