package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

// HistoryHandler handles per-competitor rating history queries.
type HistoryHandler struct {
	store ports.RecordStore
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store ports.RecordStore) *HistoryHandler {
	return &HistoryHandler{
		store: store,
	}
}

// HistoryResult contains one competitor's identity and chronological rating
// records.
type HistoryResult struct {
	Identity records.Identity
	Records  []records.RatingRecord
}

// Handle looks up a competitor by numeric identity id or by name and returns
// their rating history. Superseded ids are forwarded to their canonical
// identity first.
func (h *HistoryHandler) Handle(ctx context.Context, ref string) (*HistoryResult, error) {
	identity, err := h.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, fmt.Errorf("competitor not found: %s", ref)
	}

	canonical, err := h.store.CanonicalID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("dereferencing identity %d: %w", identity.ID, err)
	}
	if canonical != identity.ID {
		identity, err = h.store.FindIdentityByID(ctx, canonical)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			return nil, fmt.Errorf("canonical identity %d not found", canonical)
		}
	}

	history, err := h.store.ListRatingHistory(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("loading rating history: %w", err)
	}

	return &HistoryResult{
		Identity: *identity,
		Records:  history,
	}, nil
}

func (h *HistoryHandler) lookup(ctx context.Context, ref string) (*records.Identity, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return h.store.FindIdentityByID(ctx, id)
	}
	return h.store.FindIdentityByName(ctx, ref)
}
