package handlers

import (
	"context"
	"fmt"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

// IdentityHandler handles identity index queries.
type IdentityHandler struct {
	store ports.RecordStore
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(store ports.RecordStore) *IdentityHandler {
	return &IdentityHandler{
		store: store,
	}
}

// Search returns identities whose name matches the query. An empty query
// lists every identity.
func (h *IdentityHandler) Search(ctx context.Context, query string, limit int) ([]records.Identity, error) {
	if query == "" {
		identities, err := h.store.ListIdentities(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing identities: %w", err)
		}
		if limit > 0 && len(identities) > limit {
			identities = identities[:limit]
		}
		return identities, nil
	}

	identities, err := h.store.SearchIdentities(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching identities: %w", err)
	}
	return identities, nil
}

// Links returns the forwarding link table.
func (h *IdentityHandler) Links(ctx context.Context) ([]records.IdentityLink, error) {
	links, err := h.store.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing identity links: %w", err)
	}
	return links, nil
}
