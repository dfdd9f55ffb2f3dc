package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmoren/circuitelo/internal/domain/ports"
)

// Merger runs the batch identity merge pass: external ids that share a
// secondary user key but ended up on different identities are reconciled by
// forwarding every member of the group to its numerically smallest identity
// id. The pass must never interleave with a rating fold.
type Merger struct {
	store ports.RecordStore
	log   zerolog.Logger
}

// NewMerger creates a Merger backed by the given store.
func NewMerger(store ports.RecordStore, log zerolog.Logger) *Merger {
	return &Merger{store: store, log: log}
}

// MergeResult summarizes one merge pass.
type MergeResult struct {
	Groups int // secondary-key groups with more than one identity
	Merged int // identities forwarded to a canonical id in this pass
	Links  int // flattened link rows now persisted
}

// Run executes the merge pass and persists the flattened link table. Links
// are written fully dereferenced, so downstream lookups terminate in one
// hop.
func (m *Merger) Run(ctx context.Context) (*MergeResult, error) {
	exts, err := m.store.ListExternalIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing external ids: %w", err)
	}
	stored, err := m.store.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing identity links: %w", err)
	}

	ls := newLinkSet(stored)
	result := &MergeResult{}

	groups := make(map[string][]int64)
	for _, ext := range exts {
		if ext.UserID == "" {
			continue
		}
		key := string(ext.Source) + "\x00" + ext.UserID
		groups[key] = append(groups[key], ext.IdentityID)
	}

	for key, ids := range groups {
		distinct := make(map[int64]struct{})
		for _, id := range ids {
			distinct[ls.find(id)] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}
		result.Groups++
		canonical := ids[0]
		for _, id := range ids[1:] {
			canonical = ls.union(canonical, id)
		}
		result.Merged += len(distinct) - 1
		m.log.Info().
			Str("user_key", key).
			Int64("canonical_id", canonical).
			Int("merged", len(distinct)-1).
			Msg("merged duplicate identities")
	}

	links := ls.flattened()
	for _, link := range links {
		if err := m.store.SaveLink(ctx, link); err != nil {
			return nil, fmt.Errorf("saving identity link %d -> %d: %w", link.OldID, link.NewID, err)
		}
	}
	result.Links = len(links)
	return result, nil
}
