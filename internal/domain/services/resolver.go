package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

// ErrUnresolved is returned when a competitor reference carries neither a
// resolvable source id nor a usable name. The match containing the
// reference must be dropped on both sides.
var ErrUnresolved = errors.New("competitor reference has no resolvable id or name")

// DefaultThreshold is the fuzzy-match acceptance bar for sources without an
// explicit entry in the threshold map.
const DefaultThreshold = 93

// DefaultThresholds holds the per-source fuzzy-match acceptance thresholds
// on a 0-100 similarity scale. start.gg names are exact handles so the bar
// is higher; Liquipedia names are typed by editors and vary more.
var DefaultThresholds = map[records.Source]float64{
	records.SourceStartGG:    97,
	records.SourceLiquipedia: 93,
}

// Resolver reconciles raw per-source competitor references into canonical
// identity ids. Lookups go through an in-memory index loaded from the store;
// accepted matches and synthesized identities are written back through it.
type Resolver struct {
	store      ports.RecordStore
	thresholds map[records.Source]float64
	metric     *metrics.Levenshtein

	identities map[int64]*records.Identity
	byExternal map[string]int64   // externalKey(source, sourceID) -> identity id
	names      map[string][]int64 // normalized name/alias -> identity ids
	links      *linkSet
	maxID      int64
	created    int
}

// NewResolver creates a Resolver backed by the given store. Thresholds
// missing from the map fall back to DefaultThresholds.
func NewResolver(store ports.RecordStore, thresholds map[records.Source]float64) *Resolver {
	merged := make(map[records.Source]float64, len(DefaultThresholds))
	for src, th := range DefaultThresholds {
		merged[src] = th
	}
	for src, th := range thresholds {
		merged[src] = th
	}
	return &Resolver{
		store:      store,
		thresholds: merged,
		metric:     metrics.NewLevenshtein(),
		identities: make(map[int64]*records.Identity),
		byExternal: make(map[string]int64),
		names:      make(map[string][]int64),
	}
}

// Load populates the index from the store: identities, source-id mappings
// and forwarding links. Must be called before Resolve.
func (r *Resolver) Load(ctx context.Context) error {
	identities, err := r.store.ListIdentities(ctx)
	if err != nil {
		return fmt.Errorf("loading identities: %w", err)
	}
	for i := range identities {
		id := identities[i]
		r.identities[id.ID] = &id
		r.registerName(id.NormalizedName, id.ID)
		if id.ID > r.maxID {
			r.maxID = id.ID
		}
	}

	exts, err := r.store.ListExternalIDs(ctx)
	if err != nil {
		return fmt.Errorf("loading external ids: %w", err)
	}
	for _, ext := range exts {
		r.byExternal[externalKey(ext.Source, ext.SourceID)] = ext.IdentityID
	}

	links, err := r.store.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("loading identity links: %w", err)
	}
	r.links = newLinkSet(links)
	return nil
}

// RegisterPlayer folds a raw player record into the index. A record with an
// unseen source id gets a fresh identity; known ids contribute any new
// aliases to the name index. Guest records (no source id) are left to
// name resolution at fold time.
func (r *Resolver) RegisterPlayer(ctx context.Context, p records.PlayerRecord) error {
	var id int64
	if p.PlayerID != "" {
		key := externalKey(p.Source, p.PlayerID)
		known, ok := r.byExternal[key]
		if !ok {
			identity, err := r.synthesize(ctx, p.DisplayName)
			if err != nil {
				return err
			}
			ext := &records.ExternalID{
				Source:     p.Source,
				SourceID:   p.PlayerID,
				UserID:     p.UserID,
				IdentityID: identity.ID,
			}
			if err := r.store.SaveExternalID(ctx, ext); err != nil {
				return fmt.Errorf("saving external id: %w", err)
			}
			r.byExternal[key] = identity.ID
			known = identity.ID
		}
		id = r.canonical(known)
	}

	// Set sides reference competitors by the account-level user id, not the
	// entrant-level player id, so the user id must hit the exact table too.
	if id != 0 && p.UserID != "" && p.UserID != p.PlayerID {
		key := externalKey(p.Source, p.UserID)
		if _, ok := r.byExternal[key]; !ok {
			ext := &records.ExternalID{
				Source:     p.Source,
				SourceID:   p.UserID,
				UserID:     p.UserID,
				IdentityID: id,
			}
			if err := r.store.SaveExternalID(ctx, ext); err != nil {
				return fmt.Errorf("saving user id mapping: %w", err)
			}
			r.byExternal[key] = id
		}
	}

	for _, alias := range p.Aliases {
		if norm := records.NormalizeName(alias); norm != "" && id != 0 {
			r.registerName(norm, id)
		}
	}
	return nil
}

// Resolve converts one competitor reference into a canonical identity id.
// The cascade is: exact source-id lookup, fuzzy name match against all known
// names, then synthesis of a new identity. A tied top score is never
// accepted; a wrong merge is worse than a duplicate identity.
func (r *Resolver) Resolve(ctx context.Context, source records.Source, sourceID, name string) (int64, error) {
	if sourceID != "" {
		if id, ok := r.byExternal[externalKey(source, sourceID)]; ok {
			return r.canonical(id), nil
		}
	}

	norm := records.NormalizeName(name)
	if norm == "" {
		return 0, ErrUnresolved
	}

	threshold, ok := r.thresholds[source]
	if !ok {
		threshold = DefaultThreshold
	}
	if id, ok := r.bestMatch(norm, threshold); ok {
		return r.remember(ctx, source, sourceID, id)
	}

	identity, err := r.synthesize(ctx, name)
	if err != nil {
		return 0, err
	}
	return r.remember(ctx, source, sourceID, identity.ID)
}

// Created reports how many identities this resolver has synthesized.
func (r *Resolver) Created() int {
	return r.created
}

// DisplayName returns the display name for a canonical identity id, or the
// empty string if unknown.
func (r *Resolver) DisplayName(id int64) string {
	if identity, ok := r.identities[id]; ok {
		return identity.DisplayName
	}
	return ""
}

// bestMatch scores norm against every known name and accepts only a unique
// top-scoring identity at or above the threshold.
func (r *Resolver) bestMatch(norm string, threshold float64) (int64, bool) {
	var bestScore float64
	best := make(map[int64]struct{})

	for candidate, ids := range r.names {
		score := strutil.Similarity(norm, candidate, r.metric) * 100
		if score < bestScore {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = make(map[int64]struct{})
		}
		for _, id := range ids {
			best[r.canonical(id)] = struct{}{}
		}
	}

	if bestScore < threshold || len(best) != 1 {
		return 0, false
	}
	for id := range best {
		return id, true
	}
	return 0, false
}

// remember caches an accepted source-id mapping so future lookups for the
// same id short-circuit the fuzzy pass. Fold-time source ids are user ids,
// so the row carries the secondary key the merge pass groups on.
func (r *Resolver) remember(ctx context.Context, source records.Source, sourceID string, id int64) (int64, error) {
	if sourceID == "" {
		return id, nil
	}
	ext := &records.ExternalID{Source: source, SourceID: sourceID, UserID: sourceID, IdentityID: id}
	if err := r.store.SaveExternalID(ctx, ext); err != nil {
		return 0, fmt.Errorf("caching external id: %w", err)
	}
	r.byExternal[externalKey(source, sourceID)] = id
	return id, nil
}

// synthesize creates and persists a new identity with the next free id.
func (r *Resolver) synthesize(ctx context.Context, name string) (*records.Identity, error) {
	r.maxID++
	identity := &records.Identity{
		ID:             r.maxID,
		DisplayName:    strings.TrimSpace(name),
		NormalizedName: records.NormalizeName(name),
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.store.SaveIdentity(ctx, identity); err != nil {
		r.maxID--
		return nil, fmt.Errorf("saving identity: %w", err)
	}
	r.identities[identity.ID] = identity
	r.registerName(identity.NormalizedName, identity.ID)
	r.created++
	return identity, nil
}

func (r *Resolver) registerName(norm string, id int64) {
	if norm == "" {
		return
	}
	for _, existing := range r.names[norm] {
		if existing == id {
			return
		}
	}
	r.names[norm] = append(r.names[norm], id)
}

func (r *Resolver) canonical(id int64) int64 {
	if r.links == nil {
		return id
	}
	return r.links.find(id)
}

func externalKey(source records.Source, sourceID string) string {
	return string(source) + "\x00" + sourceID
}
