package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// RecordStore is an in-memory mock implementation of ports.RecordStore.
// Setting Err makes every operation fail with it.
type RecordStore struct {
	Players     []records.PlayerRecord
	Identities  map[int64]*records.Identity
	ExternalIDs map[string]*records.ExternalID
	Links       map[int64]int64
	Events      map[int64]*records.Event
	Sets        map[int64][]records.Set
	PoolEntries map[int64][]records.PoolEntry
	Ratings     []records.RatingRecord
	Actions     []string
	Err         error
}

// NewRecordStore creates a new mock RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Identities:  make(map[int64]*records.Identity),
		ExternalIDs: make(map[string]*records.ExternalID),
		Links:       make(map[int64]int64),
		Events:      make(map[int64]*records.Event),
		Sets:        make(map[int64][]records.Set),
		PoolEntries: make(map[int64][]records.PoolEntry),
	}
}

func extKey(source records.Source, sourceID string) string {
	return string(source) + "|" + sourceID
}

// EnsureSchema creates the schema (no-op for the mock).
func (m *RecordStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the store (no-op for the mock).
func (m *RecordStore) Close() error {
	return nil
}

// Player operations.

// SavePlayer saves a raw player record.
func (m *RecordStore) SavePlayer(_ context.Context, player *records.PlayerRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Players = append(m.Players, *player)
	return nil
}

// ListPlayers lists all raw player records.
func (m *RecordStore) ListPlayers(_ context.Context) ([]records.PlayerRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]records.PlayerRecord(nil), m.Players...), nil
}

// Identity operations.

// SaveIdentity saves or updates an identity.
func (m *RecordStore) SaveIdentity(_ context.Context, identity *records.Identity) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *identity
	m.Identities[identity.ID] = &cp
	return nil
}

// FindIdentityByID finds an identity by id.
func (m *RecordStore) FindIdentityByID(_ context.Context, id int64) (*records.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Identities[id], nil
}

// FindIdentityByName finds an identity by normalized name.
func (m *RecordStore) FindIdentityByName(_ context.Context, name string) (*records.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	norm := records.NormalizeName(name)
	for _, identity := range m.Identities {
		if identity.NormalizedName == norm {
			return identity, nil
		}
	}
	return nil, nil
}

// ListIdentities lists all identities ordered by id.
func (m *RecordStore) ListIdentities(_ context.Context) ([]records.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]records.Identity, 0, len(m.Identities))
	for _, identity := range m.Identities {
		result = append(result, *identity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SearchIdentities searches identities by display name substring.
func (m *RecordStore) SearchIdentities(_ context.Context, query string, limit int) ([]records.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	all, _ := m.ListIdentities(context.Background())
	var result []records.Identity
	for _, identity := range all {
		if strings.Contains(strings.ToLower(identity.DisplayName), strings.ToLower(query)) {
			result = append(result, identity)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// External id operations.

// SaveExternalID saves or updates a source-id mapping.
func (m *RecordStore) SaveExternalID(_ context.Context, ext *records.ExternalID) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *ext
	m.ExternalIDs[extKey(ext.Source, ext.SourceID)] = &cp
	return nil
}

// FindExternalID finds a mapping by (source, source id).
func (m *RecordStore) FindExternalID(_ context.Context, source records.Source, sourceID string) (*records.ExternalID, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ExternalIDs[extKey(source, sourceID)], nil
}

// ListExternalIDs lists all source-id mappings.
func (m *RecordStore) ListExternalIDs(_ context.Context) ([]records.ExternalID, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	keys := make([]string, 0, len(m.ExternalIDs))
	for k := range m.ExternalIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]records.ExternalID, 0, len(keys))
	for _, k := range keys {
		result = append(result, *m.ExternalIDs[k])
	}
	return result, nil
}

// Identity link operations.

// SaveLink saves or updates a forwarding link.
func (m *RecordStore) SaveLink(_ context.Context, link records.IdentityLink) error {
	if m.Err != nil {
		return m.Err
	}
	m.Links[link.OldID] = link.NewID
	return nil
}

// ListLinks lists all forwarding links.
func (m *RecordStore) ListLinks(_ context.Context) ([]records.IdentityLink, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]records.IdentityLink, 0, len(m.Links))
	for old, canonical := range m.Links {
		result = append(result, records.IdentityLink{OldID: old, NewID: canonical})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OldID < result[j].OldID })
	return result, nil
}

// CanonicalID fully dereferences forwarding links.
func (m *RecordStore) CanonicalID(_ context.Context, id int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for {
		next, ok := m.Links[id]
		if !ok || next == id {
			return id, nil
		}
		id = next
	}
}

// Event, set and pool operations.

// SaveEvent saves or updates an event.
func (m *RecordStore) SaveEvent(_ context.Context, event *records.Event) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *event
	m.Events[event.ID] = &cp
	return nil
}

// ListEventsChronological lists all events in fold order.
func (m *RecordStore) ListEventsChronological(_ context.Context) ([]records.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]records.Event, 0, len(m.Events))
	for _, event := range m.Events {
		result = append(result, *event)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result, nil
}

// SaveSet saves a set with all its sides.
func (m *RecordStore) SaveSet(_ context.Context, set *records.Set) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sets[set.EventID] = append(m.Sets[set.EventID], *set)
	return nil
}

// ListSetsByEvent lists an event's sets ordered by ascending set id.
func (m *RecordStore) ListSetsByEvent(_ context.Context, eventID int64) ([]records.Set, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := append([]records.Set(nil), m.Sets[eventID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].SetID < result[j].SetID })
	return result, nil
}

// SavePoolEntry saves one competitor's aggregate pool result.
func (m *RecordStore) SavePoolEntry(_ context.Context, entry *records.PoolEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.PoolEntries[entry.EventID] = append(m.PoolEntries[entry.EventID], *entry)
	return nil
}

// ListPoolEntriesByEvent lists an event's pool entries ordered by group and
// entrant name.
func (m *RecordStore) ListPoolEntriesByEvent(_ context.Context, eventID int64) ([]records.PoolEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := append([]records.PoolEntry(nil), m.PoolEntries[eventID]...)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].EntrantName < result[j].EntrantName
	})
	return result, nil
}

// Rating ledger operations.

// ReplaceRatingRecords atomically replaces the persisted ledger.
func (m *RecordStore) ReplaceRatingRecords(_ context.Context, recs []records.RatingRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Ratings = append([]records.RatingRecord(nil), recs...)
	return nil
}

// ListRatingHistory lists an identity's rating records in event start order.
func (m *RecordStore) ListRatingHistory(_ context.Context, identityID int64) ([]records.RatingRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []records.RatingRecord
	for _, rec := range m.Ratings {
		if rec.IdentityID == identityID {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return m.eventBefore(result[i].EventID, result[j].EventID)
	})
	return result, nil
}

// CurrentRatings returns the latest record per identity joined with names.
func (m *RecordStore) CurrentRatings(_ context.Context) ([]records.CurrentRating, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	latest := make(map[int64]records.RatingRecord)
	for _, rec := range m.Ratings {
		prev, ok := latest[rec.IdentityID]
		if !ok || m.eventBefore(prev.EventID, rec.EventID) {
			latest[rec.IdentityID] = rec
		}
	}
	result := make([]records.CurrentRating, 0, len(latest))
	for id, rec := range latest {
		row := records.CurrentRating{
			IdentityID: id,
			Rating:     rec.Rating,
			Tiers:      rec.Tiers,
		}
		if identity, ok := m.Identities[id]; ok {
			row.DisplayName = identity.DisplayName
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Rating != result[j].Rating {
			return result[i].Rating > result[j].Rating
		}
		return result[i].IdentityID < result[j].IdentityID
	})
	return result, nil
}

// EventTierCounts counts stored events per tier bucket.
func (m *RecordStore) EventTierCounts(_ context.Context) (map[int]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[int]int)
	for _, event := range m.Events {
		counts[records.TierBucket(event.Tier)]++
	}
	return counts, nil
}

// LogAction records the action name for assertions.
func (m *RecordStore) LogAction(_ context.Context, _, action string, _ map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *RecordStore) eventBefore(a, b int64) bool {
	ea, okA := m.Events[a]
	eb, okB := m.Events[b]
	if !okA || !okB {
		return a < b
	}
	return ea.Before(*eb)
}
