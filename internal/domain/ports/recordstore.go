package ports

import (
	"context"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// RecordStore defines the persistence boundary for the rating pipeline:
// raw input tables written by ingestion, the identity index maintained by
// resolution and merging, and the rating ledger written by recomputes.
type RecordStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Player operations (raw per-source competitor references)

	// SavePlayer saves a raw player record.
	SavePlayer(ctx context.Context, player *records.PlayerRecord) error

	// ListPlayers lists all raw player records.
	ListPlayers(ctx context.Context) ([]records.PlayerRecord, error)

	// Identity operations

	// SaveIdentity saves or updates a canonical identity.
	SaveIdentity(ctx context.Context, identity *records.Identity) error

	// FindIdentityByID finds an identity by id. Returns nil when not found.
	FindIdentityByID(ctx context.Context, id int64) (*records.Identity, error)

	// FindIdentityByName finds an identity by its normalized name.
	// Returns nil when not found.
	FindIdentityByName(ctx context.Context, name string) (*records.Identity, error)

	// ListIdentities lists all identities ordered by id.
	ListIdentities(ctx context.Context) ([]records.Identity, error)

	// SearchIdentities searches identities by display name pattern.
	SearchIdentities(ctx context.Context, query string, limit int) ([]records.Identity, error)

	// External id operations

	// SaveExternalID saves or updates a source-id to identity mapping.
	SaveExternalID(ctx context.Context, ext *records.ExternalID) error

	// FindExternalID finds a mapping by (source, source id).
	// Returns nil when not found.
	FindExternalID(ctx context.Context, source records.Source, sourceID string) (*records.ExternalID, error)

	// ListExternalIDs lists all source-id mappings.
	ListExternalIDs(ctx context.Context) ([]records.ExternalID, error)

	// Identity link operations

	// SaveLink saves or updates a forwarding link.
	SaveLink(ctx context.Context, link records.IdentityLink) error

	// ListLinks lists all forwarding links.
	ListLinks(ctx context.Context) ([]records.IdentityLink, error)

	// CanonicalID fully dereferences forwarding links from the given id.
	CanonicalID(ctx context.Context, id int64) (int64, error)

	// Event, set and pool operations

	// SaveEvent saves or updates an event.
	SaveEvent(ctx context.Context, event *records.Event) error

	// ListEventsChronological lists all events in fold order: ascending
	// start time, ties broken by ascending event id.
	ListEventsChronological(ctx context.Context) ([]records.Event, error)

	// SaveSet saves a set with all its sides.
	SaveSet(ctx context.Context, set *records.Set) error

	// ListSetsByEvent lists an event's sets ordered by ascending set id.
	ListSetsByEvent(ctx context.Context, eventID int64) ([]records.Set, error)

	// SavePoolEntry saves one competitor's aggregate pool result.
	SavePoolEntry(ctx context.Context, entry *records.PoolEntry) error

	// ListPoolEntriesByEvent lists an event's pool entries ordered by group
	// label, then entrant name.
	ListPoolEntriesByEvent(ctx context.Context, eventID int64) ([]records.PoolEntry, error)

	// Rating ledger operations

	// ReplaceRatingRecords atomically replaces the persisted ledger with the
	// given records, preserving their order.
	ReplaceRatingRecords(ctx context.Context, recs []records.RatingRecord) error

	// ListRatingHistory lists an identity's rating records ordered by event
	// start time.
	ListRatingHistory(ctx context.Context, identityID int64) ([]records.RatingRecord, error)

	// CurrentRatings returns the latest rating record per identity joined
	// with display names, ordered by descending rating.
	CurrentRatings(ctx context.Context) ([]records.CurrentRating, error)

	// EventTierCounts counts stored events per tier bucket.
	EventTierCounts(ctx context.Context) (map[int]int, error)

	// LogAction logs a pipeline action to the audit log.
	LogAction(ctx context.Context, runID, action string, details map[string]any) error
}
