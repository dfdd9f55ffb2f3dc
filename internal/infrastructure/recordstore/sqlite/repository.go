// Package sqlite provides a SQLite implementation of the RecordStore
// interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dmoren/circuitelo/internal/domain/records"
	"github.com/dmoren/circuitelo/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.RecordStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Raw per-source player references as ingested
	CREATE TABLE IF NOT EXISTS players (
		source TEXT NOT NULL,
		player_id TEXT NOT NULL,
		user_id TEXT,
		display_name TEXT NOT NULL,
		aliases TEXT,
		guest INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (source, player_id)
	);

	-- Canonical competitor identities
	CREATE TABLE IF NOT EXISTS identities (
		id INTEGER PRIMARY KEY,
		display_name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_identities_normalized ON identities(normalized_name);

	-- Exact-match table: source-native id to identity
	CREATE TABLE IF NOT EXISTS external_ids (
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		user_id TEXT,
		identity_id INTEGER NOT NULL REFERENCES identities(id),
		PRIMARY KEY (source, source_id)
	);
	CREATE INDEX IF NOT EXISTS idx_external_ids_identity ON external_ids(identity_id);
	CREATE INDEX IF NOT EXISTS idx_external_ids_user ON external_ids(source, user_id);

	-- Forwarding links from superseded to canonical identity ids
	CREATE TABLE IF NOT EXISTS identity_links (
		old_id INTEGER PRIMARY KEY,
		new_id INTEGER NOT NULL
	);

	-- Tournament events
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		start_at TIMESTAMP NOT NULL,
		tier INTEGER NOT NULL DEFAULT 0,
		source TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at, id);

	-- Set sides, one row per competitor per set
	CREATE TABLE IF NOT EXISTS set_sides (
		event_id INTEGER NOT NULL,
		set_id INTEGER NOT NULL,
		source TEXT,
		seq INTEGER NOT NULL,
		entrant_name TEXT NOT NULL,
		source_id TEXT,
		standing INTEGER NOT NULL,
		PRIMARY KEY (event_id, set_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_set_sides_event ON set_sides(event_id, set_id);

	-- Aggregate pool results
	CREATE TABLE IF NOT EXISTS pool_entries (
		event_id INTEGER NOT NULL,
		group_label TEXT NOT NULL,
		entrant_name TEXT NOT NULL,
		wins INTEGER NOT NULL,
		losses INTEGER NOT NULL,
		PRIMARY KEY (event_id, group_label, entrant_name)
	);

	-- Rating ledger, one snapshot per (identity, event); seq preserves fold order
	CREATE TABLE IF NOT EXISTS rating_records (
		identity_id INTEGER NOT NULL,
		event_id INTEGER NOT NULL,
		rating REAL NOT NULL,
		tier1 INTEGER NOT NULL DEFAULT 0,
		tier2 INTEGER NOT NULL DEFAULT 0,
		tier3 INTEGER NOT NULL DEFAULT 0,
		tier5 INTEGER NOT NULL DEFAULT 0,
		seq INTEGER NOT NULL,
		PRIMARY KEY (identity_id, event_id)
	);
	CREATE INDEX IF NOT EXISTS idx_rating_records_identity ON rating_records(identity_id, seq);

	-- Audit log (tracks pipeline runs)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_run ON audit_log(run_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SavePlayer saves a raw player record.
func (r *Repository) SavePlayer(ctx context.Context, player *records.PlayerRecord) error {
	query := `
		INSERT INTO players (source, player_id, user_id, display_name, aliases, guest)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, player_id) DO UPDATE SET
			user_id = excluded.user_id,
			display_name = excluded.display_name,
			aliases = excluded.aliases,
			guest = excluded.guest
	`
	_, err := r.db.ExecContext(ctx, query,
		string(player.Source),
		player.PlayerID,
		player.UserID,
		player.DisplayName,
		strings.Join(player.Aliases, "|"),
		player.Guest,
	)
	if err != nil {
		return fmt.Errorf("saving player: %w", err)
	}
	return nil
}

// ListPlayers lists all raw player records.
func (r *Repository) ListPlayers(ctx context.Context) ([]records.PlayerRecord, error) {
	query := `
		SELECT source, player_id, user_id, display_name, aliases, guest
		FROM players
		ORDER BY source ASC, player_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	var players []records.PlayerRecord
	for rows.Next() {
		var player records.PlayerRecord
		var source string
		var userID, aliases sql.NullString
		if err := rows.Scan(
			&source,
			&player.PlayerID,
			&userID,
			&player.DisplayName,
			&aliases,
			&player.Guest,
		); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		player.Source = records.Source(source)
		player.UserID = userID.String
		player.Aliases = records.SplitAliases(aliases.String)
		players = append(players, player)
	}
	return players, rows.Err()
}

// SaveIdentity saves or updates a canonical identity.
func (r *Repository) SaveIdentity(ctx context.Context, identity *records.Identity) error {
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = timeNow().UTC()
	}
	query := `
		INSERT INTO identities (id, display_name, normalized_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			normalized_name = excluded.normalized_name
	`
	_, err := r.db.ExecContext(ctx, query,
		identity.ID,
		identity.DisplayName,
		identity.NormalizedName,
		identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

// FindIdentityByID finds an identity by id.
func (r *Repository) FindIdentityByID(ctx context.Context, id int64) (*records.Identity, error) {
	query := `
		SELECT id, display_name, normalized_name, created_at
		FROM identities
		WHERE id = ?
	`
	return r.scanIdentityRow(r.db.QueryRowContext(ctx, query, id))
}

// FindIdentityByName finds an identity by its normalized name.
func (r *Repository) FindIdentityByName(ctx context.Context, name string) (*records.Identity, error) {
	query := `
		SELECT id, display_name, normalized_name, created_at
		FROM identities
		WHERE normalized_name = ?
		ORDER BY id ASC
		LIMIT 1
	`
	return r.scanIdentityRow(r.db.QueryRowContext(ctx, query, records.NormalizeName(name)))
}

// ListIdentities lists all identities ordered by id.
func (r *Repository) ListIdentities(ctx context.Context) ([]records.Identity, error) {
	query := `
		SELECT id, display_name, normalized_name, created_at
		FROM identities
		ORDER BY id ASC
	`
	return r.queryIdentities(ctx, query)
}

// SearchIdentities searches identities by display name pattern.
func (r *Repository) SearchIdentities(ctx context.Context, query string, limit int) ([]records.Identity, error) {
	pattern := "%" + records.NormalizeName(query) + "%"
	sqlQuery := `
		SELECT id, display_name, normalized_name, created_at
		FROM identities
		WHERE normalized_name LIKE ?
		ORDER BY id ASC
		LIMIT ?
	`
	return r.queryIdentities(ctx, sqlQuery, pattern, limit)
}

// queryIdentities is a helper to execute identity queries.
func (r *Repository) queryIdentities(ctx context.Context, query string, args ...any) ([]records.Identity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var identities []records.Identity
	for rows.Next() {
		var identity records.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.DisplayName,
			&identity.NormalizedName,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

// scanIdentityRow is a helper to scan a single identity row.
func (r *Repository) scanIdentityRow(row *sql.Row) (*records.Identity, error) {
	var identity records.Identity
	err := row.Scan(
		&identity.ID,
		&identity.DisplayName,
		&identity.NormalizedName,
		&identity.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning identity: %w", err)
	}
	return &identity, nil
}

// SaveExternalID saves or updates a source-id to identity mapping.
func (r *Repository) SaveExternalID(ctx context.Context, ext *records.ExternalID) error {
	query := `
		INSERT INTO external_ids (source, source_id, user_id, identity_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source, source_id) DO UPDATE SET
			user_id = excluded.user_id,
			identity_id = excluded.identity_id
	`
	_, err := r.db.ExecContext(ctx, query,
		string(ext.Source),
		ext.SourceID,
		ext.UserID,
		ext.IdentityID,
	)
	if err != nil {
		return fmt.Errorf("saving external id: %w", err)
	}
	return nil
}

// FindExternalID finds a mapping by (source, source id).
func (r *Repository) FindExternalID(ctx context.Context, source records.Source, sourceID string) (*records.ExternalID, error) {
	query := `
		SELECT source, source_id, user_id, identity_id
		FROM external_ids
		WHERE source = ? AND source_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, string(source), sourceID)

	var ext records.ExternalID
	var src string
	var userID sql.NullString
	err := row.Scan(&src, &ext.SourceID, &userID, &ext.IdentityID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning external id: %w", err)
	}
	ext.Source = records.Source(src)
	ext.UserID = userID.String
	return &ext, nil
}

// ListExternalIDs lists all source-id mappings.
func (r *Repository) ListExternalIDs(ctx context.Context) ([]records.ExternalID, error) {
	query := `
		SELECT source, source_id, user_id, identity_id
		FROM external_ids
		ORDER BY source ASC, source_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying external ids: %w", err)
	}
	defer rows.Close()

	var exts []records.ExternalID
	for rows.Next() {
		var ext records.ExternalID
		var src string
		var userID sql.NullString
		if err := rows.Scan(&src, &ext.SourceID, &userID, &ext.IdentityID); err != nil {
			return nil, fmt.Errorf("scanning external id: %w", err)
		}
		ext.Source = records.Source(src)
		ext.UserID = userID.String
		exts = append(exts, ext)
	}
	return exts, rows.Err()
}

// SaveLink saves or updates a forwarding link.
func (r *Repository) SaveLink(ctx context.Context, link records.IdentityLink) error {
	query := `
		INSERT INTO identity_links (old_id, new_id)
		VALUES (?, ?)
		ON CONFLICT(old_id) DO UPDATE SET
			new_id = excluded.new_id
	`
	_, err := r.db.ExecContext(ctx, query, link.OldID, link.NewID)
	if err != nil {
		return fmt.Errorf("saving identity link: %w", err)
	}
	return nil
}

// ListLinks lists all forwarding links.
func (r *Repository) ListLinks(ctx context.Context) ([]records.IdentityLink, error) {
	query := `
		SELECT old_id, new_id
		FROM identity_links
		ORDER BY old_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying identity links: %w", err)
	}
	defer rows.Close()

	var links []records.IdentityLink
	for rows.Next() {
		var link records.IdentityLink
		if err := rows.Scan(&link.OldID, &link.NewID); err != nil {
			return nil, fmt.Errorf("scanning identity link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// CanonicalID fully dereferences forwarding links from the given id. Stored
// links are kept flattened, so this normally terminates after one lookup.
func (r *Repository) CanonicalID(ctx context.Context, id int64) (int64, error) {
	query := `SELECT new_id FROM identity_links WHERE old_id = ?`
	for {
		var next int64
		err := r.db.QueryRowContext(ctx, query, id).Scan(&next)
		if err == sql.ErrNoRows {
			return id, nil
		}
		if err != nil {
			return 0, fmt.Errorf("dereferencing identity link: %w", err)
		}
		if next == id {
			return id, nil
		}
		id = next
	}
}

// SaveEvent saves or updates an event.
func (r *Repository) SaveEvent(ctx context.Context, event *records.Event) error {
	query := `
		INSERT INTO events (id, name, start_at, tier, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_at = excluded.start_at,
			tier = excluded.tier,
			source = excluded.source
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.StartAt.UTC(),
		event.Tier,
		string(event.Source),
	)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// ListEventsChronological lists all events in fold order.
func (r *Repository) ListEventsChronological(ctx context.Context) ([]records.Event, error) {
	query := `
		SELECT id, name, start_at, tier, source
		FROM events
		ORDER BY start_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []records.Event
	for rows.Next() {
		var event records.Event
		var source sql.NullString
		if err := rows.Scan(&event.ID, &event.Name, &event.StartAt, &event.Tier, &source); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		event.Source = records.Source(source.String)
		event.StartAt = event.StartAt.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}

// SaveSet saves a set with all its sides, replacing any previous rows for
// the same (event, set).
func (r *Repository) SaveSet(ctx context.Context, set *records.Set) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM set_sides WHERE event_id = ? AND set_id = ?`,
		set.EventID, set.SetID,
	); err != nil {
		return fmt.Errorf("clearing set sides: %w", err)
	}

	query := `
		INSERT INTO set_sides (event_id, set_id, source, seq, entrant_name, source_id, standing)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, side := range set.Sides {
		if _, err := tx.ExecContext(ctx, query,
			set.EventID,
			set.SetID,
			string(set.Source),
			i,
			side.EntrantName,
			side.SourceID,
			side.Standing,
		); err != nil {
			return fmt.Errorf("saving set side: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing set: %w", err)
	}
	return nil
}

// ListSetsByEvent lists an event's sets ordered by ascending set id.
func (r *Repository) ListSetsByEvent(ctx context.Context, eventID int64) ([]records.Set, error) {
	query := `
		SELECT set_id, source, entrant_name, source_id, standing
		FROM set_sides
		WHERE event_id = ?
		ORDER BY set_id ASC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying set sides: %w", err)
	}
	defer rows.Close()

	var sets []records.Set
	for rows.Next() {
		var setID int64
		var source sql.NullString
		var side records.SetSide
		var sourceID sql.NullString
		if err := rows.Scan(&setID, &source, &side.EntrantName, &sourceID, &side.Standing); err != nil {
			return nil, fmt.Errorf("scanning set side: %w", err)
		}
		side.SourceID = sourceID.String

		if n := len(sets); n > 0 && sets[n-1].SetID == setID {
			sets[n-1].Sides = append(sets[n-1].Sides, side)
			continue
		}
		sets = append(sets, records.Set{
			EventID: eventID,
			SetID:   setID,
			Source:  records.Source(source.String),
			Sides:   []records.SetSide{side},
		})
	}
	return sets, rows.Err()
}

// SavePoolEntry saves one competitor's aggregate pool result.
func (r *Repository) SavePoolEntry(ctx context.Context, entry *records.PoolEntry) error {
	query := `
		INSERT INTO pool_entries (event_id, group_label, entrant_name, wins, losses)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(event_id, group_label, entrant_name) DO UPDATE SET
			wins = excluded.wins,
			losses = excluded.losses
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.EventID,
		entry.Group,
		entry.EntrantName,
		entry.Wins,
		entry.Losses,
	)
	if err != nil {
		return fmt.Errorf("saving pool entry: %w", err)
	}
	return nil
}

// ListPoolEntriesByEvent lists an event's pool entries ordered by group
// label, then entrant name.
func (r *Repository) ListPoolEntriesByEvent(ctx context.Context, eventID int64) ([]records.PoolEntry, error) {
	query := `
		SELECT event_id, group_label, entrant_name, wins, losses
		FROM pool_entries
		WHERE event_id = ?
		ORDER BY group_label ASC, entrant_name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying pool entries: %w", err)
	}
	defer rows.Close()

	var entries []records.PoolEntry
	for rows.Next() {
		var entry records.PoolEntry
		if err := rows.Scan(&entry.EventID, &entry.Group, &entry.EntrantName, &entry.Wins, &entry.Losses); err != nil {
			return nil, fmt.Errorf("scanning pool entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceRatingRecords atomically replaces the persisted ledger with the
// given records, preserving their order.
func (r *Repository) ReplaceRatingRecords(ctx context.Context, recs []records.RatingRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rating_records`); err != nil {
		return fmt.Errorf("clearing rating records: %w", err)
	}

	query := `
		INSERT INTO rating_records (identity_id, event_id, rating, tier1, tier2, tier3, tier5, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, rec := range recs {
		if _, err := tx.ExecContext(ctx, query,
			rec.IdentityID,
			rec.EventID,
			rec.Rating,
			rec.Tiers.Tier1,
			rec.Tiers.Tier2,
			rec.Tiers.Tier3,
			rec.Tiers.Tier5,
			i,
		); err != nil {
			return fmt.Errorf("saving rating record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rating records: %w", err)
	}
	return nil
}

// ListRatingHistory lists an identity's rating records ordered by event
// start time.
func (r *Repository) ListRatingHistory(ctx context.Context, identityID int64) ([]records.RatingRecord, error) {
	query := `
		SELECT rr.identity_id, rr.event_id, rr.rating, rr.tier1, rr.tier2, rr.tier3, rr.tier5
		FROM rating_records rr
		JOIN events e ON e.id = rr.event_id
		WHERE rr.identity_id = ?
		ORDER BY e.start_at ASC, e.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, identityID)
	if err != nil {
		return nil, fmt.Errorf("querying rating history: %w", err)
	}
	defer rows.Close()

	var history []records.RatingRecord
	for rows.Next() {
		var rec records.RatingRecord
		if err := rows.Scan(
			&rec.IdentityID,
			&rec.EventID,
			&rec.Rating,
			&rec.Tiers.Tier1,
			&rec.Tiers.Tier2,
			&rec.Tiers.Tier3,
			&rec.Tiers.Tier5,
		); err != nil {
			return nil, fmt.Errorf("scanning rating record: %w", err)
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

// CurrentRatings returns the latest rating record per identity joined with
// display names, ordered by descending rating.
func (r *Repository) CurrentRatings(ctx context.Context) ([]records.CurrentRating, error) {
	query := `
		SELECT rr.identity_id, COALESCE(i.display_name, ''), rr.rating,
		       rr.tier1, rr.tier2, rr.tier3, rr.tier5
		FROM rating_records rr
		LEFT JOIN identities i ON i.id = rr.identity_id
		WHERE NOT EXISTS (
			SELECT 1 FROM rating_records later
			WHERE later.identity_id = rr.identity_id AND later.seq > rr.seq
		)
		ORDER BY rr.rating DESC, rr.identity_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying current ratings: %w", err)
	}
	defer rows.Close()

	var current []records.CurrentRating
	for rows.Next() {
		var row records.CurrentRating
		if err := rows.Scan(
			&row.IdentityID,
			&row.DisplayName,
			&row.Rating,
			&row.Tiers.Tier1,
			&row.Tiers.Tier2,
			&row.Tiers.Tier3,
			&row.Tiers.Tier5,
		); err != nil {
			return nil, fmt.Errorf("scanning current rating: %w", err)
		}
		current = append(current, row)
	}
	return current, rows.Err()
}

// EventTierCounts counts stored events per tier bucket.
func (r *Repository) EventTierCounts(ctx context.Context) (map[int]int, error) {
	query := `SELECT tier, COUNT(*) FROM events GROUP BY tier`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying event tiers: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var tier, count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("scanning tier count: %w", err)
		}
		counts[records.TierBucket(tier)] += count
	}
	return counts, rows.Err()
}

// LogAction logs a pipeline action to the audit log.
func (r *Repository) LogAction(ctx context.Context, runID, action string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (run_id, action, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, runID, action, detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}
