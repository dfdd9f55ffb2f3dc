package records

import (
	"strings"
	"time"
)

// Source identifies the data source a raw record came from.
type Source string

const (
	// SourceStartGG is bracket data exported from the start.gg API.
	SourceStartGG Source = "startgg"
	// SourceLiquipedia is bracket and pool data scraped from Liquipedia pages.
	SourceLiquipedia Source = "liquipedia"
)

// Identity is the canonical competitor record. Every alias and per-source id
// discovered for the same real competitor resolves to one identity id, which
// is assigned once and never reused.
type Identity struct {
	ID             int64     `json:"id"`
	DisplayName    string    `json:"display_name"`
	NormalizedName string    `json:"normalized_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExternalID maps a source-native competitor id to a canonical identity.
// SourceID is the id the exact-match table is keyed on; UserID is a secondary
// user-level key shared across events, used by the batch merge pass.
type ExternalID struct {
	Source     Source `json:"source"`
	SourceID   string `json:"source_id"`
	UserID     string `json:"user_id"`
	IdentityID int64  `json:"identity_id"`
}

// IdentityLink forwards a superseded identity id to its canonical id.
// Links are kept transitively closed: NewID is always a canonical id, never
// another superseded one.
type IdentityLink struct {
	OldID int64 `json:"old_id"`
	NewID int64 `json:"new_id"`
}

// PlayerRecord is a raw per-source competitor reference as produced by the
// data-source collaborator. Guest entries carry no stable user id and are
// resolved by name.
type PlayerRecord struct {
	Source      Source   `json:"source"`
	PlayerID    string   `json:"player_id"`
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases,omitempty"`
	Guest       bool     `json:"guest"`
}

// NormalizeName lowercases a display name and strips all whitespace so that
// spacing and casing differences between sources don't defeat matching.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

// SplitAliases splits a composite pipe-delimited alias list into individual
// aliases, dropping empty segments.
func SplitAliases(s string) []string {
	var aliases []string
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part != "" {
			aliases = append(aliases, part)
		}
	}
	return aliases
}
