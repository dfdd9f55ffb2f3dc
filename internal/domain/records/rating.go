package records

// DefaultRating is the rating assigned to an identity that has never
// appeared in any prior event.
const DefaultRating = 200.0

// TierCounts holds cumulative per-tier participation counters. Each counter
// increments by exactly one per identity per event of that tier, independent
// of how many sets the identity played there.
type TierCounts struct {
	Tier1 int `json:"tier1"`
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`
	Tier5 int `json:"tier5"`
}

// Bump increments the counter for the given tier bucket.
func (t *TierCounts) Bump(bucket int) {
	switch bucket {
	case TierPremier:
		t.Tier1++
	case TierMajor:
		t.Tier2++
	case TierRegional:
		t.Tier3++
	default:
		t.Tier5++
	}
}

// Total returns the number of events counted across all tiers.
func (t TierCounts) Total() int {
	return t.Tier1 + t.Tier2 + t.Tier3 + t.Tier5
}

// RatingRecord is one per-(identity, event) rating snapshot. The rating
// reflects every set of this event plus all strictly earlier events; the
// tier counters are cumulative through this event.
type RatingRecord struct {
	IdentityID int64      `json:"identity_id"`
	EventID    int64      `json:"event_id"`
	Rating     float64    `json:"rating"`
	Tiers      TierCounts `json:"tiers"`
}

// CurrentRating is the published standings row: an identity's most recent
// rating snapshot joined with its display name.
type CurrentRating struct {
	IdentityID  int64      `json:"identity_id"`
	DisplayName string     `json:"display_name"`
	Rating      float64    `json:"rating"`
	Tiers       TierCounts `json:"tiers"`
}
