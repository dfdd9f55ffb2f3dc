package records

import "time"

// Competition tier buckets. Tiers 1-3 come straight from the source data
// (1 = premier); everything else, including events with no tier at all,
// lands in the tier 5 catch-all.
const (
	TierPremier  = 1
	TierMajor    = 2
	TierRegional = 3
	TierOther    = 5
)

// Event is one tournament event. StartAt defines the global fold order for
// the rating engine; ties are broken by ascending event id.
type Event struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	StartAt time.Time `json:"start_at"`
	Tier    int       `json:"tier"` // raw competition tier code; 0 when the source had none
	Source  Source    `json:"source"`
}

// TierBucket maps a raw competition tier code onto a participation counter
// bucket. Unmapped codes default to the lowest-priority bucket.
func TierBucket(tier int) int {
	switch tier {
	case TierPremier, TierMajor, TierRegional:
		return tier
	default:
		return TierOther
	}
}

// Before reports whether e sorts strictly before other in fold order.
func (e Event) Before(other Event) bool {
	if !e.StartAt.Equal(other.StartAt) {
		return e.StartAt.Before(other.StartAt)
	}
	return e.ID < other.ID
}
