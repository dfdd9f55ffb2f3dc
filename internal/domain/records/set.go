package records

// Standing codes as reported per set side.
const (
	StandingWin  = 1
	StandingLoss = 2
)

// SetSide is one competitor's side of a set. SourceID is the source-native
// user id when the source reported one, empty for guests.
type SetSide struct {
	EntrantName string `json:"entrant_name"`
	SourceID    string `json:"source_id"`
	Standing    int    `json:"standing"`
}

// Set is one reported match within an event. A valid set has exactly two
// sides; anything else is malformed and skipped in full.
type Set struct {
	EventID int64     `json:"event_id"`
	SetID   int64     `json:"set_id"`
	Source  Source    `json:"source"`
	Sides   []SetSide `json:"sides"`
}

// Scores converts the set's standings into match scores. A (win, loss) pair
// scores 1/0, equal standings encode a draw at 0.5 each, and any other
// combination does not encode a clear outcome, so ok is false and the set
// must be skipped without touching either side.
func (s Set) Scores() (scoreA, scoreB float64, ok bool) {
	if len(s.Sides) != 2 {
		return 0, 0, false
	}
	a, b := s.Sides[0].Standing, s.Sides[1].Standing
	switch {
	case a == StandingWin && b == StandingLoss:
		return 1, 0, true
	case a == StandingLoss && b == StandingWin:
		return 0, 1, true
	case a == b && (a == StandingWin || a == StandingLoss):
		return 0.5, 0.5, true
	default:
		return 0, 0, false
	}
}

// PoolEntry is one competitor's aggregate result in a pool/group stage,
// reported as win/loss counts rather than discrete sets.
type PoolEntry struct {
	EventID     int64  `json:"event_id"`
	Group       string `json:"group"`
	EntrantName string `json:"entrant_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}
