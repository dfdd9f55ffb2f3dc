package services

import (
	"github.com/dmoren/circuitelo/internal/domain/records"
)

// Ledger is the append-mostly rating snapshot store threaded through the
// sequential fold. Snapshots for closed events are immutable; only the event
// currently being folded may have its entries revised in place as further
// sets of that event are processed. The ledger is owned by whoever holds the
// handle, there is no global.
type Ledger struct {
	recs          []records.RatingRecord
	latest        map[int64]int // identity id -> index of most recent closed record
	current       map[int64]int // identity id -> index of this event's record
	eventID       int64
	open          bool
	defaultRating float64
}

// NewLedger creates an empty ledger. A non-positive defaultRating falls back
// to records.DefaultRating.
func NewLedger(defaultRating float64) *Ledger {
	if defaultRating <= 0 {
		defaultRating = records.DefaultRating
	}
	return &Ledger{
		latest:        make(map[int64]int),
		current:       make(map[int64]int),
		defaultRating: defaultRating,
	}
}

// BeginEvent opens an event for folding. Any previously open event must have
// been closed first.
func (l *Ledger) BeginEvent(eventID int64) {
	l.eventID = eventID
	l.open = true
	clear(l.current)
}

// Rating returns the rating a competitor enters a computation with: the
// value already written for them in the open event if they played an earlier
// set of it, else their most recent snapshot from a strictly earlier event,
// else the default for a never-seen identity.
func (l *Ledger) Rating(identityID int64) float64 {
	if i, ok := l.current[identityID]; ok {
		return l.recs[i].Rating
	}
	if i, ok := l.latest[identityID]; ok {
		return l.recs[i].Rating
	}
	return l.defaultRating
}

// Write records a rating for an identity in the open event, creating the
// event's snapshot on first write and revising it in place afterwards. New
// snapshots carry the identity's cumulative tier counters forward. Write
// panics when no event is open; a snapshot must always belong to an event.
func (l *Ledger) Write(identityID int64, rating float64) {
	if !l.open {
		panic("ledger: Write outside an open event")
	}
	if i, ok := l.current[identityID]; ok {
		l.recs[i].Rating = rating
		return
	}
	rec := records.RatingRecord{
		IdentityID: identityID,
		EventID:    l.eventID,
		Rating:     rating,
	}
	if i, ok := l.latest[identityID]; ok {
		rec.Tiers = l.recs[i].Tiers
	}
	l.recs = append(l.recs, rec)
	l.current[identityID] = len(l.recs) - 1
}

// CloseEvent seals the open event: every identity that appeared gets its
// counter for the event's tier bucket bumped exactly once, and the event's
// snapshots become immutable.
func (l *Ledger) CloseEvent(tierBucket int) {
	for id, i := range l.current {
		l.recs[i].Tiers.Bump(tierBucket)
		l.latest[id] = i
	}
	clear(l.current)
	l.open = false
}

// History returns an identity's snapshots in fold order, which is ascending
// event start time.
func (l *Ledger) History(identityID int64) []records.RatingRecord {
	var out []records.RatingRecord
	for _, rec := range l.recs {
		if rec.IdentityID == identityID {
			out = append(out, rec)
		}
	}
	return out
}

// Latest returns an identity's most recent closed snapshot.
func (l *Ledger) Latest(identityID int64) (records.RatingRecord, bool) {
	if i, ok := l.latest[identityID]; ok {
		return l.recs[i], true
	}
	return records.RatingRecord{}, false
}

// Records returns every snapshot in fold order. The slice is the ledger's
// backing store; callers must not modify it.
func (l *Ledger) Records() []records.RatingRecord {
	return l.recs
}
