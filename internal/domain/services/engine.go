package services

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// DefaultK is the maximum rating adjustment per set.
const DefaultK = 30

// Engine folds events into a rating ledger. Events are processed strictly
// sequentially in ascending (start time, event id) order, because every
// rating must reflect exactly the strictly-prior events; sets within an
// event are applied in ascending set id order, because a competitor's later
// set reads the rating written by their earlier one.
type Engine struct {
	resolver      *Resolver
	k             float64
	defaultRating float64
	log           zerolog.Logger
}

// NewEngine creates an Engine. A non-positive k falls back to DefaultK and a
// non-positive defaultRating to records.DefaultRating.
func NewEngine(resolver *Resolver, k, defaultRating float64, log zerolog.Logger) *Engine {
	if k <= 0 {
		k = DefaultK
	}
	return &Engine{resolver: resolver, k: k, defaultRating: defaultRating, log: log}
}

// FoldStats counts what a recompute applied and what it had to skip. Every
// skip is a locally-recovered condition; losing the whole recompute over one
// bad row would be worse than skipping that row.
type FoldStats struct {
	Events             int
	SetsApplied        int
	MalformedSets      int // not two sides, unclear outcome, or self-match
	DroppedSets        int // a side failed identity resolution
	PoolEntriesApplied int
	DroppedPoolEntries int
	PoolEventsShadowed int // pools ignored because pairwise data existed
}

// Recompute folds all events into a fresh ledger. sets and pools are keyed
// by event id. When an event carries both discrete sets and pool aggregates,
// the pairwise data wins and the pools are ignored.
func (e *Engine) Recompute(ctx context.Context, events []records.Event, sets map[int64][]records.Set, pools map[int64][]records.PoolEntry) (*Ledger, *FoldStats, error) {
	ordered := make([]records.Event, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	ledger := NewLedger(e.defaultRating)
	stats := &FoldStats{}

	for _, event := range ordered {
		ledger.BeginEvent(event.ID)

		eventSets := sets[event.ID]
		if len(eventSets) > 0 {
			if err := e.applySets(ctx, ledger, event, eventSets, stats); err != nil {
				return nil, nil, err
			}
			if len(pools[event.ID]) > 0 {
				stats.PoolEventsShadowed++
				e.log.Debug().
					Int64("event_id", event.ID).
					Int("pool_entries", len(pools[event.ID])).
					Msg("pool aggregates ignored in favor of pairwise sets")
			}
		} else if entries := pools[event.ID]; len(entries) > 0 {
			if err := e.applyPools(ctx, ledger, event, entries, stats); err != nil {
				return nil, nil, err
			}
		}

		ledger.CloseEvent(records.TierBucket(event.Tier))
		stats.Events++
	}

	return ledger, stats, nil
}

// applySets applies an event's discrete sets in ascending set id order.
func (e *Engine) applySets(ctx context.Context, ledger *Ledger, event records.Event, eventSets []records.Set, stats *FoldStats) error {
	ordered := make([]records.Set, len(eventSets))
	copy(ordered, eventSets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SetID < ordered[j].SetID })

	for _, set := range ordered {
		scoreA, scoreB, ok := set.Scores()
		if !ok {
			stats.MalformedSets++
			e.log.Debug().
				Int64("event_id", event.ID).
				Int64("set_id", set.SetID).
				Msg("skipping malformed set")
			continue
		}

		idA, errA := e.resolver.Resolve(ctx, set.Source, set.Sides[0].SourceID, set.Sides[0].EntrantName)
		idB, errB := e.resolver.Resolve(ctx, set.Source, set.Sides[1].SourceID, set.Sides[1].EntrantName)
		if errA != nil || errB != nil {
			err := errors.Join(errA, errB)
			if !errors.Is(err, ErrUnresolved) {
				return err
			}
			// Dropping one side would corrupt the other's history, so the
			// whole set goes.
			stats.DroppedSets++
			e.log.Warn().
				Int64("event_id", event.ID).
				Int64("set_id", set.SetID).
				Str("entrant_a", set.Sides[0].EntrantName).
				Str("entrant_b", set.Sides[1].EntrantName).
				Msg("dropping set with unresolved competitor")
			continue
		}
		if idA == idB {
			stats.MalformedSets++
			e.log.Warn().
				Int64("event_id", event.ID).
				Int64("set_id", set.SetID).
				Int64("identity_id", idA).
				Msg("skipping set where both sides resolve to one identity")
			continue
		}

		newA, newB := eloPair(ledger.Rating(idA), ledger.Rating(idB), scoreA, scoreB, e.k)
		ledger.Write(idA, newA)
		ledger.Write(idB, newB)
		stats.SetsApplied++
	}
	return nil
}

// applyPools applies an event's pool aggregates, one group at a time. This
// is an approximation used only when no discrete set data exists for the
// event.
func (e *Engine) applyPools(ctx context.Context, ledger *Ledger, event records.Event, entries []records.PoolEntry, stats *FoldStats) error {
	byGroup := make(map[string][]records.PoolEntry)
	var groups []string
	for _, entry := range entries {
		if _, ok := byGroup[entry.Group]; !ok {
			groups = append(groups, entry.Group)
		}
		byGroup[entry.Group] = append(byGroup[entry.Group], entry)
	}
	sort.Strings(groups)

	for _, group := range groups {
		if err := e.applyPoolGroup(ctx, ledger, event, byGroup[group], stats); err != nil {
			return err
		}
	}
	return nil
}

type poolStanding struct {
	identityID int64
	rating     float64
	wins       int
	losses     int
}

func (e *Engine) applyPoolGroup(ctx context.Context, ledger *Ledger, event records.Event, entries []records.PoolEntry, stats *FoldStats) error {
	var standings []poolStanding
	index := make(map[int64]int)

	for _, entry := range entries {
		id, err := e.resolver.Resolve(ctx, records.SourceLiquipedia, "", entry.EntrantName)
		if errors.Is(err, ErrUnresolved) {
			stats.DroppedPoolEntries++
			e.log.Warn().
				Int64("event_id", event.ID).
				Str("group", entry.Group).
				Msg("dropping pool entry with unresolved competitor")
			continue
		}
		if err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			// Same competitor listed twice (alias collision within a group):
			// fold the counts together rather than rating them twice.
			standings[i].wins += entry.Wins
			standings[i].losses += entry.Losses
			continue
		}
		index[id] = len(standings)
		standings = append(standings, poolStanding{
			identityID: id,
			rating:     ledger.Rating(id),
			wins:       entry.Wins,
			losses:     entry.Losses,
		})
	}

	if len(standings) == 0 {
		return nil
	}

	// Win-weighted average rating of players with wins, loss-weighted of
	// players with losses. A zero denominator degenerates to 0.
	var totalWins, totalLosses int
	var ratingWins, ratingLosses float64
	for _, s := range standings {
		totalWins += s.wins
		totalLosses += s.losses
		ratingWins += s.rating * float64(s.wins)
		ratingLosses += s.rating * float64(s.losses)
	}
	var ratingsWinners, ratingsLosers float64
	if totalWins > 0 {
		ratingsWinners = ratingWins / float64(totalWins)
	}
	if totalLosses > 0 {
		ratingsLosers = ratingLosses / float64(totalLosses)
	}

	for _, s := range standings {
		expectedWin := 1 / (1 + math.Pow(10, (s.rating-ratingsWinners)/400))
		expectedLoss := 1 / (1 + math.Pow(10, (s.rating-ratingsLosers)/400))
		rating := s.rating +
			e.k*(float64(s.wins)-expectedWin) +
			e.k*(float64(s.losses)-expectedLoss)
		ledger.Write(s.identityID, rating)
		stats.PoolEntriesApplied++
	}
	return nil
}

// eloPair applies the standard logistic Elo update to one pairwise result.
// The update conserves rating mass when both sides share the same k.
func eloPair(ratingA, ratingB, scoreA, scoreB, k float64) (float64, float64) {
	expectedA := expectedScore(ratingA, ratingB)
	expectedB := expectedScore(ratingB, ratingA)
	return ratingA + k*(scoreA-expectedA), ratingB + k*(scoreB-expectedB)
}

func expectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}
