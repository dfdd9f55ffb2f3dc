package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

func TestLedgerCarryForward(t *testing.T) {
	l := NewLedger(0)

	// Never-seen identity starts at the default.
	assert.Equal(t, records.DefaultRating, l.Rating(1))

	l.BeginEvent(100)
	l.Write(1, 215)
	l.CloseEvent(records.TierPremier)

	// Most recent prior snapshot carries into the next event.
	l.BeginEvent(101)
	assert.Equal(t, 215.0, l.Rating(1))
	assert.Equal(t, records.DefaultRating, l.Rating(2))
}

func TestLedgerRevisesOpenEventInPlace(t *testing.T) {
	l := NewLedger(0)
	l.BeginEvent(100)

	l.Write(1, 215)
	l.Write(1, 229) // second set of the same event
	l.CloseEvent(records.TierOther)

	history := l.History(1)
	require.Len(t, history, 1)
	assert.Equal(t, 229.0, history[0].Rating)
}

func TestLedgerClosedEventsAreImmutable(t *testing.T) {
	l := NewLedger(0)
	l.BeginEvent(100)
	l.Write(1, 210)
	l.CloseEvent(records.TierPremier)

	l.BeginEvent(101)
	l.Write(1, 190)
	l.CloseEvent(records.TierPremier)

	history := l.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, 210.0, history[0].Rating)
	assert.Equal(t, 190.0, history[1].Rating)
}

func TestLedgerTierCountersOncePerEvent(t *testing.T) {
	l := NewLedger(0)

	for i, bucket := range []int{records.TierPremier, records.TierPremier, records.TierPremier, records.TierRegional} {
		l.BeginEvent(int64(100 + i))
		l.Write(1, 200)
		l.Write(1, 205) // multiple sets must not double-count
		l.CloseEvent(bucket)
	}

	latest, ok := l.Latest(1)
	require.True(t, ok)
	assert.Equal(t, 3, latest.Tiers.Tier1)
	assert.Equal(t, 1, latest.Tiers.Tier3)
	assert.Equal(t, 4, latest.Tiers.Total())
}

func TestLedgerCountersMonotonic(t *testing.T) {
	l := NewLedger(0)
	buckets := []int{records.TierOther, records.TierMajor, records.TierOther}
	for i, bucket := range buckets {
		l.BeginEvent(int64(i))
		l.Write(7, float64(200+i))
		l.CloseEvent(bucket)
	}

	history := l.History(7)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].Tiers.Total(), history[i-1].Tiers.Total())
	}
}

func TestLedgerWriteRequiresOpenEvent(t *testing.T) {
	l := NewLedger(0)
	assert.Panics(t, func() { l.Write(1, 210) })

	l.BeginEvent(100)
	l.Write(1, 210)
	l.CloseEvent(records.TierOther)

	// The window shuts again on close.
	assert.Panics(t, func() { l.Write(1, 220) })
	history := l.History(1)
	require.Len(t, history, 1)
	assert.Equal(t, 210.0, history[0].Rating)
}

func TestLedgerHistoryLastMatchesLatest(t *testing.T) {
	l := NewLedger(0)
	l.BeginEvent(1)
	l.Write(3, 212)
	l.CloseEvent(records.TierMajor)
	l.BeginEvent(2)
	l.Write(3, 198)
	l.CloseEvent(records.TierOther)

	history := l.History(3)
	latest, ok := l.Latest(3)
	require.True(t, ok)
	require.NotEmpty(t, history)
	assert.Equal(t, latest, history[len(history)-1])
}
