package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

// StandingsHandler handles queries over the published standings.
type StandingsHandler struct {
	store ports.RecordStore
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(store ports.RecordStore) *StandingsHandler {
	return &StandingsHandler{
		store: store,
	}
}

// StandingsResult contains the standings ordered by descending rating.
type StandingsResult struct {
	Rows []records.CurrentRating
}

// Handle returns the current standings, truncated to limit rows when limit
// is positive.
func (h *StandingsHandler) Handle(ctx context.Context, limit int) (*StandingsResult, error) {
	rows, err := h.store.CurrentRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading current ratings: %w", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return &StandingsResult{Rows: rows}, nil
}

// ExportCSV writes the full standings to w as CSV.
func (h *StandingsHandler) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := h.store.CurrentRatings(ctx)
	if err != nil {
		return fmt.Errorf("loading current ratings: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"identity_id", "entrant_name", "elo", "tier1", "tier2", "tier3", "tier5"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.IdentityID, 10),
			row.DisplayName,
			strconv.FormatFloat(row.Rating, 'f', 2, 64),
			strconv.Itoa(row.Tiers.Tier1),
			strconv.Itoa(row.Tiers.Tier2),
			strconv.Itoa(row.Tiers.Tier3),
			strconv.Itoa(row.Tiers.Tier5),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// TierReport counts stored events per tier bucket.
func (h *StandingsHandler) TierReport(ctx context.Context) (map[int]int, error) {
	counts, err := h.store.EventTierCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting event tiers: %w", err)
	}
	return counts, nil
}
