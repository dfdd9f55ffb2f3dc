package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// PoolsCSVParser parses aggregate group-stage results from pools.csv.
type PoolsCSVParser struct{}

// Parse reads CSV from the reader and returns parsed pool entries.
// Expected columns: event_id, group_label, entrant_name, wins, losses.
func (p *PoolsCSVParser) Parse(r io.Reader) ([]records.PoolEntry, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "event_id", "group_label", "entrant_name", "wins", "losses")
	if err != nil {
		return nil, err
	}

	var entries []records.PoolEntry
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		eventID, err := parseID(getColumn(record, colIndex, "event_id"), "event_id", lineNum)
		if err != nil {
			return nil, err
		}
		wins, err := strconv.Atoi(getColumn(record, colIndex, "wins"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid wins %q: %w", lineNum, getColumn(record, colIndex, "wins"), err)
		}
		losses, err := strconv.Atoi(getColumn(record, colIndex, "losses"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid losses %q: %w", lineNum, getColumn(record, colIndex, "losses"), err)
		}

		entries = append(entries, records.PoolEntry{
			EventID:     eventID,
			Group:       getColumn(record, colIndex, "group_label"),
			EntrantName: getColumn(record, colIndex, "entrant_name"),
			Wins:        wins,
			Losses:      losses,
		})
	}

	return entries, nil
}
