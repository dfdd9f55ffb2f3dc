package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// EventsCSVParser parses tournament events from events.csv.
type EventsCSVParser struct{}

// Parse reads CSV from the reader and returns parsed events.
// Expected columns: event_id, event_name, start_at, competition_tier,
// source. start_at is unix seconds or RFC 3339; competition_tier may be
// empty when the source reported none.
func (p *EventsCSVParser) Parse(r io.Reader) ([]records.Event, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "event_id", "event_name", "start_at")
	if err != nil {
		return nil, err
	}

	var events []records.Event
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

		id, err := parseID(getColumn(record, colIndex, "event_id"), "event_id", lineNum)
		if err != nil {
			return nil, err
		}
		startAt, err := parseStartAt(getColumn(record, colIndex, "start_at"), lineNum)
		if err != nil {
			return nil, err
		}

		event := records.Event{
			ID:      id,
			Name:    getColumn(record, colIndex, "event_name"),
			StartAt: startAt,
			Source:  records.Source(getColumn(record, colIndex, "source")),
		}
		if tierStr := getColumn(record, colIndex, "competition_tier"); tierStr != "" {
			tier, err := strconv.Atoi(tierStr)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid competition_tier %q: %w", lineNum, tierStr, err)
			}
			event.Tier = tier
		}
		events = append(events, event)
	}

	return events, nil
}
