// Package parsers provides parsers for importing the collaborator-produced
// CSV tables: players, events, sets and pool results.
package parsers

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// readHeader reads the CSV header row and validates the required columns.
func readHeader(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// parseID parses a numeric id column.
func parseID(value string, col string, lineNum int) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q: %w", lineNum, col, value, err)
	}
	return id, nil
}

// parseStartAt parses an event start time, accepting unix seconds or RFC 3339.
func parseStartAt(value string, lineNum int) (time.Time, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: invalid start_at %q: %w", lineNum, value, err)
	}
	return ts.UTC(), nil
}

// normalizeUserID canonicalizes a source user id column. The scrapers emit
// 0, -1, NaN or a float rendering like "1234.0" for entries without a stable
// user id; all of those normalize to the empty string, which marks a guest.
func normalizeUserID(value string) string {
	value = strings.TrimSuffix(strings.TrimSpace(value), ".0")
	switch strings.ToLower(value) {
	case "", "0", "-1", "nan":
		return ""
	}
	return value
}

// parseBool parses a flag column; empty means false.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
