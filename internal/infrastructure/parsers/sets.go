package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// SetsCSVParser parses match sets from all_sets.csv, where each set occupies
// one row per side.
type SetsCSVParser struct{}

// Parse reads CSV from the reader and returns parsed sets. Expected columns:
// set_id, entrant_id, entrant_name, standing, user_id, event_id, source.
// Rows sharing (event_id, source, set_id) are folded into one set; side order
// follows row order.
func (p *SetsCSVParser) Parse(r io.Reader) ([]records.Set, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "set_id", "entrant_name", "standing", "event_id")
	if err != nil {
		return nil, err
	}

	var sets []records.Set
	index := make(map[string]int) // (event, source, set) key -> position in sets
	lineNum := 1                  // Header is line 1

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
		setID, err := parseID(getColumn(record, colIndex, "set_id"), "set_id", lineNum)
		if err != nil {
			return nil, err
		}
		standingStr := getColumn(record, colIndex, "standing")
		standing, err := strconv.Atoi(standingStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid standing %q: %w", lineNum, standingStr, err)
		}

		source := records.Source(getColumn(record, colIndex, "source"))
		side := records.SetSide{
			EntrantName: getColumn(record, colIndex, "entrant_name"),
			SourceID:    normalizeUserID(getColumn(record, colIndex, "user_id")),
			Standing:    standing,
		}

		key := fmt.Sprintf("%d\x00%s\x00%d", eventID, source, setID)
		if pos, ok := index[key]; ok {
			sets[pos].Sides = append(sets[pos].Sides, side)
			continue
		}
		index[key] = len(sets)
		sets = append(sets, records.Set{
			EventID: eventID,
			SetID:   setID,
			Source:  source,
			Sides:   []records.SetSide{side},
		})
	}

	return sets, nil
}

// BracketsCSVParser parses scraped bracket rows into sets. Brackets report
// per-set game scores rather than standings.
type BracketsCSVParser struct{}

// Parse reads CSV from the reader and returns the sets derivable from it.
// Expected columns: event_id, player1, player2, result1, result2. The higher
// score takes standing 1 and the lower standing 2; equal scores encode a
// draw. Rows with a non-numeric result (a DQ or forfeit) are skipped whole.
// Set ids are assigned per event in row order.
func (p *BracketsCSVParser) Parse(r io.Reader) ([]records.Set, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "event_id", "player1", "player2", "result1", "result2")
	if err != nil {
		return nil, err
	}

	var sets []records.Set
	nextSetID := make(map[int64]int64)
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
		nextSetID[eventID]++

		score1, err1 := strconv.Atoi(getColumn(record, colIndex, "result1"))
		score2, err2 := strconv.Atoi(getColumn(record, colIndex, "result2"))
		if err1 != nil || err2 != nil {
			continue
		}

		standing1, standing2 := records.StandingWin, records.StandingWin
		switch {
		case score1 > score2:
			standing2 = records.StandingLoss
		case score2 > score1:
			standing1 = records.StandingLoss
		}

		sets = append(sets, records.Set{
			EventID: eventID,
			SetID:   nextSetID[eventID],
			Source:  records.SourceLiquipedia,
			Sides: []records.SetSide{
				{EntrantName: getColumn(record, colIndex, "player1"), Standing: standing1},
				{EntrantName: getColumn(record, colIndex, "player2"), Standing: standing2},
			},
		})
	}

	return sets, nil
}
