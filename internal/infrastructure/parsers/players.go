package parsers

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// PlayersCSVParser parses raw player records from players.csv.
type PlayersCSVParser struct{}

// Parse reads CSV from the reader and returns parsed player records.
// Expected columns: source, player_id, user_id, entrant_name, aliases,
// is_guest. The aliases column is a pipe-delimited list.
func (p *PlayersCSVParser) Parse(r io.Reader) ([]records.PlayerRecord, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, "source", "player_id", "entrant_name")
	if err != nil {
		return nil, err
	}

	var players []records.PlayerRecord
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

		player := records.PlayerRecord{
			Source:      records.Source(getColumn(record, colIndex, "source")),
			PlayerID:    getColumn(record, colIndex, "player_id"),
			UserID:      normalizeUserID(getColumn(record, colIndex, "user_id")),
			DisplayName: getColumn(record, colIndex, "entrant_name"),
			Aliases:     records.SplitAliases(getColumn(record, colIndex, "aliases")),
			Guest:       parseBool(getColumn(record, colIndex, "is_guest")),
		}
		if player.UserID == "" {
			player.Guest = true
		}
		players = append(players, player)
	}

	return players, nil
}
