// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/infrastructure/parsers"
)

// IngestHandler handles loading the collaborator-produced CSV tables into
// the store.
type IngestHandler struct {
	store ports.RecordStore
	log   zerolog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(store ports.RecordStore, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{
		store: store,
		log:   log,
	}
}

// IngestInputs names the CSV files to load. Empty paths are skipped.
type IngestInputs struct {
	PlayersPath  string
	EventsPath   string
	SetsPath     string
	PoolsPath    string
	BracketsPath string
}

// IngestResult contains the result of an ingest operation.
type IngestResult struct {
	RunID       string
	Players     int
	Events      int
	Sets        int
	BracketSets int
	PoolEntries int
}

// Handle parses each provided file and writes its rows to the store.
func (h *IngestHandler) Handle(ctx context.Context, inputs IngestInputs) (*IngestResult, error) {
	result := &IngestResult{RunID: uuid.New().String()}

	if inputs.PlayersPath != "" {
		if err := h.ingestPlayers(ctx, inputs.PlayersPath, result); err != nil {
			return nil, err
		}
	}
	if inputs.EventsPath != "" {
		if err := h.ingestEvents(ctx, inputs.EventsPath, result); err != nil {
			return nil, err
		}
	}
	if inputs.SetsPath != "" {
		if err := h.ingestSets(ctx, inputs.SetsPath, result); err != nil {
			return nil, err
		}
	}
	if inputs.BracketsPath != "" {
		if err := h.ingestBrackets(ctx, inputs.BracketsPath, result); err != nil {
			return nil, err
		}
	}
	if inputs.PoolsPath != "" {
		if err := h.ingestPools(ctx, inputs.PoolsPath, result); err != nil {
			return nil, err
		}
	}

	if err := h.store.LogAction(ctx, result.RunID, "ingest", map[string]any{
		"players":      result.Players,
		"events":       result.Events,
		"sets":         result.Sets,
		"bracket_sets": result.BracketSets,
		"pool_entries": result.PoolEntries,
	}); err != nil {
		return nil, fmt.Errorf("logging ingest: %w", err)
	}

	h.log.Info().
		Str("run_id", result.RunID).
		Int("players", result.Players).
		Int("events", result.Events).
		Int("sets", result.Sets+result.BracketSets).
		Int("pool_entries", result.PoolEntries).
		Msg("ingest complete")
	return result, nil
}

func (h *IngestHandler) ingestPlayers(ctx context.Context, path string, result *IngestResult) error {
	return withFile(path, func(f io.Reader) error {
		parser := &parsers.PlayersCSVParser{}
		players, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for i := range players {
			if err := h.store.SavePlayer(ctx, &players[i]); err != nil {
				return err
			}
		}
		result.Players = len(players)
		return nil
	})
}

func (h *IngestHandler) ingestEvents(ctx context.Context, path string, result *IngestResult) error {
	return withFile(path, func(f io.Reader) error {
		parser := &parsers.EventsCSVParser{}
		events, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for i := range events {
			if err := h.store.SaveEvent(ctx, &events[i]); err != nil {
				return err
			}
		}
		result.Events = len(events)
		return nil
	})
}

func (h *IngestHandler) ingestSets(ctx context.Context, path string, result *IngestResult) error {
	return withFile(path, func(f io.Reader) error {
		parser := &parsers.SetsCSVParser{}
		sets, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for i := range sets {
			if err := h.store.SaveSet(ctx, &sets[i]); err != nil {
				return err
			}
		}
		result.Sets = len(sets)
		return nil
	})
}

func (h *IngestHandler) ingestBrackets(ctx context.Context, path string, result *IngestResult) error {
	return withFile(path, func(f io.Reader) error {
		parser := &parsers.BracketsCSVParser{}
		sets, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for i := range sets {
			if err := h.store.SaveSet(ctx, &sets[i]); err != nil {
				return err
			}
		}
		result.BracketSets = len(sets)
		return nil
	})
}

func (h *IngestHandler) ingestPools(ctx context.Context, path string, result *IngestResult) error {
	return withFile(path, func(f io.Reader) error {
		parser := &parsers.PoolsCSVParser{}
		entries, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for i := range entries {
			if err := h.store.SavePoolEntry(ctx, &entries[i]); err != nil {
				return err
			}
		}
		result.PoolEntries = len(entries)
		return nil
	})
}

// withFile opens a file and passes it to fn.
func withFile(path string, fn func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()
	return fn(file)
}
