package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
)

func newIngestCmd() *cobra.Command {
	var inputs handlers.IngestInputs

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load player, event, set and pool CSV files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputs == (handlers.IngestInputs{}) {
				return errors.New("nothing to ingest (pass at least one of --players, --events, --sets, --brackets, --pools)")
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewIngestHandler(d.Store, newLogger())
				result, err := handler.Handle(cmd.Context(), inputs)
				if err != nil {
					return err
				}
				fmt.Printf("Ingested %d players, %d events, %d sets, %d bracket sets, %d pool entries\n",
					result.Players, result.Events, result.Sets, result.BracketSets, result.PoolEntries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inputs.PlayersPath, "players", "", "Path to players.csv")
	cmd.Flags().StringVar(&inputs.EventsPath, "events", "", "Path to events.csv")
	cmd.Flags().StringVar(&inputs.SetsPath, "sets", "", "Path to all_sets.csv")
	cmd.Flags().StringVar(&inputs.BracketsPath, "brackets", "", "Path to a scraped brackets CSV")
	cmd.Flags().StringVar(&inputs.PoolsPath, "pools", "", "Path to pools.csv")

	return cmd
}
