package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
)

func newRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the full rating ledger from all stored events",
		Long: "Folds every stored event in chronological order into a fresh rating ledger " +
			"and replaces the persisted one. Run after ingesting or merging.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewRecomputeHandler(
					d.Store,
					d.Config.SourceThresholds(),
					d.Config.Engine.K,
					d.Config.Engine.DefaultRating,
					newLogger(),
				)
				result, err := handler.Handle(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Recomputed %d events: %d sets applied, %d pool entries applied, %d rating records\n",
					result.Stats.Events, result.Stats.SetsApplied, result.Stats.PoolEntriesApplied, result.RatingRecords)
				if skipped := result.Stats.MalformedSets + result.Stats.DroppedSets; skipped > 0 {
					fmt.Printf("Skipped %d sets (%d malformed, %d unresolved)\n",
						skipped, result.Stats.MalformedSets, result.Stats.DroppedSets)
				}
				if result.IdentitiesCreated > 0 {
					fmt.Printf("Created %d new identities\n", result.IdentitiesCreated)
				}
				return nil
			})
		},
	}
}
