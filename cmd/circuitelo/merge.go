package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge duplicate identities that share a source user key",
		Long: "Scans all source-id mappings for identities that share the same user-level key " +
			"and forwards each group to its oldest identity id. Run a recompute afterwards " +
			"so ratings pick up the merged identities.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewMergeHandler(d.Store, newLogger())
				outcome, err := handler.Handle(cmd.Context())
				if err != nil {
					return err
				}
				if outcome.Result.Merged == 0 {
					fmt.Println("No duplicate identities found.")
					return nil
				}
				fmt.Printf("Merged %d identities across %d groups (%d links persisted)\n",
					outcome.Result.Merged, outcome.Result.Groups, outcome.Result.Links)
				fmt.Println("Run 'circuitelo recompute' to refresh ratings.")
				return nil
			})
		},
	}
}
