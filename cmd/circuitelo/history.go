package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <name-or-id>",
		Short: "Show one competitor's rating after each event they played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewHistoryHandler(d.Store)
				result, err := handler.Handle(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Printf("%s (identity %d)\n\n", result.Identity.DisplayName, result.Identity.ID)
				if len(result.Records) == 0 {
					fmt.Println("No rated events.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "EVENT\tELO\tEVENTS PLAYED")
				for _, rec := range result.Records {
					fmt.Fprintf(w, "%d\t%.2f\t%d\n", rec.EventID, rec.Rating, rec.Tiers.Total())
				}
				return w.Flush()
			})
		},
	}
}
