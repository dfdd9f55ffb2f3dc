package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
	"github.com/dmoren/circuitelo/internal/domain/records"
)

func newStandingsCmd() *cobra.Command {
	var (
		limit   int
		csvPath string
		tiers   bool
	)

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Show the current ratings, best first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewStandingsHandler(d.Store)

				if csvPath != "" {
					file, err := os.Create(csvPath)
					if err != nil {
						return fmt.Errorf("creating %s: %w", csvPath, err)
					}
					defer file.Close()
					if err := handler.ExportCSV(cmd.Context(), file); err != nil {
						return err
					}
					fmt.Printf("Wrote standings to %s\n", csvPath)
					return nil
				}

				if tiers {
					return printTierReport(cmd, handler)
				}

				result, err := handler.Handle(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(result.Rows) == 0 {
					fmt.Println("No ratings yet. Run 'circuitelo recompute' first.")
					return nil
				}
				printStandings(result.Rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 25, "Maximum number of rows (0 for all)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the full standings to a CSV file instead")
	cmd.Flags().BoolVar(&tiers, "tiers", false, "Show the per-tier event participation report instead")

	return cmd
}

func printStandings(rows []records.CurrentRating) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tELO\tT1\tT2\tT3\tT5")
	for i, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%d\t%d\t%d\n",
			i+1, row.DisplayName, row.Rating,
			row.Tiers.Tier1, row.Tiers.Tier2, row.Tiers.Tier3, row.Tiers.Tier5)
	}
	w.Flush()
}

func printTierReport(cmd *cobra.Command, handler *handlers.StandingsHandler) error {
	counts, err := handler.TierReport(cmd.Context())
	if err != nil {
		return err
	}

	buckets := make([]int, 0, len(counts))
	for bucket := range counts {
		buckets = append(buckets, bucket)
	}
	sort.Ints(buckets)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tEVENTS")
	for _, bucket := range buckets {
		fmt.Fprintf(w, "%d\t%d\n", bucket, counts[bucket])
	}
	return w.Flush()
}
