package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmoren/circuitelo/internal/application/handlers"
)

func newIdentitiesCmd() *cobra.Command {
	var (
		limit     int
		showLinks bool
	)

	cmd := &cobra.Command{
		Use:   "identities [query]",
		Short: "List or search canonical competitor identities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				handler := handlers.NewIdentityHandler(d.Store)

				if showLinks {
					links, err := handler.Links(cmd.Context())
					if err != nil {
						return err
					}
					if len(links) == 0 {
						fmt.Println("No merged identities.")
						return nil
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "OLD\tCANONICAL")
					for _, link := range links {
						fmt.Fprintf(w, "%d\t%d\n", link.OldID, link.NewID)
					}
					return w.Flush()
				}

				identities, err := handler.Search(cmd.Context(), query, limit)
				if err != nil {
					return err
				}
				if len(identities) == 0 {
					fmt.Println("No identities found.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCREATED")
				for _, identity := range identities {
					fmt.Fprintf(w, "%d\t%s\t%s\n",
						identity.ID, identity.DisplayName, identity.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of rows (0 for all)")
	cmd.Flags().BoolVar(&showLinks, "links", false, "Show the identity forwarding links instead")

	return cmd
}
