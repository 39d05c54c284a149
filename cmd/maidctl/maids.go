package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maidmarket/internal/favorite/client"
)

func maidsCmd(v *viper.Viper) *cobra.Command {
	var q client.MaidQuery

	cmd := &cobra.Command{
		Use:   "maids",
		Short: "List maids with their favorite state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer sess.Close()

			page, err := sess.api.ListMaids(cmd.Context(), q)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FAV\tID\tNAME\tNATIONALITY\tAGE\tSALARY\tAVAILABLE")
			for _, m := range page.Maids {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%t\n",
					heart(sess.projector.IsFavorite(m.ID)), m.ID, m.Name, m.Nationality, m.Age, m.MonthlySalary, m.Available)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d maids\n", page.Page, page.TotalPages, page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Nationality, "nationality", "", "filter by nationality")
	cmd.Flags().StringVar(&q.Search, "q", "", "search by name")
	cmd.Flags().BoolVar(&q.AvailableOnly, "available", false, "only available maids")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PerPage, "per-page", 20, "maids per page")
	return cmd
}
