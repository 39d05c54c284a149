package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func favoritesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "Print the confirmed favorite maid IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer sess.Close()

			ids := sess.confirmed.IDs()
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no favorites yet")
			}
			return nil
		},
	}
}
