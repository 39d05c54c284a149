package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maidmarket/internal/favorite/optimistic"
)

func toggleCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <maid-id>...",
		Short: "Flip the favorite state of one or more maids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer sess.Close()
			out := cmd.OutOrStdout()

			pending := make([]<-chan error, len(args))
			for i, id := range args {
				pending[i] = sess.coord.ToggleAsync(cmd.Context(), id, sess.projector.IsFavorite(id))
				fmt.Fprintf(out, "%s %s (pending)\n", heart(sess.projector.IsFavorite(id)), id)
			}

			failed := 0
			for i, id := range args {
				err := <-pending[i]
				if err != nil {
					failed++
					var te *optimistic.ToggleError
					if errors.As(err, &te) {
						fmt.Fprintf(out, "%s %s rolled back: %v\n", heart(sess.projector.IsFavorite(id)), id, te.Err)
						continue
					}
					fmt.Fprintf(out, "%s %s failed: %v\n", heart(sess.projector.IsFavorite(id)), id, err)
					continue
				}
				fmt.Fprintf(out, "%s %s saved\n", heart(sess.projector.IsFavorite(id)), id)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d toggles failed", failed, len(args))
			}
			return nil
		},
	}
}
