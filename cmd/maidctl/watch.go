package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maidmarket/internal/favorite/client"
	"maidmarket/internal/favorite/optimistic"
)

func watchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow favorite changes made from any session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := newSession(ctx, v)
			if err != nil {
				return err
			}
			defer sess.Close()
			out := cmd.OutOrStdout()

			unsubscribe := sess.projector.Subscribe(func(id string) {
				if id == "" {
					fmt.Fprintf(out, "favorites reloaded: %d\n", len(sess.confirmed.IDs()))
					return
				}
				fmt.Fprintf(out, "%s %s\n", heart(sess.projector.IsFavorite(id)), id)
			})
			defer unsubscribe()

			if sess.metricsAddr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "serving metrics on http://%s/metrics\n", sess.metricsAddr)
			}
			fmt.Fprintf(out, "watching %d favorites, Ctrl+C to stop\n", len(sess.confirmed.IDs()))

			err = sess.api.Watch(ctx, func(ev client.Event) {
				fmt.Fprintf(out, "%s %s\n", ev.Type, ev.MaidID)
				if err := sess.confirmed.Refresh(ctx); err != nil && !errors.Is(err, optimistic.ErrRefreshSuperseded) {
					fmt.Fprintf(cmd.ErrOrStderr(), "refresh failed: %v\n", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
