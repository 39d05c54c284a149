package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "maidctl",
		Short: "Browse maids and manage favorites from the terminal",
		Long: `maidctl talks to the maidmarket API as a signed-in customer.

Favorite toggles are optimistic: the new state is shown at once and
rolled back if the server rejects the change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, configFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $HOME/.maidctl.yaml)")
	rootCmd.PersistentFlags().String("server", defaultServer, "API base URL")
	rootCmd.PersistentFlags().String("token", "", "bearer token (see cmd/seed)")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "timeout of a single favorite mutation")
	rootCmd.PersistentFlags().Bool("verbose", false, "log toggle lifecycle to stderr")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve toggle metrics on this address, e.g. :9100")
	v.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	v.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	v.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	v.BindPFlag("metrics-addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))

	rootCmd.AddCommand(
		maidsCmd(v),
		favoritesCmd(v),
		toggleCmd(v),
		watchCmd(v),
	)
	return rootCmd
}
