package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/clearmob/internal/config"
	client "github.com/oshokin/clearmob/internal/service/client"
	"github.com/oshokin/clearmob/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr from the configuration.
	serverAddress string

	// rootCmd prints usage when run without a subcommand.
	rootCmd = &cobra.Command{
		Use:   "clearmob",
		Short: "Control a running clearmob daemon.",
		Long: `Sends commands to the clearmob daemon.

enable, disable and reload require your username to be listed in the
daemon's admins. status and watch are read-only.`,
		SilenceUsage: true,
	}
)

// newCommand builds a subcommand that runs the client in the given mode.
func newCommand(use, short string, mode client.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Run(ctx, &client.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				Mode:          mode,
				Command:       use,
				Out:           cmd.OutOrStdout(),
			})
		},
	}
}

// Execute runs the clearmob CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "daemon address (overrides server_addr)")

	rootCmd.AddCommand(
		newCommand("enable", "Enable periodic clearing.", client.ModeExecute),
		newCommand("disable", "Disable periodic clearing.", client.ModeExecute),
		newCommand("reload", "Reload the daemon configuration.", client.ModeExecute),
		newCommand("status", "Show whether clearing is enabled and when the next clear happens.", client.ModeStatus),
		newCommand("watch", "Print broadcast messages until interrupted.", client.ModeWatch),
	)
}
