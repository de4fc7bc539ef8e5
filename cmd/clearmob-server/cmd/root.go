package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/service/server"
	"github.com/oshokin/clearmob/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the enabled flag is persisted.
	stateFile string
	// watch reloads the configuration when the file changes.
	watch bool

	// rootCmd represents the base command for running the daemon.
	rootCmd = &cobra.Command{
		Use:   "clearmob-server [listen-address]",
		Short: "Run the clearmob daemon that periodically clears entities.",
		Long: `Starts the clearmob daemon.

Every clear interval the daemon removes matching entities from the world and
broadcasts staged warnings before each clear and a summary after it.
Only the port from server_addr is used for listening (e.g., :50051).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
The enabled flag is persisted to a JSON file so a restart resumes in the same mode.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				Watch:         watch,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the clearmob-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist the enabled flag (overrides state_file)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the configuration when the file changes")
}
