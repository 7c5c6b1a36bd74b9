package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/service/server"
	"github.com/hairoku/hairoku/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where session history is persisted.
	stateFile string
	// outputDir overrides the recordings directory.
	outputDir string
	// logLevel overrides the default logging level.
	logLevel string

	// rootCmd represents the base command for running the recorder daemon.
	rootCmd = &cobra.Command{
		Use:   "hairoku-server [listen-address]",
		Short: "Run the stream recorder daemon.",
		Long: `Starts the recorder daemon that captures live streams on request and
watches the configured channels for broadcasts.

The daemon listens on the specified address or uses settings from the
configuration file. Only the port from the server address config is used for
listening (e.g., :50051). The listen address can be provided as an argument to
override the config (e.g., :9090, 0.0.0.0:50051). Session history is persisted
to a JSON file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if logLevel != "" {
				lvl, ok := logger.ParseLogLevel(logLevel)
				if !ok {
					return fmt.Errorf("unknown log level %q", logLevel)
				}

				logger.SetLevel(lvl)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				OutputDir:     outputDir,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the hairoku-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "session history path override")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "recordings directory override")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
