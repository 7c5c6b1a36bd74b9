package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/service/client"
	"github.com/hairoku/hairoku/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the daemon address from the configuration.
	serverAddress string
	// quality overrides the configured stream quality for start.
	quality string
	// format overrides the configured output format for start.
	format string
	// filename overrides the generated recording filename for start.
	filename string

	// rootCmd represents the base command for controlling the recorder daemon.
	rootCmd = &cobra.Command{
		Use:   "hairoku-ctl",
		Short: "Control a running recorder daemon.",
		Long: `Talks to a running hairoku-server over gRPC: starts and stops recordings,
shows session history and reports the automatic monitor's state.`,
	}

	startCmd = &cobra.Command{
		Use:   "start <url>",
		Short: "Start recording a stream URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.RunStart(ctx, &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				URL:           args[0],
				Quality:       quality,
				Format:        format,
				Filename:      filename,
			})
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Stop a running recording session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.RunStop(ctx, &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				SessionID:     args[0],
			})
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show one session or the whole session list.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var sessionID string
			if len(args) > 0 {
				sessionID = args[0]
			}

			return client.RunStatus(ctx, &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				SessionID:     sessionID,
			})
		},
	}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Show the automatic monitor's state.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.RunMonitorStatus(ctx, &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
			})
		},
	}
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// Execute runs the hairoku-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "daemon address override")

	startCmd.Flags().StringVarP(&quality, "quality", "q", "", "stream quality (best, worst, 720p, audio_only)")
	startCmd.Flags().StringVarP(&format, "format", "f", "", "output format (ts, mp4, mp4_light, mov, flv, mkv, mp3, wav)")
	startCmd.Flags().StringVarP(&filename, "filename", "n", "", "recording filename override")

	rootCmd.AddCommand(startCmd, stopCmd, statusCmd, monitorCmd)
}
