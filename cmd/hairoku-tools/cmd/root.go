package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/service/tools"
	"github.com/hairoku/hairoku/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// manifestURL overrides the configured manifest location.
	manifestURL string
	// installDir overrides the configured install directory.
	installDir string

	// rootCmd represents the base command for managing the recording tools.
	rootCmd = &cobra.Command{
		Use:   "hairoku-tools",
		Short: "Install and update the external recording tools.",
		Long: `Manages the ffmpeg, streamlink and yt-dlp binaries the recorder depends on.
A YAML manifest describes the published binaries with SHA-512 checksums;
install and update verify every download before swapping binaries in place.`,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Compare installed tools against the manifest.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return tools.RunCheck(ctx, toolOptions())
		},
	}

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Download and install every manifest tool.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return tools.RunInstall(ctx, toolOptions())
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Download and install only the tools that changed.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return tools.RunUpdate(ctx, toolOptions())
		},
	}

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Hash local tool binaries and write a manifest.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return tools.RunManifest(ctx, toolOptions())
		},
	}
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

func toolOptions() *tools.Options {
	return &tools.Options{
		ConfigPath:  configPath,
		ManifestURL: manifestURL,
		InstallDir:  installDir,
	}
}

// Execute runs the hairoku-tools CLI and exits with non-zero status on error.
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
	rootCmd.PersistentFlags().StringVarP(&manifestURL, "manifest", "m", "", "manifest URL or file path override")
	rootCmd.PersistentFlags().StringVarP(&installDir, "install-dir", "d", "", "tool install directory override")

	rootCmd.AddCommand(checkCmd, installCmd, updateCmd, manifestCmd)
}
