package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/service/record"
	"github.com/hairoku/hairoku/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// quality overrides the configured stream quality.
	quality string
	// format overrides the configured output format.
	format string
	// filename overrides the generated recording filename.
	filename string
	// outputDir overrides the recordings directory.
	outputDir string

	// rootCmd represents the base command for one-shot recording.
	rootCmd = &cobra.Command{
		Use:   "hairoku-record <url>",
		Short: "Record one live stream in the foreground.",
		Long: `Records a single live stream URL without a running daemon: captures until
the stream ends or the process is interrupted, then converts the result.
A missing settings file falls back to built-in defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return record.Run(ctx, &record.Options{
				ConfigPath: configPath,
				URL:        args[0],
				Quality:    quality,
				Format:     format,
				Filename:   filename,
				OutputDir:  outputDir,
			})
		},
	}
)

// Execute runs the hairoku-record CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&quality, "quality", "q", "", "stream quality (best, worst, 720p, audio_only)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "output format (ts, mp4, mp4_light, mov, flv, mkv, mp3, wav)")
	rootCmd.Flags().StringVarP(&filename, "filename", "n", "", "recording filename override")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "recordings directory override")
}
