package record

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/convert"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/output"
	"github.com/hairoku/hairoku/internal/probe"
	"github.com/hairoku/hairoku/internal/recorder"
	"github.com/hairoku/hairoku/internal/toolchain"
)

// Options controls one foreground recording.
type Options struct {
	// ConfigPath to YAML settings file; a missing file falls back to defaults.
	ConfigPath string
	// URL is the stream page URL to record.
	URL string
	// Quality overrides the configured stream quality.
	Quality string
	// Format overrides the configured output format.
	Format string
	// Filename overrides the generated recording filename.
	Filename string
	// OutputDir overrides the configured recordings directory.
	OutputDir string
}

// errURLRequired is returned when no stream URL was given.
var errURLRequired = errors.New("stream URL must be provided")

// Run records one stream in the foreground until it ends or the context
// is cancelled, then converts the captured segments.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "hairoku-record")

	if opts.URL == "" {
		return errURLRequired
	}

	settings, err := loadSettings(opts.ConfigPath)
	if err != nil {
		return err
	}

	applyOverrides(settings, opts)

	tools := &toolchain.Resolver{InstallDir: settings.Tools.InstallDir}

	engine := &recorder.Engine{
		Tools:          tools,
		Prober:         &probe.Prober{Tools: tools},
		YouTube:        new(probe.YouTubeResolver),
		YouTubeBackend: settings.Recording.YouTubeBackend,
	}

	outputPath, err := output.Resolve(settings.OutputDir, opts.Filename, opts.URL, "", output.Options{
		ChannelFolders:      settings.Recording.ChannelFolders,
		DateFolders:         settings.Recording.DateFolders,
		FilenameWithChannel: settings.Recording.FilenameWithChannel,
	})
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	logger.InfoKV(ctx, "recording started", "url", opts.URL, "output", outputPath)

	result, err := engine.Record(ctx, &recorder.Request{
		URL:           opts.URL,
		Quality:       settings.Recording.Quality,
		OutputPath:    outputPath,
		RetryCount:    settings.Recording.RetryCount,
		RetryWait:     settings.Recording.RetryWait,
		HTTPTimeout:   settings.Recording.HTTPTimeout,
		StreamTimeout: settings.Recording.StreamTimeout,
		MaxSizeMB:     settings.Recording.MaxSizeMB,
		SizeMarginMB:  settings.Recording.SizeMarginMB,
	})
	if err != nil {
		// A cancelled context means the user hit Ctrl-C; whatever was
		// captured so far is still worth converting.
		if ctx.Err() == nil {
			return fmt.Errorf("record %s: %w", opts.URL, err)
		}
	}

	var segments []string
	if result != nil {
		segments = result.SegmentPaths
	}

	if len(segments) == 0 {
		return recorder.ErrNoData
	}

	logger.InfoKV(ctx, "capture finished",
		"segments", len(segments),
		"bytes_written", result.BytesWritten)

	converter := &convert.Converter{
		Tools:      tools,
		KeepSource: settings.Recording.KeepSource,
	}

	format := convert.NormalizeFormat(settings.Recording.OutputFormat)

	// Conversion must survive the Ctrl-C that ended the capture.
	convertCtx := context.WithoutCancel(ctx)

	for _, segment := range segments {
		converted, err := converter.Convert(convertCtx, segment, format)
		if err != nil {
			logger.WarnKV(ctx, "conversion failed, keeping raw capture",
				"segment", segment, "error", err)

			converted = segment
		}

		if settings.Recording.AutoCompress {
			compressed, err := converter.Compress(convertCtx, converted,
				recorder.CompressOptions(settings.Recording))
			if err != nil {
				logger.WarnKV(ctx, "compression failed, keeping uncompressed file",
					"file", converted, "error", err)
			} else {
				converted = compressed
			}
		}

		logger.InfoKV(ctx, "recording saved", "file", converted)
	}

	return nil
}

// loadSettings reads the settings file, treating a missing file as defaults.
func loadSettings(path string) (*config.Config, error) {
	settings, err := config.Load(path)
	if err == nil {
		return settings, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}

	return nil, err
}

// applyOverrides folds command line options into the loaded settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.Quality != "" {
		settings.Recording.Quality = opts.Quality
	}

	if opts.Format != "" {
		settings.Recording.OutputFormat = opts.Format
	}

	if opts.OutputDir != "" {
		settings.OutputDir = opts.OutputDir
	}
}
