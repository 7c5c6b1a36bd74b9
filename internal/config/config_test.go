package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, default filling and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing socket.
	settings := new(Config)

	err := Validate(settings)
	require.Error(t, err)

	// Bad socket.
	settings = &Config{
		ServerAddress: "bad:address",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Okay, defaults filled in place.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
	}

	err = Validate(settings)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultStateFilename, settings.StateFile)
	require.Equal(t, DefaultOutputDir, settings.OutputDir)
	require.Equal(t, DefaultQuality, settings.Recording.Quality)
	require.Equal(t, DefaultOutputFormat, settings.Recording.OutputFormat)
	require.Equal(t, YouTubeBackendStreamlink, settings.Recording.YouTubeBackend)
	require.Equal(t, DefaultMonitorInterval, settings.Monitor.Interval)
}

// TestValidate_Rejections covers the format checks beyond the server socket.
func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	settings := &Config{
		ServerAddress: "127.0.0.1:0",
		Recording: RecordingConfig{
			YouTubeBackend: "mplayer",
		},
	}

	err := Validate(settings)
	require.ErrorIs(t, err, errUnknownYouTubeBackend)

	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Tools: ToolsConfig{
			ManifestURL: "not a url",
		},
	}

	err = Validate(settings)
	require.Error(t, err)
}

// TestDefault ensures defaults alone make a usable configuration.
func TestDefault(t *testing.T) {
	t.Parallel()

	settings, err := Default()
	require.NoError(t, err)
	require.Equal(t, DefaultServerAddress, settings.ServerAddress)
	require.Equal(t, DefaultOutputDir, settings.OutputDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50051",
		OutputDir:     filepath.Join(dir, "recordings"),
		Timeout:       10 * time.Second,
		Recording: RecordingConfig{
			Quality:      "720p",
			OutputFormat: "mkv",
			MaxSizeMB:    2048,
		},
		Monitor: MonitorConfig{
			TwitchChannels: []string{"somechannel"},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.OutputDir, loaded.OutputDir)
	require.Equal(t, settings.Recording.Quality, loaded.Recording.Quality)
	require.Equal(t, settings.Recording.MaxSizeMB, loaded.Recording.MaxSizeMB)
	require.Equal(t, settings.Monitor.TwitchChannels, loaded.Monitor.TwitchChannels)

	// Credentials may live here, so the file must not be world-readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}
