package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hairoku/hairoku/internal/config"
)

// TestRun_RequiresURL asserts an empty URL fails before any setup.
func TestRun_RequiresURL(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, errURLRequired)
}

// TestLoadSettings covers the missing-file fallback and broken settings.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	settings, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultQuality, settings.Recording.Quality)
	require.Equal(t, config.DefaultOutputDir, settings.OutputDir)

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("{not yaml"), 0o600))

	_, err = loadSettings(broken)
	require.Error(t, err)
}

// TestApplyOverrides checks command line options win over file settings.
func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	settings, err := config.Default()
	require.NoError(t, err)

	applyOverrides(settings, &Options{
		Quality:   "720p",
		Format:    "mkv",
		OutputDir: "/tmp/recordings",
	})

	require.Equal(t, "720p", settings.Recording.Quality)
	require.Equal(t, "mkv", settings.Recording.OutputFormat)
	require.Equal(t, "/tmp/recordings", settings.OutputDir)

	// Empty options leave settings untouched.
	applyOverrides(settings, new(Options))
	require.Equal(t, "720p", settings.Recording.Quality)
}
