package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFindPrefersInstallDir checks that the managed install directory wins over PATH.
func TestFindPrefersInstallDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tool := filepath.Join(dir, executableName(Streamlink))
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

	resolver := &Resolver{InstallDir: dir}

	path, err := resolver.Find(Streamlink)
	require.NoError(t, err)
	require.Equal(t, tool, path)
	require.True(t, resolver.Available(Streamlink))
}

// TestFindMissingTool checks the sentinel error for unresolvable tools.
func TestFindMissingTool(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{InstallDir: t.TempDir()}

	_, err := resolver.Find("definitely-not-installed-tool")
	require.ErrorIs(t, err, ErrToolNotFound)
	require.False(t, resolver.Available("definitely-not-installed-tool"))
}

// TestFindFFmpegHonorsEnv checks the FFMPEG_PATH override.
func TestFindFFmpegHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "custom-ffmpeg")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv(FFmpegPathEnv, tool)

	resolver := &Resolver{}

	path, err := resolver.FindFFmpeg()
	require.NoError(t, err)
	require.Equal(t, tool, path)
}
