package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
)

var (
	errInstallerAlreadyRunning = errors.New("the installer is already running")
	errNoManifestSource        = errors.New("no manifest URL configured")
	errEmptyManifest           = errors.New("tool manifest is empty")
	errNoChecksum              = errors.New("checksum missing for tool")
	errNoDownloadURL           = errors.New("download URL missing for tool")
	errBadHTTPStatus           = errors.New("unexpected http status")
	errToolsOutdated           = errors.New("installed tools differ from manifest")
	errToolBusy                = errors.New("tool binary is currently running")
	errPreviousArtifactLocked  = errors.New("unable to remove previous artifact")
)

// Options are inputs accepted by the tool installer entry points.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// ManifestURL overrides the configured manifest location. It may be an
	// http(s) URL or a local file path.
	ManifestURL string
	// InstallDir overrides the configured install directory.
	InstallDir string
}

// toolState describes one manifest tool against the local install.
type toolState struct {
	name       string
	target     string
	entry      *ToolEntry
	needUpdate bool
}

// RunCheck compares installed tool binaries against the manifest and
// returns an error when any tool is missing or differs.
func RunCheck(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "hairoku-tools-check")

	manifest, installDir, err := loadManifestAndDir(ctx, opts)
	if err != nil {
		return err
	}

	states, err := compareManifest(manifest, installDir)
	if err != nil {
		return err
	}

	outdated := 0

	for _, state := range states {
		if state.needUpdate {
			outdated++

			logger.InfoKV(ctx, "tool needs update", "tool", state.name, "path", state.target)
		} else {
			logger.InfoKV(ctx, "tool up to date", "tool", state.name, "path", state.target)
		}
	}

	if outdated > 0 {
		return fmt.Errorf("%d of %d: %w", outdated, len(states), errToolsOutdated)
	}

	logger.Info(ctx, "All tools match the manifest")

	return nil
}

// RunInstall downloads and applies every manifest tool.
func RunInstall(ctx context.Context, opts *Options) error {
	return runInstall(logger.WithName(ctx, "hairoku-tools-install"), opts, false)
}

// RunUpdate downloads and applies only the tools whose checksums differ.
func RunUpdate(ctx context.Context, opts *Options) error {
	return runInstall(logger.WithName(ctx, "hairoku-tools-update"), opts, true)
}

//nolint:cyclop // The install workflow is a linear sequence of guarded steps.
func runInstall(ctx context.Context, opts *Options, onlyOutdated bool) error {
	if IsInstallerRunningNow(ctx) {
		return errInstallerAlreadyRunning
	}

	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return err
	}

	if err = marker.Close(); err != nil {
		return err
	}

	defer func() {
		_ = os.Remove(MarkerFilename)
	}()

	manifest, installDir, err := loadManifestAndDir(ctx, opts)
	if err != nil {
		return err
	}

	states, err := compareManifest(manifest, installDir)
	if err != nil {
		return err
	}

	if onlyOutdated {
		states = outdatedOnly(states)
		if len(states) == 0 {
			logger.Info(ctx, "All tools match the manifest, nothing to update")
			return nil
		}
	}

	// Refuse to touch binaries that are currently executing and clear
	// leftovers from previous runs. A locked previous artifact aborts the
	// whole run before any download or apply happens.
	for _, state := range states {
		if err = ensureReplaceable(state); err != nil {
			return err
		}
	}

	if err = os.MkdirAll(installDir, DefaultFileMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	temporaryDirectory, err := os.MkdirTemp("", "hairoku-tools-")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.RemoveAll(temporaryDirectory)
	}()

	downloaded := make(map[string]string, len(states))

	for _, state := range states {
		var path string

		path, err = downloadTool(ctx, state, temporaryDirectory)
		if err != nil {
			return err
		}

		downloaded[state.name] = path
	}

	for _, state := range states {
		if err = applyTool(ctx, state, downloaded[state.name]); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Tools installed", "count", len(states), "install_dir", installDir)

	return nil
}

// RunManifest hashes the local tool binaries and writes the manifest.
// This is the publisher side of the installer.
func RunManifest(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "hairoku-tools-manifest")

	if IsInstallerRunningNow(ctx) {
		return errInstallerAlreadyRunning
	}

	settings, err := loadSettings(opts.ConfigPath)
	if err != nil {
		return err
	}

	installDir := settings.Tools.InstallDir
	if opts.InstallDir != "" {
		installDir = opts.InstallDir
	}

	manifest := NewManifest()

	for _, name := range ManagedTools() {
		target := filepath.Join(installDir, executableName(name))

		var checksum []byte

		checksum, err = GetFileChecksum(target)
		if err != nil {
			return fmt.Errorf("hash %s: %w", target, err)
		}

		manifest.Tools[name] = &ToolEntry{
			Checksum: base64.StdEncoding.EncodeToString(checksum),
		}
	}

	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}

	if err = os.WriteFile(ManifestFilename, contents, DefaultFileMode); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest written",
		"path", ManifestFilename,
		"version", manifest.VersionNumber,
		"tools", manifest.SortedToolNames())
	logger.Infof(ctx, "Fill in the download URLs in %s and upload it together with the binaries", ManifestFilename)

	return nil
}

// loadManifestAndDir resolves settings, fetches the manifest and returns it
// with the effective install directory.
func loadManifestAndDir(ctx context.Context, opts *Options) (*Manifest, string, error) {
	settings, err := loadSettings(opts.ConfigPath)
	if err != nil {
		return nil, "", err
	}

	manifestSource := settings.Tools.ManifestURL
	if opts.ManifestURL != "" {
		manifestSource = opts.ManifestURL
	}

	if manifestSource == "" {
		return nil, "", errNoManifestSource
	}

	installDir := settings.Tools.InstallDir
	if opts.InstallDir != "" {
		installDir = opts.InstallDir
	}

	if installDir == "" {
		installDir = "."
	}

	manifest, err := fetchManifest(ctx, manifestSource)
	if err != nil {
		return nil, "", err
	}

	if len(manifest.Tools) == 0 {
		return nil, "", errEmptyManifest
	}

	logger.InfoKV(ctx, "Manifest loaded",
		"source", manifestSource,
		"version", manifest.VersionNumber,
		"tools", manifest.SortedToolNames())

	return manifest, installDir, nil
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

// fetchManifest reads the manifest from an http(s) URL or a local path.
func fetchManifest(ctx context.Context, source string) (*Manifest, error) {
	var (
		data []byte
		err  error
	)

	if isHTTPSource(source) {
		data, err = fetchRemote(ctx, source)
	} else {
		data, err = os.ReadFile(filepath.Clean(source))
	}

	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	var manifest Manifest
	if err = yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &manifest, nil
}

func isHTTPSource(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}

	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func fetchRemote(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", source, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}

// compareManifest checks each manifest tool against the installed binary.
func compareManifest(manifest *Manifest, installDir string) ([]*toolState, error) {
	states := make([]*toolState, 0, len(manifest.Tools))

	for _, name := range manifest.SortedToolNames() {
		entry := manifest.Tools[name]
		if entry.Checksum == "" {
			return nil, fmt.Errorf("%s: %w", name, errNoChecksum)
		}

		wantChecksum, err := base64.StdEncoding.DecodeString(entry.Checksum)
		if err != nil {
			return nil, fmt.Errorf("decode checksum for %s: %w", name, err)
		}

		target := filepath.Join(installDir, executableName(name))

		haveChecksum, err := localChecksum(target)
		if err != nil {
			return nil, err
		}

		states = append(states, &toolState{
			name:       name,
			target:     target,
			entry:      entry,
			needUpdate: !bytes.Equal(wantChecksum, haveChecksum),
		})
	}

	return states, nil
}

// localChecksum hashes the installed binary, returning nil when it is absent.
func localChecksum(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	return GetFileChecksum(path)
}

func outdatedOnly(states []*toolState) []*toolState {
	result := make([]*toolState, 0, len(states))

	for _, state := range states {
		if state.needUpdate {
			result = append(result, state)
		}
	}

	return result
}

// ensureReplaceable verifies the target binary can be swapped: its process
// must not be running and the previous run's artifact must be removable.
func ensureReplaceable(state *toolState) error {
	running, err := isProcessRunning(filepath.Base(state.target))
	if err != nil {
		return fmt.Errorf("scan processes: %w", err)
	}

	if running {
		return fmt.Errorf("%s: %w", state.name, errToolBusy)
	}

	oldFileName := state.target + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		if err = os.Remove(oldFileName); err != nil {
			return fmt.Errorf("%s: %w: %w", oldFileName, errPreviousArtifactLocked, err)
		}
	}

	return nil
}

// downloadTool fetches one tool binary into the temporary directory.
func downloadTool(ctx context.Context, state *toolState, temporaryDirectory string) (string, error) {
	downloadURL := state.entry.DownloadURL()
	if downloadURL == "" {
		return "", fmt.Errorf("%s: %w", state.name, errNoDownloadURL)
	}

	data, err := fetchRemote(ctx, downloadURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", state.name, err)
	}

	outputFileName := filepath.Join(temporaryDirectory, filepath.Base(state.target))
	if err = os.WriteFile(outputFileName, data, DefaultFileMode); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Downloaded tool", "tool", state.name, "path", outputFileName)

	return outputFileName, nil
}

// applyTool swaps the binary in place with checksum enforcement.
func applyTool(ctx context.Context, state *toolState, downloadedFileName string) error {
	data, err := os.ReadFile(filepath.Clean(downloadedFileName))
	if err != nil {
		return err
	}

	checksum, err := base64.StdEncoding.DecodeString(state.entry.Checksum)
	if err != nil {
		return err
	}

	if _, err = os.Stat(state.target); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(state.target); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Applying tool", "tool", state.name, "path", state.target)

	options := goupdate.Options{
		TargetPath: state.target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("apply %s: %w", state.name, err)
	}

	oldFileName := state.target + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}
