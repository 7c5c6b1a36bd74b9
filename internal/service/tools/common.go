package tools

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/toolchain"
	"github.com/hairoku/hairoku/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// ManifestFilename stores the tool manifest pushed to clients.
	ManifestFilename = "hairoku-tools.yaml"

	// MarkerFilename marks that the installer is running right now to avoid parallel execution.
	MarkerFilename = "hairoku-tools-marker.bin"

	// DefaultFileMode is used when placing tool binaries.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate tool file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// installerExecutableBase is this binary's name, used for stale marker recovery.
	installerExecutableBase = "hairoku-tools"

	// markerLifetime is the period after which a stale install marker is ignored.
	markerLifetime = 30 * time.Second
)

// ManagedTools lists the recording tools the installer is responsible for.
func ManagedTools() []string {
	return []string{toolchain.FFmpeg, toolchain.Streamlink, toolchain.YtDlp}
}

// ToolEntry describes one tool in the manifest.
type ToolEntry struct {
	// URL is where the tool binary is downloaded from.
	URL string `yaml:"url,omitempty"`
	// URLByOS overrides URL per GOOS value when binaries differ by platform.
	URLByOS map[string]string `yaml:"url_by_os,omitempty"`
	// Checksum is the base64-encoded SHA-512 of the binary.
	Checksum string `yaml:"sha512"`
}

// DownloadURL picks the URL for the current platform.
func (e *ToolEntry) DownloadURL() string {
	if u, ok := e.URLByOS[runtime.GOOS]; ok {
		return u
	}

	return e.URL
}

// Manifest describes a published set of recording tools.
type Manifest struct {
	// VersionNumber is the semantic version of this tool set.
	VersionNumber string `yaml:"version"`
	// Tools maps tool names to their manifest entries.
	Tools map[string]*ToolEntry `yaml:"tools"`
}

// NewManifest produces a Manifest initialized with defaults.
func NewManifest() *Manifest {
	return &Manifest{
		VersionNumber: version.Short(),
		Tools:         make(map[string]*ToolEntry, len(ManagedTools())),
	}
}

// SortedToolNames returns the manifest's tool names in a stable order.
func (m *Manifest) SortedToolNames() []string {
	names := make([]string, 0, len(m.Tools))
	for name := range m.Tools {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	hash := hasher.Sum(nil)

	return hash, nil
}

// IsInstallerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsInstallerRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of an install marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The install marker is too old, attempting cleanup")

		if err = terminateProcessByName(executableName(installerExecutableBase)); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Install marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read install marker: %v", err)

	return false
}

// isProcessRunning reports whether another process with the given executable
// name is currently alive.
func isProcessRunning(processName string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == processName {
			return true, nil
		}
	}

	return false, nil
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// executableName returns the name with ".exe" appended on Windows.
func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}

	return name
}
