package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the recorder binaries.
type Config struct {
	// ServerAddress is the gRPC address of the recorder daemon.
	ServerAddress string `yaml:"server_addr"`
	// OutputDir is the base directory for recordings.
	OutputDir string `yaml:"output_dir"`
	// StateFile is the path to the JSON file storing session history.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Recording controls capture and post-processing behavior.
	Recording RecordingConfig `yaml:"recording"`
	// Monitor controls the automatic live-check loop.
	Monitor MonitorConfig `yaml:"monitor"`
	// Tools controls the managed recording-tool installer.
	Tools ToolsConfig `yaml:"tools"`
}

// RecordingConfig holds capture and conversion settings.
type RecordingConfig struct {
	// Quality is the requested stream quality (best, worst, 720p, ...).
	Quality string `yaml:"quality"`
	// OutputFormat selects post-processing: ts, mp4, mp4_light, mov, flv, mkv, mp3, wav.
	OutputFormat string `yaml:"output_format"`
	// RetryCount is how many times stream opening is retried before fallback.
	RetryCount int `yaml:"retry_count"`
	// RetryWait is the pause between stream-open retries.
	RetryWait time.Duration `yaml:"retry_wait"`
	// HTTPTimeout is passed to the capture tools for HTTP operations.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// StreamTimeout is passed to the capture tools for stream reads.
	StreamTimeout time.Duration `yaml:"stream_timeout"`
	// MaxSizeMB rotates output into segments at this size. Zero disables rotation.
	MaxSizeMB int `yaml:"max_size_mb"`
	// SizeMarginMB is subtracted from MaxSizeMB to rotate before the hard cap.
	SizeMarginMB int `yaml:"size_margin_mb"`
	// KeepSource keeps the captured .ts file after a successful conversion.
	KeepSource bool `yaml:"keep_source"`
	// ChannelFolders puts each channel's recordings in its own subdirectory.
	ChannelFolders bool `yaml:"channel_folders"`
	// DateFolders adds a YYYY-MM-DD subdirectory per recording day.
	DateFolders bool `yaml:"date_folders"`
	// FilenameWithChannel prefixes generated filenames with the channel label.
	FilenameWithChannel bool `yaml:"filename_with_channel"`
	// YouTubeBackend selects the YouTube capture tool: streamlink or ytdlp.
	YouTubeBackend string `yaml:"youtube_backend"`
	// AutoCompress re-encodes finished recordings with a space-saving codec.
	AutoCompress bool `yaml:"auto_compress"`
	// AutoCompressCodec is the compression video codec (default libx265).
	AutoCompressCodec string `yaml:"auto_compress_codec"`
	// AutoCompressPreset is the encoder preset (default medium).
	AutoCompressPreset string `yaml:"auto_compress_preset"`
	// AutoCompressMaxHeight caps the compressed resolution. Zero keeps the input size.
	AutoCompressMaxHeight int `yaml:"auto_compress_max_height"`
	// AutoCompressFPS caps the compressed frame rate. Zero keeps the input rate.
	AutoCompressFPS int `yaml:"auto_compress_fps"`
	// AutoCompressVideoKbps is the compressed video bitrate (default 2500).
	AutoCompressVideoKbps int `yaml:"auto_compress_video_kbps"`
	// AutoCompressAudioKbps is the compressed audio bitrate (default 128).
	AutoCompressAudioKbps int `yaml:"auto_compress_audio_kbps"`
	// AutoCompressKeepOriginal leaves the uncompressed file next to the result.
	AutoCompressKeepOriginal bool `yaml:"auto_compress_keep_original"`
}

// MonitorConfig holds the automatic live-check settings.
type MonitorConfig struct {
	// Interval is the pause between live checks. Zero uses the default.
	Interval time.Duration `yaml:"interval"`
	// YouTubeAPIKey enables Data API lookups; empty falls back to /live resolution.
	YouTubeAPIKey string `yaml:"youtube_api_key"`
	// YouTubeChannels are channel entries (URL, handle, UC id) to record.
	YouTubeChannels []string `yaml:"youtube_channels"`
	// YouTubeNotifyChannels are entries that only produce a log entry when live.
	YouTubeNotifyChannels []string `yaml:"youtube_notify_channels"`
	// TwitchClientID enables Helix API checks together with TwitchClientSecret.
	TwitchClientID string `yaml:"twitch_client_id"`
	// TwitchClientSecret is the Helix client-credentials secret.
	TwitchClientSecret string `yaml:"twitch_client_secret"`
	// TwitchChannels are logins or channel URLs to record.
	TwitchChannels []string `yaml:"twitch_channels"`
	// TwitchNotifyChannels are logins that only produce a log entry when live.
	TwitchNotifyChannels []string `yaml:"twitch_notify_channels"`
	// WatchURLs are arbitrary stream URLs probed with streamlink/yt-dlp.
	WatchURLs []string `yaml:"watch_urls"`
	// NotifyURLs are probed URLs that only produce a log entry when live.
	NotifyURLs []string `yaml:"notify_urls"`
}

// ToolsConfig holds the managed-tool installer settings.
type ToolsConfig struct {
	// ManifestURL is where the tool manifest is hosted.
	ManifestURL string `yaml:"manifest_url"`
	// InstallDir is where managed tool binaries are placed.
	InstallDir string `yaml:"install_dir"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "hairoku-settings.yaml"

	// DefaultServerAddress is used when no settings file exists.
	DefaultServerAddress = "localhost:50051"

	// DefaultStateFilename is the default filename for session history JSON.
	DefaultStateFilename = "hairoku-sessions.json"

	// DefaultOutputDir is the default base directory for recordings.
	DefaultOutputDir = "recordings"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultQuality is the stream quality used when none is requested.
	DefaultQuality = "best"

	// DefaultOutputFormat is the post-processing format used when none is set.
	DefaultOutputFormat = "mp4"

	// DefaultRetryCount is how many stream-open attempts are made by default.
	DefaultRetryCount = 3

	// DefaultRetryWait is the default pause between stream-open retries.
	DefaultRetryWait = 5 * time.Second

	// DefaultHTTPTimeout is the default HTTP timeout for capture tools.
	DefaultHTTPTimeout = 20 * time.Second

	// DefaultStreamTimeout is the default stream-read timeout for capture tools.
	DefaultStreamTimeout = 60 * time.Second

	// DefaultSizeMarginMB is the default rotation margin.
	DefaultSizeMarginMB = 50

	// DefaultMonitorInterval is the default pause between live checks.
	DefaultMonitorInterval = 60 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// YouTubeBackendStreamlink records YouTube through streamlink.
	YouTubeBackendStreamlink = "streamlink"

	// YouTubeBackendYtdlp records YouTube through yt-dlp resolved URLs.
	YouTubeBackendYtdlp = "ytdlp"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when the server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownYouTubeBackend is returned for an unrecognized youtube_backend value.
	errUnknownYouTubeBackend = errors.New("unknown youtube backend")
)

// Default returns settings filled entirely with defaults. It lets the
// one-shot recorder run without a settings file.
func Default() (*Config, error) {
	cfg := &Config{ServerAddress: DefaultServerAddress}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file may carry platform API credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if err := validateRecording(&cfg.Recording); err != nil {
		return err
	}

	if cfg.Monitor.Interval <= 0 {
		cfg.Monitor.Interval = DefaultMonitorInterval
	}

	if cfg.Tools.ManifestURL != "" {
		if _, err := url.ParseRequestURI(cfg.Tools.ManifestURL); err != nil {
			return fmt.Errorf("invalid tools manifest URL: %w", err)
		}
	}

	return nil
}

// validateRecording fills recording defaults and rejects unknown backend names.
func validateRecording(rec *RecordingConfig) error {
	if rec.Quality == "" {
		rec.Quality = DefaultQuality
	}

	if rec.OutputFormat == "" {
		rec.OutputFormat = DefaultOutputFormat
	}

	if rec.RetryCount <= 0 {
		rec.RetryCount = DefaultRetryCount
	}

	if rec.RetryWait <= 0 {
		rec.RetryWait = DefaultRetryWait
	}

	if rec.HTTPTimeout <= 0 {
		rec.HTTPTimeout = DefaultHTTPTimeout
	}

	if rec.StreamTimeout <= 0 {
		rec.StreamTimeout = DefaultStreamTimeout
	}

	if rec.SizeMarginMB <= 0 {
		rec.SizeMarginMB = DefaultSizeMarginMB
	}

	backend := strings.ToLower(strings.TrimSpace(rec.YouTubeBackend))
	switch backend {
	case "":
		rec.YouTubeBackend = YouTubeBackendStreamlink
	case YouTubeBackendStreamlink, YouTubeBackendYtdlp:
		rec.YouTubeBackend = backend
	default:
		return fmt.Errorf("%w: %s", errUnknownYouTubeBackend, rec.YouTubeBackend)
	}

	return nil
}
