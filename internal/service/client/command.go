package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
	pb "github.com/hairoku/hairoku/internal/pb/v1"
	"github.com/hairoku/hairoku/internal/service/common"
)

// Options configures one recorder control operation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// URL is the stream page URL for start operations.
	URL string

	// SessionID targets stop and status operations.
	SessionID string

	// Quality overrides the configured stream quality for start operations.
	Quality string

	// Format overrides the configured output format for start operations.
	Format string

	// Filename overrides the generated recording filename.
	Filename string
}

// RunStart asks the daemon to begin recording a stream URL.
func RunStart(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, "hairoku-start", func(ctx context.Context, c *common.Client) error {
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		sess, err := c.StartRecording(ctx, opts.URL, opts.Quality, opts.Format, opts.Filename, actor)
		if err != nil {
			return err
		}

		logger.Infof(ctx, "Recording started: %s", formatSession(sess))

		return nil
	})
}

// RunStop asks the daemon to stop a running session.
func RunStop(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, "hairoku-stop", func(ctx context.Context, c *common.Client) error {
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		sess, err := c.StopRecording(ctx, opts.SessionID, actor)
		if err != nil {
			return err
		}

		logger.Infof(ctx, "Recording stopping: %s", formatSession(sess))

		return nil
	})
}

// RunStatus prints one session when a session ID is given, otherwise the
// whole session list, newest first.
func RunStatus(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, "hairoku-status", func(ctx context.Context, c *common.Client) error {
		if opts.SessionID != "" {
			sess, err := c.GetSession(ctx, opts.SessionID)
			if err != nil {
				return err
			}

			logger.Infof(ctx, "%s", formatSession(sess))

			return nil
		}

		sessions, err := c.ListSessions(ctx)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			logger.Info(ctx, "No sessions")
			return nil
		}

		for _, sess := range sessions {
			logger.Infof(ctx, "%s", formatSession(sess))
		}

		return nil
	})
}

// RunMonitorStatus prints the automatic monitor's state.
func RunMonitorStatus(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, "hairoku-monitor", func(ctx context.Context, c *common.Client) error {
		status, err := c.GetMonitorStatus(ctx)
		if err != nil {
			return err
		}

		logger.Infof(ctx, "%s", formatMonitorStatus(status))

		return nil
	})
}

// withClient loads settings, dials the daemon and runs the operation.
func withClient(
	ctx context.Context,
	opts *Options,
	name string,
	fn func(ctx context.Context, c *common.Client) error,
) error {
	ctx = logger.WithName(ctx, name)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(ctx, client)
}

// formatSession converts a session snapshot to a readable log message.
func formatSession(sess *pb.SessionInfo) string {
	if sess == nil {
		return "<nil session>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s %s", sess.GetSessionId(), sess.GetState(), sess.GetUrl())

	if sess.GetBytesWritten() > 0 {
		fmt.Fprintf(&b, " %s", formatBytes(sess.GetBytesWritten()))
	}

	if files := sess.GetOutputFiles(); len(files) > 0 {
		fmt.Fprintf(&b, " -> %s", strings.Join(files, ", "))
	}

	if sess.GetError() != "" {
		fmt.Fprintf(&b, " (%s)", sess.GetError())
	}

	if by := sess.GetStartedBy(); by != nil {
		fmt.Fprintf(&b, " by %s@%s", by.GetUsername(), by.GetHostname())
	}

	if sess.GetStartedAt() > 0 {
		fmt.Fprintf(&b, " at %s", time.Unix(sess.GetStartedAt(), 0).Format(time.RFC3339))
	}

	return b.String()
}

// formatMonitorStatus converts the monitor snapshot to a readable log message.
func formatMonitorStatus(status *pb.MonitorStatusResponse) string {
	if status == nil || !status.GetEnabled() {
		return "monitor disabled"
	}

	lastCheck := "<never>"
	if status.GetLastCheck() > 0 {
		lastCheck = time.Unix(status.GetLastCheck(), 0).Format(time.RFC3339)
	}

	msg := fmt.Sprintf("monitor: %d channels, %d active recordings, interval %ds, last check %s",
		status.GetWatchedChannels(),
		status.GetActiveRecordings(),
		status.GetIntervalSeconds(),
		lastCheck)

	if live := status.GetLastLiveUrls(); len(live) > 0 {
		msg += ", live: " + strings.Join(live, ", ")
	}

	return msg
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
