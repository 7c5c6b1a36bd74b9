package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hairoku/hairoku/internal/config"
	pb "github.com/hairoku/hairoku/internal/pb/v1"
	"github.com/hairoku/hairoku/internal/service/common"
	"github.com/hairoku/hairoku/internal/service/server"
)

// startGRPC starts a recorder daemon with temporary config and state file.
// Returns a stop function to gracefully shut the daemon down.
func startGRPC(t *testing.T, addr, statePath, outputDir string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			ServerAddress: addr,
			OutputDir:     outputDir,
			Timeout:       5 * time.Second,
		}),
	)

	go func() {
		options := &server.Options{
			ConfigPath: cfgPath,
			StateFile:  statePath,
		}

		_ = server.Run(ctx, options) //nolint:errcheck // Server exit is checked through the RPCs below.
	}()

	// Wait briefly for the daemon to start listening.
	time.Sleep(150 * time.Millisecond)

	return func() {
		cancel()
		time.Sleep(100 * time.Millisecond)
	}
}

// TestGRPC_Roundtrip starts the real daemon and exercises the control API
// end-to-end with on-disk persistence. No recording tools are installed, so
// the started session is expected to fail and be persisted as failed.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	// Reserve a free port for the test daemon.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	statePath := filepath.Join(t.TempDir(), "sessions.json")

	stop := startGRPC(t, addr, statePath, t.TempDir())
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	// A fresh daemon knows no sessions and has no monitor channels.
	sessions, err := c.ListSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, sessions)

	status, err := c.GetMonitorStatus(ctx)
	require.NoError(t, err)
	require.False(t, status.GetEnabled())

	actor := &pb.SystemActor{
		Hostname: "test-hostname",
		Username: "test-user",
	}

	started, err := c.StartRecording(ctx, "https://www.twitch.tv/somechannel", "", "", "", actor)
	require.NoError(t, err)
	require.NotEmpty(t, started.GetSessionId())
	require.Equal(t, "twitch", started.GetPlatform())
	require.Equal(t, "test-user", started.GetStartedBy().GetUsername())

	// A second start for the same URL is rejected while the first is alive,
	// or the first has already failed because no capture tools exist here.
	// Either way the session must reach a terminal state and be persisted.
	require.Eventually(t, func() bool {
		sess, getErr := c.GetSession(ctx, started.GetSessionId())
		if getErr != nil {
			return false
		}

		return sess.GetState() == "failed"
	}, 10*time.Second, 100*time.Millisecond)

	sessions, err = c.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	_, err = os.Stat(statePath)
	require.NoError(t, err)
}
