package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	api "github.com/hairoku/hairoku/internal/api/grpc/recorder"
	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
	pb "github.com/hairoku/hairoku/internal/pb/v1"
	repository "github.com/hairoku/hairoku/internal/repository/session"
)

// Options controls the recorder daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist session history JSON.
	StateFile string
	// OutputDir provides an optional recordings directory override.
	OutputDir string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// shutdownGracePeriod bounds how long running captures may take to stop
// after the gRPC server has gone down.
const shutdownGracePeriod = 30 * time.Second

// Run starts the recorder daemon and blocks until the context is canceled.
// Loads configuration first, then serves the control API while the monitor
// loop watches the configured channels.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "hairoku-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Command line options override the settings file.
	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	if opts.OutputDir != "" {
		settings.OutputDir = opts.OutputDir
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo := repository.NewFileRepository(stateFile)

	svc, err := newService(ctx, settings, repo)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	// The monitor runs for the lifetime of the daemon.
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()

	go svc.monitor.Run(logger.WithName(monitorCtx, "monitor"))

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterRecorderServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Recorder daemon listening",
		"listen_address", listenAddress,
		"state_file", stateFile,
		"output_dir", settings.OutputDir)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	stopMonitor()

	// Give running captures a bounded window to stop and persist.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGracePeriod)
	defer cancel()

	if err := svc.manager.Shutdown(shutdownCtx); err != nil {
		logger.Warnf(ctx, "Recordings did not stop in time: %v", err)
	}

	logger.Info(ctx, "Recorder daemon stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces using the configured port.
	return ":" + port, nil
}
