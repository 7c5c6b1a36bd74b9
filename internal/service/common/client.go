//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hairoku/hairoku/internal/config"
	pb "github.com/hairoku/hairoku/internal/pb/v1"
)

// Client wraps the gRPC RecorderService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the recorder daemon.
	conn *grpc.ClientConn
	// api is the generated RecorderService client interface.
	api pb.RecorderServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errURLRequired is returned when a stream URL is not provided.
	errURLRequired = errors.New("stream URL must be provided")
	// errSessionIDRequired is returned when a session ID is not provided.
	errSessionIDRequired = errors.New("session ID must be provided")
)

// Dial establishes a gRPC connection to the recorder daemon.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial recorder daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewRecorderServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// StartRecording asks the daemon to begin capturing a stream URL.
func (c *Client) StartRecording(
	ctx context.Context,
	url, quality, format, filename string,
	actor *pb.SystemActor,
) (*pb.SessionInfo, error) {
	if url == "" {
		return nil, errURLRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &pb.StartRecordingRequest{
		Url:      url,
		Quality:  quality,
		Format:   format,
		Filename: filename,
		Actor:    actor,
	}

	response, err := c.api.StartRecording(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("start recording: %w", err)
	}

	return response, nil
}

// StopRecording asks the daemon to stop a running session.
func (c *Client) StopRecording(ctx context.Context, sessionID string, actor *pb.SystemActor) (*pb.SessionInfo, error) {
	if sessionID == "" {
		return nil, errSessionIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.StopRecording(callCtx, &pb.StopRecordingRequest{SessionId: sessionID, Actor: actor})
	if err != nil {
		return nil, fmt.Errorf("stop recording: %w", err)
	}

	return response, nil
}

// GetSession retrieves one session by ID.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*pb.SessionInfo, error) {
	if sessionID == "" {
		return nil, errSessionIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetSession(callCtx, &pb.GetSessionRequest{SessionId: sessionID})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return response, nil
}

// ListSessions retrieves every session the daemon knows about.
func (c *Client) ListSessions(ctx context.Context) ([]*pb.SessionInfo, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ListSessions(callCtx, new(pb.ListSessionsRequest))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return response.GetSessions(), nil
}

// GetMonitorStatus retrieves the automatic monitor's state.
func (c *Client) GetMonitorStatus(ctx context.Context) (*pb.MonitorStatusResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetMonitorStatus(callCtx, new(pb.MonitorStatusRequest))
	if err != nil {
		return nil, fmt.Errorf("get monitor status: %w", err)
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
