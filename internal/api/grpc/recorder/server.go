package recorder

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainmon "github.com/hairoku/hairoku/internal/domain/monitor"
	domain "github.com/hairoku/hairoku/internal/domain/session"
	pb "github.com/hairoku/hairoku/internal/pb/v1"
	"github.com/hairoku/hairoku/internal/recorder"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	StartRecording(ctx context.Context, opts recorder.StartOptions) (*domain.Session, error)
	StopRecording(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context) []*domain.Session
	MonitorStatus(ctx context.Context) *domainmon.Status
}

// Server implements the RecorderService gRPC API.
type Server struct {
	pb.UnimplementedRecorderServiceServer

	// service provides the business logic for recording operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// StartRecording begins capturing the requested stream URL.
func (s *Server) StartRecording(ctx context.Context, req *pb.StartRecordingRequest) (*pb.SessionInfo, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	if req.GetUrl() == "" {
		return nil, status.Error(codes.InvalidArgument, "stream URL is required")
	}

	sess, err := s.service.StartRecording(ctx, recorder.StartOptions{
		URL:      req.GetUrl(),
		Quality:  req.GetQuality(),
		Format:   req.GetFormat(),
		Filename: req.GetFilename(),
		Actor:    toDomainActor(req.GetActor()),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return toProtoSession(sess), nil
}

// StopRecording requests a running session to stop and returns its snapshot.
func (s *Server) StopRecording(ctx context.Context, req *pb.StopRecordingRequest) (*pb.SessionInfo, error) {
	if req == nil || req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session ID is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	sess, err := s.service.StopRecording(ctx, req.GetSessionId())
	if err != nil {
		return nil, toStatusError(err)
	}

	return toProtoSession(sess), nil
}

// GetSession returns one session by ID.
func (s *Server) GetSession(ctx context.Context, req *pb.GetSessionRequest) (*pb.SessionInfo, error) {
	if req == nil || req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session ID is required")
	}

	sess, err := s.service.GetSession(ctx, req.GetSessionId())
	if err != nil {
		return nil, toStatusError(err)
	}

	return toProtoSession(sess), nil
}

// ListSessions returns every session the daemon knows about, newest first.
func (s *Server) ListSessions(ctx context.Context, _ *pb.ListSessionsRequest) (*pb.ListSessionsResponse, error) {
	sessions := s.service.ListSessions(ctx)

	resp := &pb.ListSessionsResponse{
		Sessions: make([]*pb.SessionInfo, 0, len(sessions)),
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toProtoSession(sess))
	}

	return resp, nil
}

// GetMonitorStatus reports the automatic monitor's state.
func (s *Server) GetMonitorStatus(ctx context.Context, _ *pb.MonitorStatusRequest) (*pb.MonitorStatusResponse, error) {
	return toProtoMonitorStatus(s.service.MonitorStatus(ctx)), nil
}

// toStatusError maps business errors to gRPC status codes.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, recorder.ErrAlreadyRecording):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, recorder.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, recorder.ErrSessionFinished):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toDomainActor converts a protobuf SystemActor to a domain Actor.
func toDomainActor(actor *pb.SystemActor) *domain.Actor {
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: actor.GetHostname(),
		Username: actor.GetUsername(),
	}
}

// toProtoActor converts a domain Actor to its protobuf form.
func toProtoActor(actor *domain.Actor) *pb.SystemActor {
	if actor == nil {
		return nil
	}

	return &pb.SystemActor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

// toProtoSession converts a domain session to a pb.SessionInfo message.
func toProtoSession(sess *domain.Session) *pb.SessionInfo {
	if sess == nil {
		return &pb.SessionInfo{}
	}

	info := &pb.SessionInfo{
		SessionId:    sess.ID,
		Url:          sess.URL,
		Platform:     sess.Platform,
		Quality:      sess.Quality,
		Format:       sess.Format,
		State:        string(sess.State),
		Error:        sess.Error,
		OutputFiles:  append([]string(nil), sess.OutputFiles...),
		BytesWritten: sess.BytesWritten,
		StartedBy:    toProtoActor(sess.StartedBy),
	}

	if !sess.StartedAt.IsZero() {
		info.StartedAt = sess.StartedAt.Unix()
	}

	if !sess.FinishedAt.IsZero() {
		info.FinishedAt = sess.FinishedAt.Unix()
	}

	return info
}

// toProtoMonitorStatus converts a monitor status snapshot to its protobuf form.
func toProtoMonitorStatus(st *domainmon.Status) *pb.MonitorStatusResponse {
	if st == nil {
		return &pb.MonitorStatusResponse{}
	}

	resp := &pb.MonitorStatusResponse{
		Enabled:          st.Enabled,
		IntervalSeconds:  int64(st.Interval.Seconds()),
		WatchedChannels:  int32(st.WatchedChannels),
		ActiveRecordings: int32(st.ActiveRecordings),
		LastLiveUrls:     append([]string(nil), st.LastLiveURLs...),
	}

	if !st.LastCheck.IsZero() {
		resp.LastCheck = st.LastCheck.Unix()
	}

	return resp
}
