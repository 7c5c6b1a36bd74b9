// Code generated manually for bootstrap. Replace with protoc-generated code for production.

// Package pb contains the wire types of the recorder control API.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Reference imports to suppress errors if code is not otherwise used.
var _ context.Context

// Verify that this generated code is sufficiently up-to-date.
const _ = grpc.SupportPackageIsVersion7

// SystemActor identifies who issued a request.
type SystemActor struct {
	Hostname string `protobuf:"bytes,1,opt,name=hostname,proto3" json:"hostname,omitempty"`
	Username string `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *SystemActor) Reset()         { *m = SystemActor{} }
func (m *SystemActor) String() string { return "SystemActor" }
func (*SystemActor) ProtoMessage()    {}

func (m *SystemActor) GetHostname() string {
	if m != nil {
		return m.Hostname
	}
	return ""
}

func (m *SystemActor) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

type StartRecordingRequest struct {
	Url      string       `protobuf:"bytes,1,opt,name=url,proto3" json:"url,omitempty"`
	Quality  string       `protobuf:"bytes,2,opt,name=quality,proto3" json:"quality,omitempty"`
	Format   string       `protobuf:"bytes,3,opt,name=format,proto3" json:"format,omitempty"`
	Filename string       `protobuf:"bytes,4,opt,name=filename,proto3" json:"filename,omitempty"`
	Actor    *SystemActor `protobuf:"bytes,5,opt,name=actor,proto3" json:"actor,omitempty"`
}

func (m *StartRecordingRequest) Reset()         { *m = StartRecordingRequest{} }
func (m *StartRecordingRequest) String() string { return "StartRecordingRequest" }
func (*StartRecordingRequest) ProtoMessage()    {}

func (m *StartRecordingRequest) GetUrl() string {
	if m != nil {
		return m.Url
	}
	return ""
}

func (m *StartRecordingRequest) GetQuality() string {
	if m != nil {
		return m.Quality
	}
	return ""
}

func (m *StartRecordingRequest) GetFormat() string {
	if m != nil {
		return m.Format
	}
	return ""
}

func (m *StartRecordingRequest) GetFilename() string {
	if m != nil {
		return m.Filename
	}
	return ""
}

func (m *StartRecordingRequest) GetActor() *SystemActor {
	if m != nil {
		return m.Actor
	}
	return nil
}

type StopRecordingRequest struct {
	SessionId string       `protobuf:"bytes,1,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
	Actor     *SystemActor `protobuf:"bytes,2,opt,name=actor,proto3" json:"actor,omitempty"`
}

func (m *StopRecordingRequest) Reset()         { *m = StopRecordingRequest{} }
func (m *StopRecordingRequest) String() string { return "StopRecordingRequest" }
func (*StopRecordingRequest) ProtoMessage()    {}

func (m *StopRecordingRequest) GetSessionId() string {
	if m != nil {
		return m.SessionId
	}
	return ""
}

func (m *StopRecordingRequest) GetActor() *SystemActor {
	if m != nil {
		return m.Actor
	}
	return nil
}

type GetSessionRequest struct {
	SessionId string `protobuf:"bytes,1,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
}

func (m *GetSessionRequest) Reset()         { *m = GetSessionRequest{} }
func (m *GetSessionRequest) String() string { return "GetSessionRequest" }
func (*GetSessionRequest) ProtoMessage()    {}

func (m *GetSessionRequest) GetSessionId() string {
	if m != nil {
		return m.SessionId
	}
	return ""
}

type ListSessionsRequest struct{}

func (m *ListSessionsRequest) Reset()         { *m = ListSessionsRequest{} }
func (m *ListSessionsRequest) String() string { return "ListSessionsRequest" }
func (*ListSessionsRequest) ProtoMessage()    {}

type ListSessionsResponse struct {
	Sessions []*SessionInfo `protobuf:"bytes,1,rep,name=sessions,proto3" json:"sessions,omitempty"`
}

func (m *ListSessionsResponse) Reset()         { *m = ListSessionsResponse{} }
func (m *ListSessionsResponse) String() string { return "ListSessionsResponse" }
func (*ListSessionsResponse) ProtoMessage()    {}

func (m *ListSessionsResponse) GetSessions() []*SessionInfo {
	if m != nil {
		return m.Sessions
	}
	return nil
}

// SessionInfo mirrors one recording session. Timestamps are Unix seconds.
type SessionInfo struct {
	SessionId    string       `protobuf:"bytes,1,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
	Url          string       `protobuf:"bytes,2,opt,name=url,proto3" json:"url,omitempty"`
	Platform     string       `protobuf:"bytes,3,opt,name=platform,proto3" json:"platform,omitempty"`
	Quality      string       `protobuf:"bytes,4,opt,name=quality,proto3" json:"quality,omitempty"`
	Format       string       `protobuf:"bytes,5,opt,name=format,proto3" json:"format,omitempty"`
	State        string       `protobuf:"bytes,6,opt,name=state,proto3" json:"state,omitempty"`
	Error        string       `protobuf:"bytes,7,opt,name=error,proto3" json:"error,omitempty"`
	OutputFiles  []string     `protobuf:"bytes,8,rep,name=output_files,json=outputFiles,proto3" json:"output_files,omitempty"`
	BytesWritten int64        `protobuf:"varint,9,opt,name=bytes_written,json=bytesWritten,proto3" json:"bytes_written,omitempty"`
	StartedBy    *SystemActor `protobuf:"bytes,10,opt,name=started_by,json=startedBy,proto3" json:"started_by,omitempty"`
	StartedAt    int64        `protobuf:"varint,11,opt,name=started_at,json=startedAt,proto3" json:"started_at,omitempty"`
	FinishedAt   int64        `protobuf:"varint,12,opt,name=finished_at,json=finishedAt,proto3" json:"finished_at,omitempty"`
}

func (m *SessionInfo) Reset()         { *m = SessionInfo{} }
func (m *SessionInfo) String() string { return "SessionInfo" }
func (*SessionInfo) ProtoMessage()    {}

func (m *SessionInfo) GetSessionId() string {
	if m != nil {
		return m.SessionId
	}
	return ""
}

func (m *SessionInfo) GetUrl() string {
	if m != nil {
		return m.Url
	}
	return ""
}

func (m *SessionInfo) GetPlatform() string {
	if m != nil {
		return m.Platform
	}
	return ""
}

func (m *SessionInfo) GetQuality() string {
	if m != nil {
		return m.Quality
	}
	return ""
}

func (m *SessionInfo) GetFormat() string {
	if m != nil {
		return m.Format
	}
	return ""
}

func (m *SessionInfo) GetState() string {
	if m != nil {
		return m.State
	}
	return ""
}

func (m *SessionInfo) GetError() string {
	if m != nil {
		return m.Error
	}
	return ""
}

func (m *SessionInfo) GetOutputFiles() []string {
	if m != nil {
		return m.OutputFiles
	}
	return nil
}

func (m *SessionInfo) GetBytesWritten() int64 {
	if m != nil {
		return m.BytesWritten
	}
	return 0
}

func (m *SessionInfo) GetStartedBy() *SystemActor {
	if m != nil {
		return m.StartedBy
	}
	return nil
}

func (m *SessionInfo) GetStartedAt() int64 {
	if m != nil {
		return m.StartedAt
	}
	return 0
}

func (m *SessionInfo) GetFinishedAt() int64 {
	if m != nil {
		return m.FinishedAt
	}
	return 0
}

type MonitorStatusRequest struct{}

func (m *MonitorStatusRequest) Reset()         { *m = MonitorStatusRequest{} }
func (m *MonitorStatusRequest) String() string { return "MonitorStatusRequest" }
func (*MonitorStatusRequest) ProtoMessage()    {}

type MonitorStatusResponse struct {
	Enabled          bool     `protobuf:"varint,1,opt,name=enabled,proto3" json:"enabled,omitempty"`
	IntervalSeconds  int64    `protobuf:"varint,2,opt,name=interval_seconds,json=intervalSeconds,proto3" json:"interval_seconds,omitempty"`
	LastCheck        int64    `protobuf:"varint,3,opt,name=last_check,json=lastCheck,proto3" json:"last_check,omitempty"`
	WatchedChannels  int32    `protobuf:"varint,4,opt,name=watched_channels,json=watchedChannels,proto3" json:"watched_channels,omitempty"`
	ActiveRecordings int32    `protobuf:"varint,5,opt,name=active_recordings,json=activeRecordings,proto3" json:"active_recordings,omitempty"`
	LastLiveUrls     []string `protobuf:"bytes,6,rep,name=last_live_urls,json=lastLiveUrls,proto3" json:"last_live_urls,omitempty"`
}

func (m *MonitorStatusResponse) Reset()         { *m = MonitorStatusResponse{} }
func (m *MonitorStatusResponse) String() string { return "MonitorStatusResponse" }
func (*MonitorStatusResponse) ProtoMessage()    {}

func (m *MonitorStatusResponse) GetEnabled() bool {
	if m != nil {
		return m.Enabled
	}
	return false
}

func (m *MonitorStatusResponse) GetIntervalSeconds() int64 {
	if m != nil {
		return m.IntervalSeconds
	}
	return 0
}

func (m *MonitorStatusResponse) GetLastCheck() int64 {
	if m != nil {
		return m.LastCheck
	}
	return 0
}

func (m *MonitorStatusResponse) GetWatchedChannels() int32 {
	if m != nil {
		return m.WatchedChannels
	}
	return 0
}

func (m *MonitorStatusResponse) GetActiveRecordings() int32 {
	if m != nil {
		return m.ActiveRecordings
	}
	return 0
}

func (m *MonitorStatusResponse) GetLastLiveUrls() []string {
	if m != nil {
		return m.LastLiveUrls
	}
	return nil
}

// RecorderServiceClient is the client API for RecorderService service.
type RecorderServiceClient interface {
	// StartRecording begins capturing a stream URL.
	StartRecording(ctx context.Context, in *StartRecordingRequest, opts ...grpc.CallOption) (*SessionInfo, error)
	// StopRecording requests a running session to stop.
	StopRecording(ctx context.Context, in *StopRecordingRequest, opts ...grpc.CallOption) (*SessionInfo, error)
	// GetSession returns one session by ID.
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*SessionInfo, error)
	// ListSessions returns every session the daemon knows about.
	ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	// GetMonitorStatus reports the automatic monitor's state.
	GetMonitorStatus(ctx context.Context, in *MonitorStatusRequest, opts ...grpc.CallOption) (*MonitorStatusResponse, error)
}

type recorderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRecorderServiceClient(cc grpc.ClientConnInterface) RecorderServiceClient {
	return &recorderServiceClient{cc}
}

func (c *recorderServiceClient) StartRecording(ctx context.Context, in *StartRecordingRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	err := c.cc.Invoke(ctx, "/hairoku.recorder.v1.RecorderService/StartRecording", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recorderServiceClient) StopRecording(ctx context.Context, in *StopRecordingRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	err := c.cc.Invoke(ctx, "/hairoku.recorder.v1.RecorderService/StopRecording", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recorderServiceClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	err := c.cc.Invoke(ctx, "/hairoku.recorder.v1.RecorderService/GetSession", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recorderServiceClient) ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	out := new(ListSessionsResponse)
	err := c.cc.Invoke(ctx, "/hairoku.recorder.v1.RecorderService/ListSessions", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recorderServiceClient) GetMonitorStatus(ctx context.Context, in *MonitorStatusRequest, opts ...grpc.CallOption) (*MonitorStatusResponse, error) {
	out := new(MonitorStatusResponse)
	err := c.cc.Invoke(ctx, "/hairoku.recorder.v1.RecorderService/GetMonitorStatus", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecorderServiceServer is the server API for RecorderService service.
type RecorderServiceServer interface {
	// StartRecording begins capturing a stream URL.
	StartRecording(context.Context, *StartRecordingRequest) (*SessionInfo, error)
	// StopRecording requests a running session to stop.
	StopRecording(context.Context, *StopRecordingRequest) (*SessionInfo, error)
	// GetSession returns one session by ID.
	GetSession(context.Context, *GetSessionRequest) (*SessionInfo, error)
	// ListSessions returns every session the daemon knows about.
	ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error)
	// GetMonitorStatus reports the automatic monitor's state.
	GetMonitorStatus(context.Context, *MonitorStatusRequest) (*MonitorStatusResponse, error)
}

// UnimplementedRecorderServiceServer can be embedded to have forward compatible implementations.
type UnimplementedRecorderServiceServer struct{}

func (*UnimplementedRecorderServiceServer) StartRecording(context.Context, *StartRecordingRequest) (*SessionInfo, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StartRecording not implemented")
}

func (*UnimplementedRecorderServiceServer) StopRecording(context.Context, *StopRecordingRequest) (*SessionInfo, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StopRecording not implemented")
}

func (*UnimplementedRecorderServiceServer) GetSession(context.Context, *GetSessionRequest) (*SessionInfo, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSession not implemented")
}

func (*UnimplementedRecorderServiceServer) ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListSessions not implemented")
}

func (*UnimplementedRecorderServiceServer) GetMonitorStatus(context.Context, *MonitorStatusRequest) (*MonitorStatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMonitorStatus not implemented")
}

func RegisterRecorderServiceServer(s grpc.ServiceRegistrar, srv RecorderServiceServer) {
	s.RegisterService(&_RecorderService_serviceDesc, srv)
}

func _RecorderService_StartRecording_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StartRecordingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecorderServiceServer).StartRecording(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/hairoku.recorder.v1.RecorderService/StartRecording",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecorderServiceServer).StartRecording(ctx, req.(*StartRecordingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RecorderService_StopRecording_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StopRecordingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecorderServiceServer).StopRecording(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/hairoku.recorder.v1.RecorderService/StopRecording",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecorderServiceServer).StopRecording(ctx, req.(*StopRecordingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RecorderService_GetSession_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecorderServiceServer).GetSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/hairoku.recorder.v1.RecorderService/GetSession",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecorderServiceServer).GetSession(ctx, req.(*GetSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RecorderService_ListSessions_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListSessionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecorderServiceServer).ListSessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/hairoku.recorder.v1.RecorderService/ListSessions",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecorderServiceServer).ListSessions(ctx, req.(*ListSessionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RecorderService_GetMonitorStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MonitorStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecorderServiceServer).GetMonitorStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/hairoku.recorder.v1.RecorderService/GetMonitorStatus",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecorderServiceServer).GetMonitorStatus(ctx, req.(*MonitorStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var _RecorderService_serviceDesc = grpc.ServiceDesc{
	ServiceName: "hairoku.recorder.v1.RecorderService",
	HandlerType: (*RecorderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StartRecording",
			Handler:    _RecorderService_StartRecording_Handler,
		},
		{
			MethodName: "StopRecording",
			Handler:    _RecorderService_StopRecording_Handler,
		},
		{
			MethodName: "GetSession",
			Handler:    _RecorderService_GetSession_Handler,
		},
		{
			MethodName: "ListSessions",
			Handler:    _RecorderService_ListSessions_Handler,
		},
		{
			MethodName: "GetMonitorStatus",
			Handler:    _RecorderService_GetMonitorStatus_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recorder.proto",
}
