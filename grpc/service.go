package grpc

import (
	"chat-hub/protocol"

	grpclib "google.golang.org/grpc"
)

const (
	ServiceName   = "chat.v1.ChatService"
	SessionMethod = "/" + ServiceName + "/Session"
)

// ChatServiceServer is the server API of the chat service.
// Session is one bidirectional stream of protocol envelopes per client.
type ChatServiceServer interface {
	Session(grpclib.ServerStream) error
}

// ServiceDesc describes the chat service for both grpc.Server.RegisterService
// and grpc.ClientConn.NewStream.
var ServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods:     []grpclib.MethodDesc{},
	Streams: []grpclib.StreamDesc{
		{
			StreamName:    "Session",
			Handler:       sessionHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "chat/v1/chat.proto",
}

func sessionHandler(srv any, stream grpclib.ServerStream) error {
	return srv.(ChatServiceServer).Session(stream)
}

// messageStream is the part shared by client and server streams.
type messageStream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

// StreamConn adapts a gRPC stream to protocol.Conn.
type StreamConn struct {
	stream messageStream
}

func NewStreamConn(stream messageStream) *StreamConn {
	return &StreamConn{stream: stream}
}

func (c *StreamConn) Recv() (protocol.Envelope, error) {
	var env protocol.Envelope
	err := c.stream.RecvMsg(&env)
	return env, err
}

func (c *StreamConn) Send(env protocol.Envelope) error {
	return c.stream.SendMsg(&env)
}
