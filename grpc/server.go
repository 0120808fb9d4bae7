package grpc

import (
	"chat-hub/contract"
	"chat-hub/errors"
	"chat-hub/protocol"
	"log/slog"

	grpclib "google.golang.org/grpc"
)

type ChatServer struct {
	coordinator contract.ICoordinator
	options     protocol.Options
	log         *slog.Logger
}

func NewChatServer(log *slog.Logger, coordinator contract.ICoordinator, options protocol.Options) *ChatServer {
	return &ChatServer{coordinator: coordinator, options: options, log: log}
}

// Session blocks until the client closes its side of the stream or the stream breaks.
// The endpoint registered by the session is released before it returns.
func (s *ChatServer) Session(stream grpclib.ServerStream) error {
	s.log.Debug("gRPC session started")
	err := protocol.Serve(stream.Context(), s.log, s.coordinator, NewStreamConn(stream), s.options)
	if err != nil {
		s.log.Warn("gRPC session ended with error", "error", err)
		return errors.MapToGRPCError(err)
	}
	return nil
}

// NewServer returns a gRPC server exposing the chat service.
func NewServer(log *slog.Logger, coordinator contract.ICoordinator, options protocol.Options, opts ...grpclib.ServerOption) *grpclib.Server {
	server := grpclib.NewServer(opts...)
	server.RegisterService(&ServiceDesc, NewChatServer(log, coordinator, options))
	return server
}
