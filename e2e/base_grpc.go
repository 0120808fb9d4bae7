// Package e2e drives a running chat hub through the public client.
package e2e

import (
	"chat-hub/client"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.HubAddr == "" {
		s.T().Skip("CHAT_E2E_ADDR not set")
	}
}

// UniqueName keeps runs against a shared hub from colliding on names.
func (s *BaseGrpcSuite) UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// Connect registers a new client under name, closed at the end of the test.
func (s *BaseGrpcSuite) Connect(t *testing.T, name string) *client.Client {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, logs.GetLoggerFromLevel(slog.LevelWarn), s.Config.HubAddr,
		grpc.WithStreamInterceptor(s.logStream(t, name)))
	s.Require().NoError(err, "Failed to connect to chat hub at "+s.Config.HubAddr)
	s.Require().NoError(c.Register(ctx, name))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// WithTimeout runs a contextual test step.
func (s *BaseGrpcSuite) WithTimeout(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx)
}

func (s *BaseGrpcSuite) logStream(t *testing.T, name string) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		stream, err := streamer(ctx, desc, cc, method, opts...)
		if err != nil || !s.Config.DebugJSON {
			return stream, err
		}
		return &loggedStream{ClientStream: stream, t: t, name: name}, nil
	}
}

type loggedStream struct {
	grpc.ClientStream
	t    *testing.T
	name string
}

func (l *loggedStream) SendMsg(m any) error {
	l.dump("SEND", m)
	return l.ClientStream.SendMsg(m)
}

func (l *loggedStream) RecvMsg(m any) error {
	err := l.ClientStream.RecvMsg(m)
	if err == nil {
		l.dump("RECV", m)
	}
	return err
}

func (l *loggedStream) dump(direction string, m any) {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return
	}
	l.t.Logf("%s %s:\n%s", l.name, direction, raw)
}
