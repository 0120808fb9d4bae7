// Package websocket serves chat sessions to browsers and scripts over WebSocket.
// Frames are the same JSON envelopes the gRPC transport carries.
package websocket

import (
	"chat-hub/contract"
	"chat-hub/protocol"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 16 * 1024
)

type Gateway struct {
	ctx         context.Context
	log         *slog.Logger
	coordinator contract.ICoordinator
	options     protocol.Options
	upgrader    websocket.Upgrader
}

// NewGateway returns the handler of one chat session per upgraded connection.
// Sessions end when ctx is done.
func NewGateway(ctx context.Context, log *slog.Logger, coordinator contract.ICoordinator, options protocol.Options) *Gateway {
	return &Gateway{
		ctx:         ctx,
		log:         log,
		coordinator: coordinator,
		options:     options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// TODO restrict origins once the web client has a fixed host
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()
	g.log.Debug("WebSocket session started", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(g.ctx)
	defer cancel()
	go keepAlive(ctx, ws)

	if err := protocol.Serve(ctx, g.log, g.coordinator, newConn(ws), g.options); err != nil {
		g.log.Warn("WebSocket session ended with error", "remote", r.RemoteAddr, "error", err)
		return
	}
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func keepAlive(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// conn adapts a WebSocket connection to protocol.Conn.
type conn struct {
	ws *websocket.Conn
}

func newConn(ws *websocket.Conn) *conn {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &conn{ws: ws}
}

func (c *conn) Recv() (protocol.Envelope, error) {
	var env protocol.Envelope
	if err := c.ws.ReadJSON(&env); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return env, io.EOF
		}
		return env, err
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	return env, nil
}

func (c *conn) Send(env protocol.Envelope) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(env)
}
