package server

import (
	"io"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport"
)

// fakeConn is an in-memory transport.Conn for driving the rooms directly.
type fakeConn struct {
	inbox     []protocol.Message
	sent      []protocol.Message
	connected bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{connected: true}
}

func (that *fakeConn) push(msg protocol.Message) {
	that.inbox = append(that.inbox, msg)
}

func (that *fakeConn) Connected() bool {
	return that.connected
}

func (that *fakeConn) HasMessage() bool {
	return len(that.inbox) > 0
}

func (that *fakeConn) Receive() (protocol.Message, bool) {
	if len(that.inbox) == 0 {
		return nil, false
	}

	msg := that.inbox[0]
	that.inbox = that.inbox[1:]

	return msg, true
}

func (that *fakeConn) Send(msg protocol.Message) error {
	if !that.connected {
		return apperror.ErrConnClosed
	}

	that.sent = append(that.sent, msg)

	return nil
}

func (that *fakeConn) Close() error {
	that.connected = false
	return nil
}

func (that *fakeConn) RemoteAddr() string {
	return "fake:0"
}

// sentOfKind - returns every sent message of the given kind, in order.
func (that *fakeConn) sentOfKind(kind protocol.Kind) []protocol.Message {
	var matched []protocol.Message
	for _, msg := range that.sent {
		if msg.Kind() == kind {
			matched = append(matched, msg)
		}
	}

	return matched
}

func (that *fakeConn) clearSent() {
	that.sent = nil
}

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conf := config.Game{
		HeartbeatInterval: 5 * time.Second,
		HeartbeatTimeout:  10 * time.Second,
		TickInterval:      100 * time.Millisecond,
	}

	srv := New(logger, conf, make(chan transport.Conn, 8), nil)
	// keep probes out of the way unless a test asks for them
	srv.lastProbe = time.Now()

	return srv
}

// loginSession - creates a session as the orchestrator would on accept.
func loginSession(srv *Server, conn *fakeConn) *session.Session {
	s := session.New(conn)
	srv.registry.Add(s)
	srv.loginRoom.add(s)

	return s
}

// lobbySession - creates a named session already sitting in the lobby.
func lobbySession(srv *Server, conn *fakeConn, name string) *session.Session {
	s := session.New(conn)
	s.Name = name
	srv.registry.Add(s)
	srv.lobbyRoom.admit(s)

	return s
}
