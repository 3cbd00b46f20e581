package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
)

const inboxSize = 64

// Conn adapts a WebSocket connection to the transport contract. Payloads
// travel as binary messages with the same kind-tagged layout as TCP frames;
// the WebSocket framing replaces the outer length prefix. The room layer
// cannot tell the two transports apart.
type Conn struct {
	logger *slog.Logger
	ws     *websocket.Conn

	inbox     chan protocol.Message
	done      chan struct{}
	connected atomic.Bool
	closeOnce sync.Once
	writeMu   sync.Mutex
}

func newConn(logger *slog.Logger, ws *websocket.Conn) *Conn {
	that := &Conn{
		logger: logger.With("component", "ws-conn", "remote", ws.RemoteAddr().String()),
		ws:     ws,
		inbox:  make(chan protocol.Message, inboxSize),
		done:   make(chan struct{}),
	}
	that.connected.Store(true)

	go that.readLoop()

	return that
}

func (that *Conn) readLoop() {
	for {
		messageType, data, err := that.ws.ReadMessage()
		if err != nil {
			if that.connected.Load() {
				that.logger.Debug("read loop ended", "error", err)
			}
			that.connected.Store(false)
			return
		}

		if messageType != websocket.BinaryMessage {
			continue
		}

		msg, err := protocol.DecodePayload(data)
		if err != nil {
			that.logger.Debug("dropping undecodable payload", "error", err)
			that.connected.Store(false)
			return
		}

		select {
		case that.inbox <- msg:
		case <-that.done:
			return
		}
	}
}

func (that *Conn) Connected() bool {
	return that.connected.Load()
}

func (that *Conn) HasMessage() bool {
	return len(that.inbox) > 0
}

func (that *Conn) Receive() (protocol.Message, bool) {
	select {
	case msg := <-that.inbox:
		return msg, true
	default:
		return nil, false
	}
}

func (that *Conn) Send(msg protocol.Message) error {
	if !that.connected.Load() {
		return apperror.ErrConnClosed
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.ws.WriteMessage(websocket.BinaryMessage, protocol.EncodePayload(msg)); err != nil {
		that.connected.Store(false)
		return fmt.Errorf("failed to send %s: %w", msg.Kind(), err)
	}

	return nil
}

func (that *Conn) Close() error {
	var err error
	that.closeOnce.Do(func() {
		that.connected.Store(false)
		close(that.done)
		err = that.ws.Close()
	})

	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

func (that *Conn) RemoteAddr() string {
	return that.ws.RemoteAddr().String()
}
