package transport

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
)

const inboxSize = 64

// TCPConn wraps a raw TCP connection with the length-delimited message
// codec. A reader goroutine decodes frames into the inbox; the write path
// is guarded by a mutex so broadcasts and heartbeats can interleave.
type TCPConn struct {
	logger *slog.Logger

	conn   net.Conn
	reader *bufio.Reader

	inbox     chan protocol.Message
	done      chan struct{}
	connected atomic.Bool
	closeOnce sync.Once
	writeMu   sync.Mutex
}

func NewTCPConn(logger *slog.Logger, conn net.Conn) *TCPConn {
	that := &TCPConn{
		logger: logger.With("component", "tcp-conn", "remote", conn.RemoteAddr().String()),
		conn:   conn,
		reader: bufio.NewReader(conn),
		inbox:  make(chan protocol.Message, inboxSize),
		done:   make(chan struct{}),
	}
	that.connected.Store(true)

	go that.readLoop()

	return that
}

// readLoop - decodes frames until the stream breaks. A decode failure is a
// protocol-level fault, the connection is unusable after it either way.
func (that *TCPConn) readLoop() {
	for {
		msg, err := protocol.ReadFrame(that.reader)
		if err != nil {
			if that.connected.Load() {
				that.logger.Debug("read loop ended", "error", err)
			}
			that.connected.Store(false)
			return
		}

		// nobody drains an evicted connection, so never block on its inbox
		select {
		case that.inbox <- msg:
		case <-that.done:
			return
		}
	}
}

func (that *TCPConn) Connected() bool {
	return that.connected.Load()
}

func (that *TCPConn) HasMessage() bool {
	return len(that.inbox) > 0
}

func (that *TCPConn) Receive() (protocol.Message, bool) {
	select {
	case msg := <-that.inbox:
		return msg, true
	default:
		return nil, false
	}
}

func (that *TCPConn) Send(msg protocol.Message) error {
	if !that.connected.Load() {
		return apperror.ErrConnClosed
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := protocol.WriteFrame(that.conn, msg); err != nil {
		that.connected.Store(false)
		return fmt.Errorf("failed to send %s: %w", msg.Kind(), err)
	}

	return nil
}

func (that *TCPConn) Close() error {
	var err error
	that.closeOnce.Do(func() {
		that.connected.Store(false)
		close(that.done)
		err = that.conn.Close()
	})

	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

func (that *TCPConn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

// Listener accepts raw TCP clients and queues them for the server loop.
// The queue capacity acts as the accept backlog: when the loop falls
// behind, the accept goroutine blocks instead of piling up connections.
type Listener struct {
	logger *slog.Logger
	ln     net.Listener
	queue  chan<- Conn
}

func Listen(logger *slog.Logger, addr string, queue chan<- Conn) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	that := &Listener{
		logger: logger.With("component", "tcp-listener", "addr", addr),
		ln:     ln,
		queue:  queue,
	}

	go that.acceptLoop()

	return that, nil
}

func (that *Listener) acceptLoop() {
	for {
		conn, err := that.ln.Accept()
		if err != nil {
			that.logger.Debug("accept loop ended", "error", err)
			return
		}

		that.logger.Info("accepting new client", "remote", conn.RemoteAddr().String())
		that.queue <- NewTCPConn(that.logger, conn)
	}
}

func (that *Listener) Close() error {
	if err := that.ln.Close(); err != nil {
		return fmt.Errorf("failed to close listener: %w", err)
	}

	return nil
}
