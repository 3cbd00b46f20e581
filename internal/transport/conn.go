package transport

import "github.com/rocketscienceinc/gameroom-backend/internal/protocol"

// Conn is one persistent, ordered message channel to a client. Inbound
// messages are decoded by a per-connection reader and queued, so the server
// loop drains them without ever blocking on a peer.
type Conn interface {
	// Connected reports whether the transport is still usable. It flips to
	// false on read/write failure or Close and never recovers.
	Connected() bool

	// HasMessage reports whether a queued inbound message is ready.
	HasMessage() bool

	// Receive pops the next queued inbound message without blocking.
	Receive() (protocol.Message, bool)

	// Send writes one message to the peer.
	Send(msg protocol.Message) error

	// Close tears the transport down. Safe to call more than once.
	Close() error

	// RemoteAddr describes the peer for logging.
	RemoteAddr() string
}
