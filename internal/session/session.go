package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport"
)

// Session is the server-side record of one connected client. Everything
// about a client - display name, liveness, room membership - is keyed by
// the generated session ID, never by the transport handle.
type Session struct {
	ID            string
	Name          string
	LastHeartbeat time.Time
	Conn          transport.Conn
}

func New(conn transport.Conn) *Session {
	return &Session{
		ID:            uuid.NewString(),
		LastHeartbeat: time.Now(),
		Conn:          conn,
	}
}

// Touch - records a liveness response.
func (that *Session) Touch() {
	that.LastHeartbeat = time.Now()
}
