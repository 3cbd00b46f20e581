package server

import (
	"log/slog"

	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
)

// loginRoom is the gatekeeper every new connection lands in. The only
// accepted message is a join request; anything else is a protocol violation
// and the connection is closed without explanation. Idle members are
// reclaimed by the heartbeat sweep, there is no extra timeout here.
type loginRoom struct {
	*room
}

func newLoginRoom(logger *slog.Logger, server *Server) *loginRoom {
	that := &loginRoom{}
	that.room = newRoom("login", logger, server, that)

	return that
}

func (that *loginRoom) onMemberAdded(member *session.Session) {
	if err := member.Conn.Send(&protocol.RoomJoinedEvent{Room: protocol.RoomLogin}); err != nil {
		that.logger.Warn("failed to send room joined event", "session", member.ID, "error", err)
	}
}

func (that *loginRoom) onMemberRemoved(_ *session.Session) {}

func (that *loginRoom) onMessage(msg protocol.Message, sender *session.Session) {
	joinRequest, ok := msg.(*protocol.JoinRequest)
	if !ok {
		// don't tell the client what we expected, just drop it
		that.logger.Info("declining client, join request not understood", "session", sender.ID, "kind", msg.Kind().String())
		that.removeAndClose(sender)
		return
	}

	that.handleJoinRequest(joinRequest, sender)
}

// handleJoinRequest - admits the sender to the lobby when the requested
// name is free; a taken name gets a rejection and the sender stays here to
// retry.
func (that *loginRoom) handleJoinRequest(msg *protocol.JoinRequest, sender *session.Session) {
	if that.server.registry.NameTaken(msg.Name) {
		that.logger.Info("rejecting join, name already in use", "session", sender.ID, "name", msg.Name)

		if err := sender.Conn.Send(&protocol.JoinResponse{Result: protocol.JoinNameInUse}); err != nil {
			that.logger.Warn("failed to send join response", "session", sender.ID, "error", err)
		}
		return
	}

	if err := sender.Conn.Send(&protocol.JoinResponse{Result: protocol.JoinAccepted}); err != nil {
		that.logger.Warn("failed to send join response", "session", sender.ID, "error", err)
	}

	sender.Name = msg.Name

	that.remove(sender)
	that.server.lobbyRoom.admit(sender)
}
