package server

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
)

// lobbyRoom holds idle connections, tracks readiness, relays chat and runs
// the matchmaking policy. The ready list is kept in ready-signal arrival
// order; that order is the only matchmaking key.
type lobbyRoom struct {
	*room

	ready []*session.Session
}

func newLobbyRoom(logger *slog.Logger, server *Server) *lobbyRoom {
	that := &lobbyRoom{}
	that.room = newRoom("lobby", logger, server, that)

	return that
}

// admit - brings a freshly logged-in session into the lobby.
func (that *lobbyRoom) admit(member *session.Session) {
	that.add(member)
}

// readmit - brings a session back from a finished match and tells the rest
// of the lobby how its match went.
func (that *lobbyRoom) readmit(member *session.Session, won bool) {
	that.add(member)
	that.broadcastFarewell(member, won)
}

// update - base tick plus the matchmaking pass. Running matchmaking after
// the drain means it also fires when a ready member disconnected this tick.
func (that *lobbyRoom) update() {
	that.room.update()
	that.matchmake()
}

func (that *lobbyRoom) onMemberAdded(member *session.Session) {
	if err := member.Conn.Send(&protocol.RoomJoinedEvent{Room: protocol.RoomLobby}); err != nil {
		that.logger.Warn("failed to send room joined event", "session", member.ID, "error", err)
	}

	that.broadcast(&protocol.ChatMessage{Message: fmt.Sprintf("%s has joined the lobby!", member.Name)})
	that.broadcastOccupancy()
}

// onMemberRemoved - leaving the lobby always leaves the ready set too.
func (that *lobbyRoom) onMemberRemoved(member *session.Session) {
	that.dropReady(member)
	that.broadcastOccupancy()
}

func (that *lobbyRoom) onMessage(msg protocol.Message, sender *session.Session) {
	switch m := msg.(type) {
	case *protocol.ReadyStatusRequest:
		that.handleReadyStatus(m, sender)
	case *protocol.ChatMessage:
		that.broadcast(&protocol.ChatMessage{Message: fmt.Sprintf("%s: %s", sender.Name, m.Message)})
	case *protocol.ReturnToLobby:
		// client resent it after the transfer already happened, just
		// re-announce
		that.broadcastOccupancy()
		that.broadcastFarewell(sender, m.Won)
	default:
		that.logger.Debug("ignoring message", "session", sender.ID, "kind", msg.Kind().String())
	}
}

func (that *lobbyRoom) handleReadyStatus(msg *protocol.ReadyStatusRequest, sender *session.Session) {
	if msg.Ready {
		if !slices.Contains(that.ready, sender) {
			that.ready = append(that.ready, sender)
			that.logger.Info("client is ready", "session", sender.ID, "name", sender.Name, "ready", len(that.ready))
		}
	} else {
		that.dropReady(sender)
		that.logger.Info("client is no longer ready", "session", sender.ID, "name", sender.Name, "ready", len(that.ready))
	}

	that.broadcastOccupancy()
}

// matchmake - pairs the two earliest-ready members still present in the
// lobby. Stale ready entries left behind by a disconnect are dropped and
// the counts re-announced without starting a match.
func (that *lobbyRoom) matchmake() {
	for len(that.ready) >= 2 {
		player1, player2 := that.ready[0], that.ready[1]

		if !that.contains(player1) || !that.contains(player2) {
			that.logger.Warn("ready member no longer in lobby, dropping stale entries")

			that.ready = slices.DeleteFunc(that.ready, func(s *session.Session) bool {
				return !that.contains(s)
			})
			that.broadcastOccupancy()
			continue
		}

		that.logger.Info("matching players", "player1", player1.Name, "player2", player2.Name)

		that.dropReady(player1)
		that.dropReady(player2)
		that.remove(player1)
		that.remove(player2)

		// first selected becomes player 1
		that.server.startGame(player1, player2)
	}
}

func (that *lobbyRoom) dropReady(member *session.Session) {
	idx := slices.Index(that.ready, member)
	if idx >= 0 {
		that.ready = slices.Delete(that.ready, idx, idx+1)
	}
}

func (that *lobbyRoom) broadcastOccupancy() {
	that.broadcast(&protocol.LobbyInfoUpdate{
		MemberCount: that.memberCount(),
		ReadyCount:  len(that.ready),
	})
}

func (that *lobbyRoom) broadcastFarewell(member *session.Session, won bool) {
	line := "I lost the game."
	if won {
		line = "I won the game!"
	}

	that.broadcast(&protocol.ChatMessage{Message: fmt.Sprintf("%s: %s", member.Name, line)})
}
