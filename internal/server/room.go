package server

import (
	"log/slog"
	"slices"

	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
)

// roomHandler is the hook set a room variant plugs into the shared room
// machinery. There is no room hierarchy: login, lobby and game rooms are
// strategies selected at construction.
type roomHandler interface {
	onMemberAdded(member *session.Session)
	onMemberRemoved(member *session.Session)
	onMessage(msg protocol.Message, sender *session.Session)
}

// room holds an ordered member set and the per-tick plumbing every variant
// shares: pruning dead transports, draining queued messages and fanning out
// broadcasts. A session is a member of exactly one room at any instant;
// transfers are remove-then-add.
type room struct {
	name    string
	logger  *slog.Logger
	server  *Server
	handler roomHandler

	members []*session.Session
}

func newRoom(name string, logger *slog.Logger, server *Server, handler roomHandler) *room {
	return &room{
		name:    name,
		logger:  logger.With("room", name),
		server:  server,
		handler: handler,
	}
}

func (that *room) add(member *session.Session) {
	that.logger.Info("client joined", "session", member.ID, "name", member.Name)
	that.members = append(that.members, member)
	that.handler.onMemberAdded(member)
}

func (that *room) remove(member *session.Session) {
	idx := slices.Index(that.members, member)
	if idx < 0 {
		return
	}

	that.logger.Info("client left", "session", member.ID, "name", member.Name)
	that.members = slices.Delete(that.members, idx, idx+1)
	that.handler.onMemberRemoved(member)
}

func (that *room) contains(member *session.Session) bool {
	return slices.Contains(that.members, member)
}

func (that *room) memberCount() int {
	return len(that.members)
}

// update - runs one tick: drop members whose transport died, then drain
// everyone's queued messages.
func (that *room) update() {
	that.pruneDisconnected()
	that.drainMessages()
}

// pruneDisconnected - removes and fully closes members whose transport
// reports disconnected. Iterates a snapshot so a removal triggered by an
// earlier member cannot skip or double-process anyone.
func (that *room) pruneDisconnected() {
	for _, member := range slices.Clone(that.members) {
		if !that.contains(member) {
			continue
		}

		if !member.Conn.Connected() {
			that.removeAndClose(member)
		}
	}
}

// removeAndClose - drops a member from this room and from the server
// entirely. Membership is released before the transport is closed so no
// later room pass can touch a dangling entry.
func (that *room) removeAndClose(member *session.Session) {
	that.remove(member)
	that.server.dropSession(member)
}

// drainMessages - dispatches every queued inbound message to the handler.
// Heartbeat responses are consumed here and never reach the handler. A
// dispatch may move the sender to another room; draining stops for that
// member as soon as it happens, the next room owns the rest of its queue.
func (that *room) drainMessages() {
	for _, member := range slices.Clone(that.members) {
		if !that.contains(member) || !member.Conn.Connected() {
			continue
		}

		for that.contains(member) {
			msg, ok := member.Conn.Receive()
			if !ok {
				break
			}

			if _, isHeartbeat := msg.(*protocol.HeartbeatResponse); isHeartbeat {
				member.Touch()
				continue
			}

			that.handler.onMessage(msg, member)
		}
	}
}

// broadcast - sends to every currently connected member. A failing member
// never blocks the others; it is pruned on the next tick.
func (that *room) broadcast(msg protocol.Message) {
	for _, member := range slices.Clone(that.members) {
		if !member.Conn.Connected() {
			continue
		}

		if err := member.Conn.Send(msg); err != nil {
			that.logger.Warn("failed to send broadcast", "session", member.ID, "kind", msg.Kind().String(), "error", err)
		}
	}
}
