package server

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport"
)

type matchRecorder interface {
	RecordMatch(ctx context.Context, result *repository.MatchResult) error
}

// Server drives the whole session lifecycle from a single cooperative
// loop: accept queued connections, probe and reap heartbeats, then tick
// the login room, the lobby and every game room in creation order. All
// shared state (registry, memberships, ready set) is touched only by this
// loop, so none of it is locked.
type Server struct {
	logger  *slog.Logger
	conf    config.Game
	history matchRecorder

	queue     chan transport.Conn
	registry  *session.Registry
	loginRoom *loginRoom
	lobbyRoom *lobbyRoom
	gameRooms []*gameRoom

	nextRoomID int
	lastProbe  time.Time
}

func New(logger *slog.Logger, conf config.Game, queue chan transport.Conn, history matchRecorder) *Server {
	that := &Server{
		logger:   logger.With("component", "game-server"),
		conf:     conf,
		history:  history,
		queue:    queue,
		registry: session.NewRegistry(),
	}

	that.loginRoom = newLoginRoom(logger, that)
	that.lobbyRoom = newLobbyRoom(logger, that)

	return that
}

// Run - runs the polling loop until the context is canceled.
func (that *Server) Run(ctx context.Context) error {
	that.logger.Info("starting game loop", "tick", that.conf.TickInterval.String())

	ticker := time.NewTicker(that.conf.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("game loop stopping")
			that.shutdown()
			return nil
		case <-ticker.C:
			that.tick()
		}
	}
}

// tick - one loop iteration, everything strictly sequential.
func (that *Server) tick() {
	that.acceptPending()
	that.sendHeartbeats()
	that.reapTimedOut()

	that.loginRoom.update()
	that.lobbyRoom.update()
	for _, gr := range slices.Clone(that.gameRooms) {
		gr.update()
	}

	that.collectFinishedRooms()
}

// acceptPending - wraps every queued connection in a session and hands it
// to the login room. Never blocks waiting for a connection.
func (that *Server) acceptPending() {
	for {
		select {
		case conn := <-that.queue:
			s := session.New(conn)
			that.registry.Add(s)
			that.logger.Info("new client", "session", s.ID, "remote", conn.RemoteAddr())
			that.loginRoom.add(s)
		default:
			return
		}
	}
}

// sendHeartbeats - probes every tracked connection once per interval.
func (that *Server) sendHeartbeats() {
	if time.Since(that.lastProbe) < that.conf.HeartbeatInterval {
		return
	}
	that.lastProbe = time.Now()

	for _, s := range that.registry.All() {
		if !s.Conn.Connected() {
			continue
		}

		if err := s.Conn.Send(&protocol.HeartbeatProbe{}); err != nil {
			that.logger.Debug("failed to send heartbeat probe", "session", s.ID, "error", err)
		}
	}
}

// reapTimedOut - force-closes every session whose last liveness response
// is older than the timeout and purges it from the registry and from
// whichever room holds it.
func (that *Server) reapTimedOut() {
	for _, s := range that.registry.All() {
		if time.Since(s.LastHeartbeat) < that.conf.HeartbeatTimeout {
			continue
		}

		that.logger.Info("heartbeat timeout, removing client", "session", s.ID, "name", s.Name)
		that.evict(s)
	}
}

// evict - removes a session from whichever room currently holds it, then
// from the registry, then closes the transport. Membership always goes
// first so no pending room pass sees a dangling entry.
func (that *Server) evict(s *session.Session) {
	if that.loginRoom.contains(s) {
		that.loginRoom.remove(s)
	}
	if that.lobbyRoom.contains(s) {
		that.lobbyRoom.remove(s)
	}
	for _, gr := range that.gameRooms {
		if gr.contains(s) {
			gr.remove(s)
		}
	}

	that.dropSession(s)
}

// dropSession - purges a session that has already left all rooms.
func (that *Server) dropSession(s *session.Session) {
	that.registry.Remove(s.ID)

	if err := s.Conn.Close(); err != nil {
		that.logger.Debug("failed to close connection", "session", s.ID, "error", err)
	}
}

// startGame - opens a game room for the pair the lobby selected. Before
// doing so it re-validates the pair: a candidate already bound to an
// in-play match means the matchmaking decision was stale, and a candidate
// somehow still in the lobby is force-removed first.
func (that *Server) startGame(player1, player2 *session.Session) {
	for _, gr := range that.gameRooms {
		if !gr.inPlay {
			continue
		}

		if gr.isParticipant(player1) || gr.isParticipant(player2) {
			that.logger.Warn("stale matchmaking decision, candidate already in a match",
				"player1", player1.Name, "player2", player2.Name)
			that.returnToLobbyIfFree(player1, gr)
			that.returnToLobbyIfFree(player2, gr)
			return
		}
	}

	if that.lobbyRoom.contains(player1) {
		that.lobbyRoom.remove(player1)
	}
	if that.lobbyRoom.contains(player2) {
		that.lobbyRoom.remove(player2)
	}

	that.nextRoomID++
	gr := newGameRoom(that.logger, that, that.nextRoomID)
	that.gameRooms = append(that.gameRooms, gr)

	gr.startMatch(player1, player2)
}

// returnToLobbyIfFree - puts a candidate from an aborted pairing back into
// the lobby unless it is the one bound to the conflicting match.
func (that *Server) returnToLobbyIfFree(s *session.Session, conflict *gameRoom) {
	if conflict.isParticipant(s) || that.lobbyRoom.contains(s) {
		return
	}

	that.lobbyRoom.admit(s)
}

// collectFinishedRooms - discards every game room that is finished and
// empty.
func (that *Server) collectFinishedRooms() {
	that.gameRooms = slices.DeleteFunc(that.gameRooms, func(gr *gameRoom) bool {
		if gr.finished() && gr.memberCount() == 0 {
			that.logger.Info("destroying game room", "room", gr.id)
			return true
		}
		return false
	})
}

// recordResult - persists a finished match when history is enabled.
// WinnerSlot 0 means a draw.
func (that *Server) recordResult(player1, player2 *session.Session, winnerSlot int) {
	if that.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := &repository.MatchResult{
		Player1:    player1.Name,
		Player2:    player2.Name,
		WinnerSlot: winnerSlot,
		FinishedAt: time.Now().UTC(),
	}

	if err := that.history.RecordMatch(ctx, result); err != nil {
		that.logger.Error("failed to record match result", "error", err)
	}
}

// shutdown - closes every live connection on the way out.
func (that *Server) shutdown() {
	for _, s := range that.registry.All() {
		that.evict(s)
	}
}
