package server

import (
	"log/slog"
	"strconv"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
)

// gameRoom runs one match. The two participants are fixed in (player1,
// player2) order for the whole match; slot order decides the turn mapping.
// A room that is no longer in play and has no members left is garbage
// collected by the server loop.
type gameRoom struct {
	*room

	id      int
	board   *entity.Board
	players [2]*session.Session
	inPlay  bool
}

func newGameRoom(logger *slog.Logger, server *Server, id int) *gameRoom {
	that := &gameRoom{id: id}
	that.room = newRoom("game-"+strconv.Itoa(id), logger, server, that)

	return that
}

// startMatch - binds both participants, resets the board and broadcasts
// the opening snapshot: names first, then an empty board with player 1 to
// move.
func (that *gameRoom) startMatch(player1, player2 *session.Session) {
	that.inPlay = true
	that.board = entity.NewBoard()
	that.players = [2]*session.Session{player1, player2}

	that.add(player1)
	that.add(player2)

	that.logger.Info("starting game", "player1", player1.Name, "player2", player2.Name)

	that.broadcast(&protocol.PlayerNames{
		Player1Name: player1.Name,
		Player2Name: player2.Name,
	})
	that.broadcast(&protocol.MakeMoveResult{
		WhoMadeTheMove: 0,
		Board:          *that.board,
	})
}

func (that *gameRoom) finished() bool {
	return !that.inPlay
}

// isParticipant - reports whether the session is one of the two fixed
// players, regardless of current membership.
func (that *gameRoom) isParticipant(s *session.Session) bool {
	return that.players[0] == s || that.players[1] == s
}

// slotOf - returns the participant's slot (1 or 2), or 0 for outsiders.
func (that *gameRoom) slotOf(s *session.Session) int {
	switch s {
	case that.players[0]:
		return 1
	case that.players[1]:
		return 2
	default:
		return 0
	}
}

// update - base tick plus disconnect handling: an in-play match that no
// longer holds both participants, whether they dropped here or were
// reaped by the heartbeat pass, is forfeited to whoever is left.
func (that *gameRoom) update() {
	that.room.update()

	if !that.inPlay || that.memberCount() >= 2 {
		return
	}

	that.logger.Info("participant left mid-match")

	if that.memberCount() == 1 {
		remaining := that.members[0]
		if slot := that.slotOf(remaining); slot != 0 {
			that.finishWithWinner(slot)
		}
		return
	}

	// nobody left to notify
	that.inPlay = false
}

func (that *gameRoom) onMemberAdded(member *session.Session) {
	if err := member.Conn.Send(&protocol.RoomJoinedEvent{Room: protocol.RoomGame}); err != nil {
		that.logger.Warn("failed to send room joined event", "session", member.ID, "error", err)
	}
}

func (that *gameRoom) onMemberRemoved(_ *session.Session) {}

func (that *gameRoom) onMessage(msg protocol.Message, sender *session.Session) {
	switch m := msg.(type) {
	case *protocol.MakeMoveRequest:
		that.handleMakeMove(m, sender)
	case *protocol.ConcedeRequest:
		that.handleConcede(sender)
	case *protocol.ReturnToLobby:
		that.remove(sender)
		that.server.lobbyRoom.readmit(sender, m.Won)
	default:
		that.logger.Debug("ignoring message", "session", sender.ID, "kind", msg.Kind().String())
	}
}

// handleMakeMove - applies a move if the sender is a participant, it is
// their turn and the cell is free. An invalid move changes nothing and no
// correction is sent; the client infers it from the absent state change.
func (that *gameRoom) handleMakeMove(msg *protocol.MakeMoveRequest, sender *session.Session) {
	if !that.inPlay {
		return
	}

	slot := that.slotOf(sender)
	if slot == 0 {
		that.logger.Info("ignoring move from session not in this match", "session", sender.ID)
		return
	}

	if !that.board.TryMove(msg.Move, slot) {
		that.logger.Debug("ignoring invalid move", "slot", slot, "cell", msg.Move)
		return
	}

	that.broadcast(&protocol.MakeMoveResult{
		WhoMadeTheMove: slot,
		Board:          *that.board,
	})

	switch outcome := that.board.Outcome(); outcome {
	case entity.OutcomeUndecided:
	case entity.OutcomeDraw:
		that.finishWithDraw()
	default:
		that.finishWithWinner(outcome)
	}
}

// handleConcede - ends the match crediting the opponent, whatever the
// board says.
func (that *gameRoom) handleConcede(sender *session.Session) {
	if !that.inPlay {
		return
	}

	slot := that.slotOf(sender)
	if slot == 0 {
		that.logger.Info("ignoring concede from session not in this match", "session", sender.ID)
		return
	}

	that.logger.Info("player conceded", "slot", slot, "name", sender.Name)

	if slot == 1 {
		that.finishWithWinner(2)
	} else {
		that.finishWithWinner(1)
	}
}

func (that *gameRoom) finishWithWinner(winnerSlot int) {
	winner := that.players[winnerSlot-1]
	loser := that.players[winnerSlot%2]

	that.logger.Info("game finished", "winner", winner.Name, "loser", loser.Name)

	that.sendFinished(winner, true, false)
	that.sendFinished(loser, false, false)

	that.inPlay = false
	that.server.recordResult(that.players[0], that.players[1], winnerSlot)
}

func (that *gameRoom) finishWithDraw() {
	that.logger.Info("game finished in a draw")

	for _, player := range that.players {
		that.sendFinished(player, false, true)
	}

	that.inPlay = false
	that.server.recordResult(that.players[0], that.players[1], 0)
}

func (that *gameRoom) sendFinished(player *session.Session, won, isDraw bool) {
	if !player.Conn.Connected() {
		return
	}

	notice := &protocol.GameFinished{Board: *that.board, Won: won, IsDraw: isDraw}
	if err := player.Conn.Send(notice); err != nil {
		that.logger.Warn("failed to send game finished notice", "session", player.ID, "error", err)
	}
}
