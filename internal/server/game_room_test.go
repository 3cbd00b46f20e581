package server

import (
	"testing"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/rocketscienceinc/gameroom-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestMatch - puts two named sessions straight into a fresh match.
func startTestMatch(srv *Server) (*gameRoom, *fakeConn, *fakeConn, *session.Session, *session.Session) {
	conn1, conn2 := newFakeConn(), newFakeConn()
	p1 := lobbySession(srv, conn1, "alice")
	p2 := lobbySession(srv, conn2, "bob")

	srv.lobbyRoom.remove(p1)
	srv.lobbyRoom.remove(p2)
	srv.startGame(p1, p2)

	conn1.clearSent()
	conn2.clearSent()

	return srv.gameRooms[0], conn1, conn2, p1, p2
}

func TestGameRoom_Start(t *testing.T) {
	t.Run("Opening a match broadcasts names and an empty board", func(t *testing.T) {
		// Given: two members handed over by the lobby
		srv := newTestServer()
		conn1, conn2 := newFakeConn(), newFakeConn()
		p1 := lobbySession(srv, conn1, "alice")
		p2 := lobbySession(srv, conn2, "bob")
		srv.lobbyRoom.remove(p1)
		srv.lobbyRoom.remove(p2)

		// When: the match starts
		srv.startGame(p1, p2)

		// Then: both get the room event, the fixed name order and the empty board
		for _, conn := range []*fakeConn{conn1, conn2} {
			joined := conn.sentOfKind(protocol.KindRoomJoinedEvent)
			require.NotEmpty(t, joined)
			assert.Equal(t, protocol.RoomGame, joined[len(joined)-1].(*protocol.RoomJoinedEvent).Room)

			names := conn.sentOfKind(protocol.KindPlayerNames)
			require.Len(t, names, 1)
			assert.Equal(t, "alice", names[0].(*protocol.PlayerNames).Player1Name)
			assert.Equal(t, "bob", names[0].(*protocol.PlayerNames).Player2Name)

			snapshots := conn.sentOfKind(protocol.KindMakeMoveResult)
			require.Len(t, snapshots, 1)
			snapshot := snapshots[0].(*protocol.MakeMoveResult)
			assert.Equal(t, 0, snapshot.WhoMadeTheMove)
			assert.Equal(t, *entity.NewBoard(), snapshot.Board)
		}
	})
}

func TestGameRoom_Moves(t *testing.T) {
	t.Run("Accepted move is broadcast to both players", func(t *testing.T) {
		// Given: a fresh match
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)

		// When: player 1 claims the center cell
		conn1.push(&protocol.MakeMoveRequest{Move: 4})
		srv.tick()

		// Then: both players see the move and the flipped turn
		for _, conn := range []*fakeConn{conn1, conn2} {
			results := conn.sentOfKind(protocol.KindMakeMoveResult)
			require.Len(t, results, 1)
			result := results[0].(*protocol.MakeMoveResult)
			assert.Equal(t, 1, result.WhoMadeTheMove)
			assert.Equal(t, entity.Player1, result.Board.Cells[4])
			assert.Equal(t, entity.Player2, result.Board.Turn)
		}
		assert.True(t, gr.inPlay)
	})

	t.Run("Move out of turn changes nothing and sends nothing", func(t *testing.T) {
		// Given: a fresh match where player 1 is to move
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)

		// When: player 2 tries to move first
		conn2.push(&protocol.MakeMoveRequest{Move: 0})
		srv.tick()

		// Then: the board is untouched and no broadcast goes out
		assert.Equal(t, *entity.NewBoard(), *gr.board)
		assert.Empty(t, conn1.sentOfKind(protocol.KindMakeMoveResult))
		assert.Empty(t, conn2.sentOfKind(protocol.KindMakeMoveResult))
	})

	t.Run("Move from an outsider is ignored", func(t *testing.T) {
		// Given: a match and an eavesdropper somehow in the room
		srv := newTestServer()
		gr, _, _, _, _ := startTestMatch(srv)

		outsider := session.New(newFakeConn())
		outsider.Name = "mallory"
		gr.add(outsider)

		outsider.Conn.(*fakeConn).push(&protocol.MakeMoveRequest{Move: 0})

		// When: the loop ticks
		srv.tick()

		// Then: the board is untouched
		assert.Equal(t, *entity.NewBoard(), *gr.board)
	})

	t.Run("Winning move finishes the match with tailored notices", func(t *testing.T) {
		// Given: a match one move away from a top-row win for player 1
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)
		gr.board.Cells = [9]int{
			entity.Player1, entity.Player1, entity.EmptyCell,
			entity.Player2, entity.Player2, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		}

		// When: player 1 completes the row
		conn1.push(&protocol.MakeMoveRequest{Move: 2})
		srv.tick()

		// Then: the winner and loser each get their notice with the final board
		winnerNotices := conn1.sentOfKind(protocol.KindGameFinished)
		require.Len(t, winnerNotices, 1)
		winnerNotice := winnerNotices[0].(*protocol.GameFinished)
		assert.True(t, winnerNotice.Won)
		assert.False(t, winnerNotice.IsDraw)
		assert.Equal(t, entity.Player1, winnerNotice.Board.Cells[2])

		loserNotices := conn2.sentOfKind(protocol.KindGameFinished)
		require.Len(t, loserNotices, 1)
		assert.False(t, loserNotices[0].(*protocol.GameFinished).Won)

		assert.True(t, gr.finished())
	})

	t.Run("Filling the board without a line is a draw for both", func(t *testing.T) {
		// Given: a match one move away from a full board with no line
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)
		gr.board.Cells = [9]int{
			entity.Player1, entity.Player2, entity.Player1,
			entity.Player2, entity.Player1, entity.Player2,
			entity.Player2, entity.Player1, entity.EmptyCell,
		}
		gr.board.Turn = entity.Player2

		// When: player 2 fills the last cell
		conn2.push(&protocol.MakeMoveRequest{Move: 8})
		srv.tick()

		// Then: both players get a draw notice with no winner
		for _, conn := range []*fakeConn{conn1, conn2} {
			notices := conn.sentOfKind(protocol.KindGameFinished)
			require.Len(t, notices, 1)
			notice := notices[0].(*protocol.GameFinished)
			assert.False(t, notice.Won)
			assert.True(t, notice.IsDraw)
		}
		assert.True(t, gr.finished())
	})
}

func TestGameRoom_Concede(t *testing.T) {
	t.Run("Concede credits the opponent regardless of the board", func(t *testing.T) {
		// Given: a fresh match
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)

		// When: player 2 concedes
		conn2.push(&protocol.ConcedeRequest{})
		srv.tick()

		// Then: player 1 wins and player 2 loses
		winnerNotices := conn1.sentOfKind(protocol.KindGameFinished)
		require.Len(t, winnerNotices, 1)
		assert.True(t, winnerNotices[0].(*protocol.GameFinished).Won)

		loserNotices := conn2.sentOfKind(protocol.KindGameFinished)
		require.Len(t, loserNotices, 1)
		assert.False(t, loserNotices[0].(*protocol.GameFinished).Won)

		assert.True(t, gr.finished())
	})
}

func TestGameRoom_Disconnects(t *testing.T) {
	t.Run("Losing one participant forfeits the match to the survivor", func(t *testing.T) {
		// Given: an in-play match
		srv := newTestServer()
		gr, conn1, conn2, _, p2 := startTestMatch(srv)

		// When: player 2's transport dies
		conn2.connected = false
		srv.tick()

		// Then: the survivor is declared winner and the room finishes
		notices := conn1.sentOfKind(protocol.KindGameFinished)
		require.Len(t, notices, 1)
		assert.True(t, notices[0].(*protocol.GameFinished).Won)
		assert.True(t, gr.finished())

		// Then: the dead session is fully purged
		_, stillTracked := srv.registry.Get(p2.ID)
		assert.False(t, stillTracked)
	})

	t.Run("Losing both participants finishes silently", func(t *testing.T) {
		// Given: an in-play match
		srv := newTestServer()
		gr, conn1, conn2, _, _ := startTestMatch(srv)

		// When: both transports die in the same tick
		conn1.connected = false
		conn2.connected = false
		srv.tick()

		// Then: the room finishes with no notices sent
		assert.True(t, gr.finished())
		assert.Empty(t, conn1.sentOfKind(protocol.KindGameFinished))
		assert.Empty(t, conn2.sentOfKind(protocol.KindGameFinished))
	})
}

func TestGameRoom_ReturnToLobby(t *testing.T) {
	t.Run("Returning player is readmitted and the result announced", func(t *testing.T) {
		// Given: a match player 1 just won by concession
		srv := newTestServer()
		gr, conn1, conn2, p1, _ := startTestMatch(srv)
		conn2.push(&protocol.ConcedeRequest{})
		srv.tick()
		conn1.clearSent()

		// When: the winner asks to return to the lobby
		conn1.push(&protocol.ReturnToLobby{Won: true})
		srv.tick()

		// Then: the player is back in the lobby
		assert.False(t, gr.contains(p1))
		assert.True(t, srv.lobbyRoom.contains(p1))

		joined := conn1.sentOfKind(protocol.KindRoomJoinedEvent)
		require.NotEmpty(t, joined)
		assert.Equal(t, protocol.RoomLobby, joined[len(joined)-1].(*protocol.RoomJoinedEvent).Room)

		// Then: the lobby hears how the match went
		var lines []string
		for _, msg := range conn1.sentOfKind(protocol.KindChatMessage) {
			lines = append(lines, msg.(*protocol.ChatMessage).Message)
		}
		assert.Contains(t, lines, "alice: I won the game!")
	})

	t.Run("Finished empty room is garbage collected", func(t *testing.T) {
		// Given: a conceded match both players walked away from
		srv := newTestServer()
		_, conn1, conn2, _, _ := startTestMatch(srv)
		conn2.push(&protocol.ConcedeRequest{})
		srv.tick()

		conn1.push(&protocol.ReturnToLobby{Won: true})
		conn2.push(&protocol.ReturnToLobby{Won: false})
		srv.tick()

		// Then: the room is gone
		assert.Empty(t, srv.gameRooms)
	})
}
