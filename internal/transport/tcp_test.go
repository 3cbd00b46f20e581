package transport

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTCPConn_Receive(t *testing.T) {
	t.Run("Incoming frame surfaces as a decoded message", func(t *testing.T) {
		// Given: a wrapped connection with a peer on the other end
		server, client := net.Pipe()
		conn := NewTCPConn(discardLogger(), server)
		defer conn.Close()
		defer client.Close()

		// When: the peer writes a join request frame
		go func() {
			_ = protocol.WriteFrame(client, &protocol.JoinRequest{Name: "alice"})
		}()

		// Then: the decoded message shows up in the inbox
		require.Eventually(t, conn.HasMessage, time.Second, 5*time.Millisecond)

		msg, ok := conn.Receive()
		require.True(t, ok)
		request, ok := msg.(*protocol.JoinRequest)
		require.True(t, ok)
		assert.Equal(t, "alice", request.Name)
	})

	t.Run("Receive never blocks on an empty inbox", func(t *testing.T) {
		// Given: a wrapped connection with nothing sent
		server, client := net.Pipe()
		conn := NewTCPConn(discardLogger(), server)
		defer conn.Close()
		defer client.Close()

		// Then: receive reports empty immediately
		msg, ok := conn.Receive()
		assert.False(t, ok)
		assert.Nil(t, msg)
		assert.False(t, conn.HasMessage())
	})
}

func TestTCPConn_Send(t *testing.T) {
	t.Run("Sent message arrives framed at the peer", func(t *testing.T) {
		// Given: a wrapped connection and a peer reading frames
		server, client := net.Pipe()
		conn := NewTCPConn(discardLogger(), server)
		defer conn.Close()
		defer client.Close()

		received := make(chan protocol.Message, 1)
		go func() {
			msg, err := protocol.ReadFrame(client)
			if err == nil {
				received <- msg
			}
		}()

		// When: a probe is sent
		require.NoError(t, conn.Send(&protocol.HeartbeatProbe{}))

		// Then: the peer decodes it
		select {
		case msg := <-received:
			assert.Equal(t, protocol.KindHeartbeatProbe, msg.Kind())
		case <-time.After(time.Second):
			t.Fatal("peer never received the frame")
		}
	})
}

func TestTCPConn_Close(t *testing.T) {
	t.Run("Closed connection refuses further sends", func(t *testing.T) {
		// Given: a wrapped connection
		server, client := net.Pipe()
		conn := NewTCPConn(discardLogger(), server)
		defer client.Close()

		// When: it is closed
		require.NoError(t, conn.Close())

		// Then: it reports disconnected and rejects sends
		assert.False(t, conn.Connected())
		assert.ErrorIs(t, conn.Send(&protocol.HeartbeatProbe{}), apperror.ErrConnClosed)

		// Then: closing again is harmless
		assert.NoError(t, conn.Close())
	})

	t.Run("Peer hangup marks the connection disconnected", func(t *testing.T) {
		// Given: a wrapped connection
		server, client := net.Pipe()
		conn := NewTCPConn(discardLogger(), server)
		defer conn.Close()

		// When: the peer hangs up
		require.NoError(t, client.Close())

		// Then: the read loop notices and flips the state
		assert.Eventually(t, func() bool { return !conn.Connected() }, time.Second, 5*time.Millisecond)
	})
}
