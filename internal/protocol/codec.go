package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
)

// Frames are a 32-bit big-endian payload length followed by the payload:
// one kind byte and the message body. MaxFrameSize bounds what a peer can
// make the server buffer.
const MaxFrameSize = 64 << 10

// EncodePayload - serializes a message into a kind-tagged payload without
// the outer length prefix. Transports that already delimit messages (such
// as WebSocket) send this directly.
func EncodePayload(msg Message) []byte {
	pw := &packetWriter{}
	pw.buf.WriteByte(byte(msg.Kind()))
	msg.encodeBody(pw)

	return pw.bytes()
}

// DecodePayload - parses a kind-tagged payload back into a message.
func DecodePayload(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", apperror.ErrTruncatedMessage)
	}

	kind := Kind(data[0])

	msg := newMessage(kind)
	if msg == nil {
		return nil, fmt.Errorf("%w: %d", apperror.ErrUnknownMessage, kind)
	}

	pr := newPacketReader(data[1:])
	msg.decodeBody(pr)

	if err := pr.err(); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}

	return msg, nil
}

// WriteFrame - writes one length-delimited message to the stream.
func WriteFrame(w io.Writer, msg Message) error {
	payload := EncodePayload(msg)

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	return nil
}

// ReadFrame - reads one length-delimited message from the stream.
func ReadFrame(r io.Reader) (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", apperror.ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}

	return DecodePayload(payload)
}
