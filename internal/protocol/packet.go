package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// packetWriter serializes message bodies field by field. All integers are
// fixed-width big-endian, booleans are a single byte and strings carry a
// 16-bit length prefix.
type packetWriter struct {
	buf bytes.Buffer
}

func (that *packetWriter) writeInt(v int) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], uint32(int32(v)))
	that.buf.Write(raw[:])
}

func (that *packetWriter) writeBool(v bool) {
	if v {
		that.buf.WriteByte(1)
		return
	}
	that.buf.WriteByte(0)
}

func (that *packetWriter) writeString(v string) {
	var raw [2]byte
	binary.BigEndian.PutUint16(raw[:], uint16(len(v)))
	that.buf.Write(raw[:])
	that.buf.WriteString(v)
}

func (that *packetWriter) writeBoard(board entity.Board) {
	for _, cell := range board.Cells {
		that.writeInt(cell)
	}
	that.writeInt(board.Turn)
}

func (that *packetWriter) bytes() []byte {
	return that.buf.Bytes()
}

// packetReader deserializes message bodies written by packetWriter. The
// first failure sticks: every later read returns a zero value and err()
// reports what went wrong.
type packetReader struct {
	data []byte
	off  int
	errv error
}

func newPacketReader(data []byte) *packetReader {
	return &packetReader{data: data}
}

func (that *packetReader) take(n int) []byte {
	if that.errv != nil {
		return nil
	}

	if that.off+n > len(that.data) {
		that.errv = fmt.Errorf("%w: want %d bytes at offset %d, have %d", apperror.ErrTruncatedMessage, n, that.off, len(that.data))
		return nil
	}

	raw := that.data[that.off : that.off+n]
	that.off += n

	return raw
}

func (that *packetReader) readInt() int {
	raw := that.take(4)
	if raw == nil {
		return 0
	}
	return int(int32(binary.BigEndian.Uint32(raw)))
}

func (that *packetReader) readBool() bool {
	raw := that.take(1)
	if raw == nil {
		return false
	}
	return raw[0] != 0
}

func (that *packetReader) readString() string {
	raw := that.take(2)
	if raw == nil {
		return ""
	}

	body := that.take(int(binary.BigEndian.Uint16(raw)))
	if body == nil {
		return ""
	}

	return string(body)
}

func (that *packetReader) readBoard() entity.Board {
	var board entity.Board
	for i := range board.Cells {
		board.Cells[i] = that.readInt()
	}
	board.Turn = that.readInt()

	return board
}

func (that *packetReader) err() error {
	return that.errv
}
