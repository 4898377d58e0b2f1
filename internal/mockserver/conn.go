package mockserver

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

// Conn wraps an accepted connection with the same read_exact framing the
// real session and transfer clients use, so a Handler can script a fake
// central server or peer without re-deriving the wire envelope.
type Conn struct {
	net.Conn
}

// ReadFrame reads one complete frame using the length-prefix envelope.
func (c *Conn) ReadFrame() (wire.Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.Conn, lenBuf[:]); err != nil {
		return wire.Frame{}, err
	}
	bodyLen := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(c.Conn, body); err != nil {
		return wire.Frame{}, err
	}
	full := make([]byte, 0, 4+len(body))
	full = append(full, lenBuf[:]...)
	full = append(full, body...)
	return wire.Decode(full)
}

// WriteFrame writes a raw (code, payload) pair as a single frame.
func (c *Conn) WriteFrame(code uint32, payload []byte) error {
	_, err := c.Conn.Write(wire.New(code, payload).Encode())
	return err
}

// WriteMessage encodes and writes a tagged server or peer message.
func (c *Conn) WriteMessage(msg any) error {
	code, payload, err := proto.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return c.WriteFrame(code, payload)
}
