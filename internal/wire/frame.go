// Package wire implements the length-prefixed Soulseek frame envelope and
// the typed payload cursors built on top of it. It has no knowledge of any
// particular message vocabulary; see internal/proto for that.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortFrame is returned by Decode when buf is too short to contain even
// the length prefix and code.
var ErrShortFrame = errors.New("wire: short frame")

// ErrLengthMismatch is returned by Decode when the declared body length does
// not agree with the actual buffer length.
var ErrLengthMismatch = errors.New("wire: length mismatch")

// Frame is a single unit of Soulseek wire traffic: a message code and its
// opaque payload. The wire form is a little-endian u32 body length (4 +
// len(Payload)) followed by the 4-byte LE code and the payload bytes.
type Frame struct {
	Code    uint32
	Payload []byte
}

// New builds a Frame from a code and payload.
func New(code uint32, payload []byte) Frame {
	return Frame{Code: code, Payload: payload}
}

// Encode writes the frame's wire form: exactly 8+len(Payload) bytes.
func (f Frame) Encode() []byte {
	bodyLen := 4 + len(f.Payload)
	out := make([]byte, 4+bodyLen)
	binary.LittleEndian.PutUint32(out[0:4], uint32(bodyLen))
	binary.LittleEndian.PutUint32(out[4:8], f.Code)
	copy(out[8:], f.Payload)
	return out
}

// Decode parses a single, complete frame from buf. buf must contain exactly
// one frame: no leading or trailing bytes.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < 8 {
		return Frame{}, fmt.Errorf("%w: have %d bytes", ErrShortFrame, len(buf))
	}
	declared := binary.LittleEndian.Uint32(buf[0:4])
	if int(declared)+4 != len(buf) {
		return Frame{}, fmt.Errorf("%w: declared=%d actual=%d", ErrLengthMismatch, declared, len(buf)-4)
	}
	code := binary.LittleEndian.Uint32(buf[4:8])
	payload := make([]byte, len(buf)-8)
	copy(payload, buf[8:])
	return Frame{Code: code, Payload: payload}, nil
}

// SplitFirstFrame scans buf for one complete frame at its start. It returns
// (frame, bytesConsumed, true, nil) when a full frame was found,
// (Frame{}, 0, false, nil) when buf does not yet hold enough bytes ("need
// more"), or (Frame{}, 0, false, err) when the declared frame fails to
// decode. It never partially consumes input: bytesConsumed is 0 unless a
// full frame was returned.
func SplitFirstFrame(buf []byte) (Frame, int, bool, error) {
	if len(buf) < 4 {
		return Frame{}, 0, false, nil
	}
	declared := binary.LittleEndian.Uint32(buf[0:4])
	total := int(declared) + 4
	if len(buf) < total {
		return Frame{}, 0, false, nil
	}
	frame, err := Decode(buf[:total])
	if err != nil {
		return Frame{}, 0, false, err
	}
	return frame, total, true, nil
}
