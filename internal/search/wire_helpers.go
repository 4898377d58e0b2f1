package search

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/soulgo/soulgo/internal/wire"
)

// frameBytes renders a (code, payload) pair to its encoded frame bytes.
func frameBytes(code uint32, payload []byte) []byte {
	return wire.New(code, payload).Encode()
}

// readPeerFrame mirrors the session's read_exact framing for the
// short-lived peer connection used to fetch a shared-file listing.
func readPeerFrame(r io.Reader) (wire.Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return wire.Frame{}, err
	}
	bodyLen := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return wire.Frame{}, err
	}
	full := make([]byte, 0, 4+len(body))
	full = append(full, lenBuf[:]...)
	full = append(full, body...)
	return wire.Decode(full)
}

// parsePeerAddressReply manually parses a GetPeerAddress reply frame
// (username, ip as LE u32, port as LE u32), reporting whether it answers
// the given username. The ip/port encoding is this reconstruction's own
// convention (see DESIGN.md): the real protocol's bidirectional reuse of
// code 3 is out of scope for byte-exact interoperability per spec.md's
// non-goals.
func parsePeerAddressReply(payload []byte, wantUsername string) (endpoint string, matched bool, err error) {
	r := wire.NewReader(payload)
	username, err := r.ReadString()
	if err != nil {
		return "", false, err
	}
	ipBits, err := r.ReadU32()
	if err != nil {
		return "", false, err
	}
	port, err := r.ReadU32()
	if err != nil {
		return "", false, err
	}
	if username != wantUsername {
		return "", false, nil
	}
	b := [4]byte{byte(ipBits), byte(ipBits >> 8), byte(ipBits >> 16), byte(ipBits >> 24)}
	return fmt.Sprintf("%d.%d.%d.%d:%d", b[0], b[1], b[2], b[3], port), true, nil
}
