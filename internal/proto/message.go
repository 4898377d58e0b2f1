package proto

import "github.com/soulgo/soulgo/internal/wire"

// NewWriter returns an empty wire payload writer for building message bodies.
func NewWriter() *wire.Writer { return wire.NewWriter() }

// NewReader wraps payload in a wire payload reader for parsing message bodies.
func NewReader(payload []byte) *wire.Reader { return wire.NewReader(payload) }

// ProtocolMessage is the union of both message families, returned by
// DecodeMessage once it has determined which vocabulary a code belongs to.
type ProtocolMessage struct {
	Server ServerMessage
	Peer   PeerMessage
}

// EncodeMessage renders either a ServerMessage or a PeerMessage to its wire
// code and payload bytes.
func EncodeMessage(msg any) (uint32, []byte, error) {
	switch m := msg.(type) {
	case ServerMessage:
		return EncodeServerMessage(m)
	case PeerMessage:
		return EncodePeerMessage(m)
	default:
		return 0, nil, &UnsupportedCodeError{}
	}
}

// DecodeMessage attempts to parse payload as a server message first, and
// only falls back to the peer vocabulary when the code is not recognized
// as a server code (spec.md §4.B: server-then-peer dispatch, not a
// code-range split — the two vocabularies are allowed to overlap because
// server and peer connections are never the same socket).
func DecodeMessage(code uint32, payload []byte) (ProtocolMessage, error) {
	if sm, err := DecodeServerMessage(code, payload); err == nil {
		return ProtocolMessage{Server: sm}, nil
	} else if !isUnsupportedCode(err) {
		return ProtocolMessage{}, err
	}

	if pm, err := DecodePeerMessage(code, payload); err == nil {
		return ProtocolMessage{Peer: pm}, nil
	} else if !isUnsupportedCode(err) {
		return ProtocolMessage{}, err
	}

	return ProtocolMessage{}, &UnsupportedCodeError{Code: code, PayloadLen: len(payload)}
}

func isUnsupportedCode(err error) bool {
	_, ok := err.(*UnsupportedCodeError)
	return ok
}
