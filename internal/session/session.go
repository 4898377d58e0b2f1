// Package session drives the central-server state machine: connect, log
// in, dispatch searches, and collect replies over a single owned TCP
// stream.
package session

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/soulgo/soulgo/internal/events"
	"github.com/soulgo/soulgo/internal/logging"
	"github.com/soulgo/soulgo/internal/metrics"
	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

// State is the session's position in Disconnected → Connected → LoggedIn,
// with Faulted reachable (and terminal) from any state on I/O error.
type State int32

const (
	Disconnected State = iota
	Connected
	LoggedIn
	Faulted
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case LoggedIn:
		return "logged_in"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

var stateNames = []string{Disconnected.String(), Connected.String(), LoggedIn.String(), Faulted.String()}

// Credentials holds a pre-hashed login identity. PasswordMD5 must already
// be the hex MD5 digest of the plaintext password; the session never
// hashes it itself.
type Credentials struct {
	Username      string
	PasswordMD5   string
	ClientVersion uint32
	MinorVersion  uint32
}

// Session owns one live TCP stream to the central server. A Session is NOT
// safe to use concurrently from multiple goroutines; callers must
// externally serialize access to a given instance.
type Session struct {
	conn  net.Conn
	state atomic.Int32
	bus   *events.Bus
}

// Connect opens a TCP stream to endpoint ("host:port") and returns a
// session in state Connected. bus may be nil; no events are published in
// that case.
func Connect(ctx context.Context, endpoint string, bus *events.Bus) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		metrics.IncError(metrics.ErrSessionConnect)
		logging.L().Warn("session_connect_failed", "endpoint", endpoint, "err", err)
		return nil, &ConnectFailedError{Endpoint: endpoint, Err: err}
	}
	s := &Session{conn: conn, bus: bus}
	s.setState(Connected)
	logging.L().Info("session_connected", "endpoint", endpoint)
	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	metrics.SetSessionState(stateNames, st.String())
}

// fault transitions the session to Faulted and closes its stream. The
// session must be dropped by the caller after this; no further operations
// are valid.
func (s *Session) fault(err error) error {
	s.setState(Faulted)
	logging.L().Warn("session_faulted", "err", err)
	_ = s.conn.Close()
	return err
}

// Login sends the Login frame and transitions to LoggedIn. It does not
// await a server reply; any server-side rejection surfaces on the first
// subsequent read.
func (s *Session) Login(creds Credentials) error {
	if s.State() == Faulted {
		return &FaultedError{}
	}
	msg := proto.Login{
		Username:      creds.Username,
		PasswordMD5:   creds.PasswordMD5,
		ClientVersion: creds.ClientVersion,
		MinorVersion:  creds.MinorVersion,
	}
	if err := s.SendServerMessage(msg); err != nil {
		return err
	}
	s.setState(LoggedIn)
	return nil
}

// Search sends a FileSearch frame and returns immediately.
func (s *Session) Search(token uint32, text string) error {
	if s.State() == Faulted {
		return &FaultedError{}
	}
	return s.SendServerMessage(proto.FileSearch{SearchToken: token, SearchText: text})
}

// SendServerMessage encodes and writes msg, publishing an outbound event.
func (s *Session) SendServerMessage(msg proto.ServerMessage) error {
	code, payload, err := proto.EncodeServerMessage(msg)
	if err != nil {
		return err
	}
	f := wire.New(code, payload)
	if _, err := s.conn.Write(f.Encode()); err != nil {
		metrics.IncError(metrics.ErrSessionIO)
		return s.fault(&IOError{Op: "write", Err: err})
	}
	metrics.IncFramesEncoded("server")
	s.bus.Publish(events.Event{Direction: events.Outbound, Frame: f, Message: msg})
	return nil
}

// ReadNextFrame reads one length-prefixed frame: read_exact of the 4-byte
// header, then read_exact of the declared body. Partial reads are errors.
func (s *Session) ReadNextFrame() (wire.Frame, error) {
	return readExactFrame(s.conn)
}

func readExactFrame(r io.Reader) (wire.Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return wire.Frame{}, &IOError{Op: "read_length", Err: err}
	}
	bodyLen := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return wire.Frame{}, &IOError{Op: "read_body", Err: err}
	}
	full := make([]byte, 0, 4+len(body))
	full = append(full, lenBuf[:]...)
	full = append(full, body...)
	return wire.Decode(full)
}

// SearchAndCollect sends the search, then drains the inbound stream,
// collecting up to maxMessages decoded messages or until timeout elapses
// since the last received frame. Unknown codes are skipped without
// aborting the collection; any I/O error faults the session.
func (s *Session) SearchAndCollect(token uint32, text string, timeout time.Duration, maxMessages int) ([]proto.ProtocolMessage, error) {
	if err := s.Search(token, text); err != nil {
		return nil, err
	}

	var out []proto.ProtocolMessage
	for len(out) < maxMessages {
		if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return out, s.fault(&IOError{Op: "set_deadline", Err: err})
		}
		f, err := s.ReadNextFrame()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			metrics.IncError(metrics.ErrSessionIO)
			return out, s.fault(err)
		}
		metrics.IncFramesDecoded("server")

		msg, err := proto.DecodeMessage(f.Code, f.Payload)
		if err != nil {
			var unsupported *proto.UnsupportedCodeError
			if errors.As(err, &unsupported) {
				s.bus.Publish(events.Event{Direction: events.Inbound, Frame: f, DecodeErr: err})
				continue
			}
			return out, err
		}

		var payload any
		if msg.Server != nil {
			payload = msg.Server
		} else {
			payload = msg.Peer
		}
		s.bus.Publish(events.Event{Direction: events.Inbound, Frame: f, Message: payload})
		out = append(out, msg)
	}
	return out, nil
}

// ReadNextFrameWithDeadline reads one frame, failing with a non-faulting
// timeout error if deadline elapses first. Used by callers (the search
// orchestrator's peer-lookup step) that need their own wait window distinct
// from search_and_collect's idle-since-last-frame window.
func (s *Session) ReadNextFrameWithDeadline(deadline time.Time) (wire.Frame, error) {
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return wire.Frame{}, s.fault(&IOError{Op: "set_deadline", Err: err})
	}
	f, err := s.ReadNextFrame()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return wire.Frame{}, err
		}
		return wire.Frame{}, s.fault(err)
	}
	return f, nil
}

// Close releases the session's stream without transitioning state; used by
// callers that are done with a non-faulted session.
func (s *Session) Close() error {
	return s.conn.Close()
}
