package mockserver

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/soulgo/soulgo/internal/proto"
)

// Responder inspects one decoded frame and returns zero or more messages to
// write back. Returning ok == false ends the connection's read loop
// (without an error being logged).
type Responder func(ctx context.Context, c *Conn, msg proto.ProtocolMessage) (replies []any, ok bool)

// LoopHandler adapts a Responder into a Handler that reads frames in a
// loop, dispatching each to responder and writing back whatever it
// returns, until the responder signals stop or the connection errs out.
// Frames that fail to decode (unknown codes included) are passed to the
// responder as a ProtocolMessage with both Server and Peer nil; the raw
// frame itself is not passed to the responder.
func LoopHandler(responder Responder) Handler {
	return func(ctx context.Context, c *Conn) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			f, err := c.ReadFrame()
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					return
				}
				return
			}

			msg, err := proto.DecodeMessage(f.Code, f.Payload)
			if err != nil {
				msg = proto.ProtocolMessage{}
			}

			replies, ok := responder(ctx, c, msg)
			for _, r := range replies {
				if err := c.WriteMessage(r); err != nil {
					return
				}
			}
			if !ok {
				return
			}
		}
	}
}
