package main

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/soulgo/soulgo/internal/mockserver"
	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

// buildHandler returns a single Handler that plays every role a Soulseek
// session needs from one connection: central-server login/search/peer
// lookup, and (once the client dials back in) the peer-side shared-file
// listing and transfer handshake. Because this mock never federates with
// real peers, it answers every GetPeerAddress lookup with its own listen
// address, so a client's "open a fresh peer connection" step lands back on
// this same listener. addrFn is consulted lazily (once) so it can be
// srv.Addr(), which is only populated after Serve has bound the listener.
func buildHandler(cfg *appConfig, addrFn func() string) mockserver.Handler {
	var once sync.Once
	var ipBits uint32
	var port int
	resolveSelf := func() {
		once.Do(func() {
			host, portStr, _ := net.SplitHostPort(addrFn())
			port, _ = strconv.Atoi(portStr)
			ipBits = encodeIPv4LE(host)
		})
	}

	entries := []proto.SharedFileEntry{
		{VirtualPath: cfg.fakeVirtual, Size: uint64(cfg.fakeFileBytes)},
	}
	body := make([]byte, cfg.fakeFileBytes)

	responder := func(ctx context.Context, c *mockserver.Conn, msg proto.ProtocolMessage) ([]any, bool) {
		switch m := msg.Server.(type) {
		case proto.Login:
			return []any{proto.Login{Username: m.Username, PasswordMD5: "ok", ClientVersion: m.ClientVersion}}, true
		case proto.FileSearch:
			return []any{proto.FileSearchResult{Token: m.SearchToken, Username: cfg.fakeUsername, ResultCount: uint32(len(entries))}}, true
		case proto.GetPeerAddress:
			resolveSelf()
			w := wire.NewWriter()
			w.WriteString(m.Username)
			w.WriteU32(ipBits)
			w.WriteU32(uint32(port))
			if err := c.WriteFrame(proto.CodeGetPeerAddress, w.Bytes()); err != nil {
				return nil, false
			}
			return nil, true
		}

		switch m := msg.Peer.(type) {
		case proto.GetSharedFileList:
			return []any{proto.SharedFileList{Entries: entries}}, true
		case proto.TransferRequest:
			resp := proto.BuildTransferResponse(m.Token, true, "")
			if err := c.WriteMessage(resp); err != nil {
				return nil, false
			}
			if _, err := c.Write(body); err != nil {
				return nil, false
			}
			return nil, true
		}

		return nil, true
	}

	return mockserver.LoopHandler(responder)
}

func encodeIPv4LE(host string) uint32 {
	octets := strings.Split(host, ".")
	if len(octets) != 4 {
		return 0
	}
	var v uint32
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(octets[i])
		if err != nil {
			return 0
		}
		v |= uint32(n) << (8 * i)
	}
	return v
}
