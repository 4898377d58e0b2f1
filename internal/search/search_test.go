package search

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/session"
	"github.com/soulgo/soulgo/internal/wire"
)

func startPeerServer(t *testing.T, entries []proto.SharedFileEntry, transferBody []byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				f, err := readPeerFrame(c)
				if err != nil {
					return
				}
				switch f.Code {
				case proto.CodeGetSharedFileList:
					code, payload, _ := proto.EncodePeerMessage(proto.SharedFileList{Entries: entries})
					c.Write(frameBytes(code, payload))
				case proto.CodeTransferRequest:
					req, err := proto.ParseTransferRequest(f.Payload)
					if err != nil {
						return
					}
					resp := proto.BuildTransferResponse(req.Token, true, "")
					code, payload, _ := proto.EncodePeerMessage(resp)
					c.Write(frameBytes(code, payload))
					c.Write(transferBody)
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

func startCentralServer(t *testing.T, peerEndpoint string, resultCount uint32) string {
	t.Helper()
	host, portStr, err := net.SplitHostPort(peerEndpoint)
	if err != nil {
		t.Fatalf("split peer endpoint: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	octets := strings.Split(host, ".")
	if len(octets) != 4 {
		t.Fatalf("unexpected peer host %q", host)
	}
	var ipBits uint32
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(octets[i])
		if err != nil {
			t.Fatalf("parse octet: %v", err)
		}
		ipBits |= uint32(v) << (8 * i)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Login (ignored).
		if _, err := readPeerFrame(conn); err != nil {
			return
		}
		// FileSearch.
		if _, err := readPeerFrame(conn); err != nil {
			return
		}
		fsrCode, fsrPayload, _ := proto.EncodePeerMessage(proto.FileSearchResult{Token: 1, Username: "bob", ResultCount: resultCount})
		conn.Write(wire.New(fsrCode, fsrPayload).Encode())

		// GetPeerAddress.
		gpa, err := readPeerFrame(conn)
		if err != nil || gpa.Code != proto.CodeGetPeerAddress {
			return
		}
		w := wire.NewWriter()
		w.WriteString("bob")
		w.WriteU32(ipBits)
		w.WriteU32(uint32(port))
		conn.Write(wire.New(proto.CodeGetPeerAddress, w.Bytes()).Encode())
	}()

	return ln.Addr().String()
}

func TestSearchSelectAndDownload_EndToEnd(t *testing.T) {
	body := []byte("filedata")
	peerAddr := startPeerServer(t, []proto.SharedFileEntry{{VirtualPath: "Music\\a.flac", Size: uint64(len(body))}}, body)
	centralAddr := startCentralServer(t, peerAddr, 1)

	s, err := session.Connect(context.Background(), centralAddr, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Login(session.Credentials{Username: "alice", PasswordMD5: "x"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	out := filepath.Join(t.TempDir(), "a.flac")
	req := SearchSelectDownloadRequest{
		SearchToken:       1,
		Query:             "flac",
		SearchTimeout:     500 * time.Millisecond,
		MaxMessages:       10,
		ResultIndex:       0,
		FileIndex:         0,
		TransferToken:     42,
		OutputPath:        out,
		PeerLookupTimeout: 2 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := SearchSelectAndDownload(ctx, s, req)
	if err != nil {
		t.Fatalf("search select and download: %v", err)
	}
	if result.Username != "bob" {
		t.Fatalf("username = %q, want bob", result.Username)
	}
	if result.BytesWritten != int64(len(body)) {
		t.Fatalf("bytes written = %d, want %d", result.BytesWritten, len(body))
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("output = %q, want %q", got, body)
	}
}

func TestSearchSelectAndDownload_NoMatchingResult(t *testing.T) {
	peerAddr := startPeerServer(t, nil, nil)
	centralAddr := startCentralServer(t, peerAddr, 1)

	s, err := session.Connect(context.Background(), centralAddr, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Login(session.Credentials{Username: "alice", PasswordMD5: "x"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	req := SearchSelectDownloadRequest{
		SearchToken:   1,
		Query:         "flac",
		SearchTimeout: 300 * time.Millisecond,
		MaxMessages:   10,
		ResultIndex:   5, // out of range: only one summary is ever sent
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = SearchSelectAndDownload(ctx, s, req)
	if _, ok := err.(*NoMatchingResultError); !ok {
		t.Fatalf("got %T (%v), want *NoMatchingResultError", err, err)
	}
}
