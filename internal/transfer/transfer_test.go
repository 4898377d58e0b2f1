package transfer

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

func mockPeer(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn)
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().String()
}

func acceptAndRespond(t *testing.T, token uint32, allowed bool, reason string, body []byte) func(net.Conn) {
	return func(conn net.Conn) {
		defer conn.Close()
		f, err := readExactFrame(conn)
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		if f.Code != proto.CodeTransferRequest {
			t.Errorf("code = %d, want TransferRequest", f.Code)
			return
		}
		if _, err := proto.ParseTransferRequest(f.Payload); err != nil {
			t.Errorf("parse request: %v", err)
			return
		}

		resp := proto.BuildTransferResponse(token, allowed, reason)
		code, payload, _ := proto.EncodePeerMessage(resp)
		conn.Write(wire.New(code, payload).Encode())
		if allowed {
			conn.Write(body)
		}
	}
}

func TestDownloadSingleFile_HappyPath(t *testing.T) {
	addr := mockPeer(t, acceptAndRespond(t, 555, true, "", []byte("abc123")))

	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "track.flac")

	plan := DownloadPlan{
		PeerEndpoint: addr,
		Token:        555,
		VirtualPath:  "Music\\Aphex Twin\\Track.flac",
		ExpectedSize: 6,
		OutputPath:   out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := DownloadSingleFile(ctx, plan)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if result.BytesWritten != 6 {
		t.Fatalf("bytes written = %d, want 6", result.BytesWritten)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "abc123" {
		t.Fatalf("output = %q, want %q", got, "abc123")
	}
}

func TestDownloadSingleFile_Denied(t *testing.T) {
	addr := mockPeer(t, acceptAndRespond(t, 7, false, "queue full", nil))

	plan := DownloadPlan{
		PeerEndpoint: addr,
		Token:        7,
		VirtualPath:  "a.flac",
		OutputPath:   filepath.Join(t.TempDir(), "a.flac"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := DownloadSingleFile(ctx, plan)
	if err == nil {
		t.Fatal("expected denial error")
	}
	if _, ok := err.(*PeerDeniedError); !ok {
		t.Fatalf("got %T, want *PeerDeniedError", err)
	}
}

func TestDownloadSingleFile_TokenMismatch(t *testing.T) {
	addr := mockPeer(t, acceptAndRespond(t, 1, true, "", []byte("x")))

	plan := DownloadPlan{
		PeerEndpoint: addr,
		Token:        2, // mismatched on purpose
		VirtualPath:  "a.flac",
		OutputPath:   filepath.Join(t.TempDir(), "a.flac"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := DownloadSingleFile(ctx, plan)
	if _, ok := err.(*TokenMismatchError); !ok {
		t.Fatalf("got %v (%T), want *TokenMismatchError", err, err)
	}
}
