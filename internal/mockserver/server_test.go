package mockserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
)

func dial(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

func echoLoginHandler(ctx context.Context, c *Conn) {
	f, err := c.ReadFrame()
	if err != nil {
		return
	}
	msg, err := proto.DecodeMessage(f.Code, f.Payload)
	if err != nil {
		return
	}
	login, ok := msg.Server.(proto.Login)
	if !ok {
		return
	}
	_ = c.WriteMessage(proto.Login{Username: login.Username, PasswordMD5: "ack"})
}

func TestServer_AcceptsConnectionAndRunsHandler(t *testing.T) {
	s := NewServer(WithListenAddr("127.0.0.1:0"), WithHandler(echoLoginHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	conn, err := dial(s.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	code, payload, err := proto.EncodeMessage(proto.Login{Username: "alice", PasswordMD5: "x", ClientVersion: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cc := &Conn{Conn: conn}
	if err := cc.WriteFrame(code, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	f, err := cc.ReadFrame()
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	reply, err := proto.DecodeMessage(f.Code, f.Payload)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	login, ok := reply.Server.(proto.Login)
	if !ok {
		t.Fatalf("reply is not a Login, got %#v", reply)
	}
	if login.Username != "alice" || login.PasswordMD5 != "ack" {
		t.Fatalf("unexpected reply: %+v", login)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("serve returned: %v", err)
	}
}

func TestServer_MaxConnsRejectsExtra(t *testing.T) {
	block := make(chan struct{})
	s := NewServer(
		WithListenAddr("127.0.0.1:0"),
		WithMaxConns(1),
		WithHandler(func(ctx context.Context, c *Conn) { <-block }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer close(block)

	go func() { _ = s.Serve(ctx) }()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	first, err := dial(s.Addr())
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()
	time.Sleep(50 * time.Millisecond)

	second, err := dial(s.Addr())
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()

	second.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := second.Read(buf); err == nil {
		t.Fatalf("expected the second (over max-conns) connection to be closed")
	}
}

func TestLoopHandler_RespondsUntilStop(t *testing.T) {
	responder := func(ctx context.Context, c *Conn, msg proto.ProtocolMessage) ([]any, bool) {
		if search, ok := msg.Server.(proto.FileSearch); ok {
			return []any{proto.FileSearchResult{Token: search.SearchToken, Username: "bob", ResultCount: 1}}, true
		}
		return nil, false
	}

	s := NewServer(WithListenAddr("127.0.0.1:0"), WithHandler(LoopHandler(responder)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx) }()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	conn, err := dial(s.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	cc := &Conn{Conn: conn}

	code, payload, _ := proto.EncodeMessage(proto.FileSearch{SearchToken: 5, SearchText: "flac"})
	if err := cc.WriteFrame(code, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	f, err := cc.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := proto.DecodeMessage(f.Code, f.Payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fsr, ok := msg.Peer.(proto.FileSearchResult)
	if !ok || fsr.Username != "bob" {
		t.Fatalf("unexpected reply: %#v", msg)
	}
}
