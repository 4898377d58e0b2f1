// Package transfer implements the direct peer-to-peer download exchange:
// dial a peer, negotiate a transfer, and stream the file body to disk.
package transfer

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/soulgo/soulgo/internal/metrics"
	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

// DownloadPlan describes one file to fetch from one peer.
type DownloadPlan struct {
	PeerEndpoint string
	Token        uint32
	VirtualPath  string
	ExpectedSize uint64
	OutputPath   string
}

// DownloadResult reports the outcome of a completed download.
type DownloadResult struct {
	OutputPath   string
	BytesWritten int64
}

// DownloadSingleFile opens a fresh TCP connection to the peer, negotiates a
// transfer, and writes the streamed body to plan.OutputPath. The peer
// stream is owned entirely by this call and is closed before returning.
func DownloadSingleFile(ctx context.Context, plan DownloadPlan) (DownloadResult, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", plan.PeerEndpoint)
	if err != nil {
		metrics.IncError(metrics.ErrTransferIO)
		return DownloadResult{}, &IOError{Op: "dial", Err: err}
	}
	defer conn.Close()

	req := proto.TransferRequest{
		Direction:   proto.Download,
		Token:       plan.Token,
		VirtualPath: plan.VirtualPath,
		FileSize:    plan.ExpectedSize,
	}
	code, payload, err := proto.EncodePeerMessage(req)
	if err != nil {
		return DownloadResult{}, err
	}
	if _, err := conn.Write(wire.New(code, payload).Encode()); err != nil {
		metrics.IncError(metrics.ErrTransferIO)
		return DownloadResult{}, &IOError{Op: "write_request", Err: err}
	}
	metrics.IncFramesEncoded("peer")

	f, err := readExactFrame(conn)
	if err != nil {
		metrics.IncError(metrics.ErrTransferIO)
		return DownloadResult{}, err
	}
	metrics.IncFramesDecoded("peer")
	if f.Code != proto.CodeTransferResponse {
		return DownloadResult{}, &UnexpectedPeerCodeError{Code: f.Code}
	}

	resp, err := proto.ParseTransferResponse(f.Payload)
	if err != nil {
		return DownloadResult{}, err
	}
	if resp.Token != plan.Token {
		return DownloadResult{}, &TokenMismatchError{Want: plan.Token, Got: resp.Token}
	}
	if !resp.Allowed {
		return DownloadResult{}, &PeerDeniedError{Reason: resp.QueueOrReason}
	}

	if dir := filepath.Dir(plan.OutputPath); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return DownloadResult{}, &IOError{Op: "mkdir", Err: err}
		}
	}
	out, err := os.Create(plan.OutputPath)
	if err != nil {
		return DownloadResult{}, &IOError{Op: "create_output", Err: err}
	}
	defer out.Close()

	n, err := io.Copy(out, conn)
	if err != nil {
		return DownloadResult{}, &IOError{Op: "stream_body", Err: err}
	}
	metrics.AddTransferBytes(n)

	return DownloadResult{OutputPath: plan.OutputPath, BytesWritten: n}, nil
}

// readExactFrame mirrors the session's read_exact framing for a peer
// stream: read the 4-byte length header, then the declared body.
func readExactFrame(r io.Reader) (wire.Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return wire.Frame{}, &IOError{Op: "read_length", Err: err}
	}
	bodyLen := leU32(lenBuf)
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return wire.Frame{}, &IOError{Op: "read_body", Err: err}
	}
	full := make([]byte, 0, 4+len(body))
	full = append(full, lenBuf[:]...)
	full = append(full, body...)
	return wire.Decode(full)
}

func leU32(b [4]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
