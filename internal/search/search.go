// Package search implements the end-to-end "search → select → download"
// orchestration: collect distributed search summaries, pick a user and a
// file, resolve that user's peer endpoint, fetch their shared-file listing,
// and hand the selected entry to the transfer engine.
package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/session"
	"github.com/soulgo/soulgo/internal/transfer"
)

// SearchSelectDownloadRequest bundles every parameter the end-to-end
// workflow needs, per spec.
type SearchSelectDownloadRequest struct {
	SearchToken       uint32
	Query             string
	SearchTimeout     time.Duration
	MaxMessages       int
	ResultIndex       int
	FileIndex         int
	TransferToken     uint32
	OutputPath        string
	PeerAddrOverride  string
	PeerLookupTimeout time.Duration
	ConnectionType    string
	SkipConnectProbe  bool
}

// Result is the composite outcome of a full search-select-download run.
type Result struct {
	Username     string
	VirtualPath  string
	OutputPath   string
	BytesWritten int64
}

// SearchSelectAndDownload runs the full workflow over an already-connected,
// logged-in session.
func SearchSelectAndDownload(ctx context.Context, s *session.Session, req SearchSelectDownloadRequest) (Result, error) {
	msgs, err := s.SearchAndCollect(req.SearchToken, req.Query, req.SearchTimeout, req.MaxMessages)
	if err != nil {
		return Result{}, err
	}

	summaries := flattenFileSearchResults(msgs)
	if req.ResultIndex < 0 || req.ResultIndex >= len(summaries) {
		return Result{}, &NoMatchingResultError{Reason: fmt.Sprintf("result_index %d out of range (%d results)", req.ResultIndex, len(summaries))}
	}
	summary := summaries[req.ResultIndex]

	endpoint := req.PeerAddrOverride
	if endpoint == "" {
		endpoint, err = resolvePeerEndpoint(s, summary.Username, req.PeerLookupTimeout)
		if err != nil {
			return Result{}, err
		}
	}

	entries, err := fetchSharedFileList(ctx, endpoint, summary.Username)
	if err != nil {
		return Result{}, err
	}
	if req.FileIndex < 0 || req.FileIndex >= len(entries) {
		return Result{}, &NoMatchingResultError{Reason: fmt.Sprintf("file_index %d out of range (%d files)", req.FileIndex, len(entries))}
	}
	entry := entries[req.FileIndex]

	plan := transfer.DownloadPlan{
		PeerEndpoint: endpoint,
		Token:        req.TransferToken,
		VirtualPath:  entry.VirtualPath,
		ExpectedSize: entry.Size,
		OutputPath:   req.OutputPath,
	}
	result, err := transfer.DownloadSingleFile(ctx, plan)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Username:     summary.Username,
		VirtualPath:  entry.VirtualPath,
		OutputPath:   result.OutputPath,
		BytesWritten: result.BytesWritten,
	}, nil
}

// flattenFileSearchResults extracts the FileSearchResult summaries from a
// search_and_collect result, preserving on-the-wire arrival order. The
// orchestrator performs no ranking; selection below is purely positional.
func flattenFileSearchResults(msgs []proto.ProtocolMessage) []proto.FileSearchResult {
	var out []proto.FileSearchResult
	for _, m := range msgs {
		if m.Peer == nil {
			continue
		}
		if fsr, ok := m.Peer.(proto.FileSearchResult); ok {
			out = append(out, fsr)
		}
	}
	return out
}

// resolvePeerEndpoint issues a GetPeerAddress request and waits for the
// server's reply within timeout. The reply to GetPeerAddress reuses the
// request's wire code (3) but carries additional fields (ip, port) that
// proto.DecodeServerMessage does not model as a request shape, so this
// function parses the reply frame directly rather than going through the
// tagged dispatch.
func resolvePeerEndpoint(s *session.Session, username string, timeout time.Duration) (string, error) {
	if err := s.SendServerMessage(proto.GetPeerAddress{Username: username}); err != nil {
		return "", err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		f, err := s.ReadNextFrameWithDeadline(deadline)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			return "", err
		}
		if f.Code != proto.CodeGetPeerAddress {
			continue
		}
		endpoint, matched, err := parsePeerAddressReply(f.Payload, username)
		if err != nil {
			return "", err
		}
		if matched {
			return endpoint, nil
		}
	}
	return "", &PeerLookupTimeoutError{Username: username}
}

// fetchSharedFileList opens a fresh peer connection, requests the user's
// shared-file listing, and returns its entries.
func fetchSharedFileList(ctx context.Context, endpoint, username string) ([]proto.SharedFileEntry, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	code, payload, err := proto.EncodePeerMessage(proto.GetSharedFileList{Username: username})
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(frameBytes(code, payload)); err != nil {
		return nil, err
	}

	f, err := readPeerFrame(conn)
	if err != nil {
		return nil, err
	}
	msg, err := proto.DecodePeerMessage(f.Code, f.Payload)
	if err != nil {
		return nil, err
	}
	list, ok := msg.(proto.SharedFileList)
	if !ok {
		return nil, &NoMatchingResultError{Reason: "peer did not reply with SharedFileList"}
	}
	return list.Entries, nil
}
