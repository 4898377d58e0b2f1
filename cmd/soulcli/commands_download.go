package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/search"
	"github.com/soulgo/soulgo/internal/session"
)

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	server := fs.String("server", "127.0.0.1:2242", "Central server address")
	username := fs.String("username", "", "Login username")
	password := fs.String("password", "", "Login password")
	token := fs.Uint("token", 1, "Search token")
	query := fs.String("query", "", "Search query text")
	searchTimeout := fs.Duration("search-timeout", 2*time.Second, "How long to collect search results")
	maxMessages := fs.Int("max-messages", 50, "Maximum frames to collect")
	resultIndex := fs.Int("result-index", 0, "Which search result to select")
	fileIndex := fs.Int("file-index", 0, "Which file within the selected user's shared list")
	transferToken := fs.Uint("transfer-token", 1, "Transfer token")
	output := fs.String("output", "", "Output file path")
	peerLookupTimeout := fs.Duration("peer-lookup-timeout", 3*time.Second, "GetPeerAddress resolution timeout")
	connectTimeout := fs.Duration("connect-timeout", 5*time.Second, "Connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("-output is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *connectTimeout)
	defer cancel()

	s, err := session.Connect(ctx, *server, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer s.Close()

	login := proto.BuildLoginRequest(*username, *password, 160, 1)
	if err := s.Login(session.Credentials{
		Username:      *username,
		PasswordMD5:   login.PasswordMD5,
		ClientVersion: 160,
		MinorVersion:  1,
	}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	downloadCtx, downloadCancel := context.WithTimeout(context.Background(), *searchTimeout+*peerLookupTimeout+30*time.Second)
	defer downloadCancel()

	result, err := search.SearchSelectAndDownload(downloadCtx, s, search.SearchSelectDownloadRequest{
		SearchToken:       uint32(*token),
		Query:             *query,
		SearchTimeout:     *searchTimeout,
		MaxMessages:       *maxMessages,
		ResultIndex:       *resultIndex,
		FileIndex:         *fileIndex,
		TransferToken:     uint32(*transferToken),
		OutputPath:        *output,
		PeerLookupTimeout: *peerLookupTimeout,
	})
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Printf("downloaded %q from %s (%d bytes) -> %s\n", result.VirtualPath, result.Username, result.BytesWritten, result.OutputPath)
	return nil
}
