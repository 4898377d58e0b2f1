package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/session"
)

func runRunLogin(args []string) error {
	fs := flag.NewFlagSet("run-login", flag.ExitOnError)
	server := fs.String("server", "127.0.0.1:2242", "Central server address")
	username := fs.String("username", "", "Login username")
	password := fs.String("password", "", "Login password")
	clientVersion := fs.Uint("client-version", 160, "Client version")
	timeout := fs.Duration("timeout", 5*time.Second, "Connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, err := session.Connect(ctx, *server, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer s.Close()

	creds := session.Credentials{
		Username:      *username,
		PasswordMD5:   proto.BuildLoginRequest(*username, *password, uint32(*clientVersion), 1).PasswordMD5,
		ClientVersion: uint32(*clientVersion),
		MinorVersion:  1,
	}
	if err := s.Login(creds); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Printf("logged in: state=%s\n", s.State())
	return nil
}

func runRunSearch(args []string) error {
	fs := flag.NewFlagSet("run-search", flag.ExitOnError)
	server := fs.String("server", "127.0.0.1:2242", "Central server address")
	username := fs.String("username", "", "Login username")
	password := fs.String("password", "", "Login password")
	token := fs.Uint("token", 1, "Search token")
	query := fs.String("query", "", "Search query text")
	searchTimeout := fs.Duration("search-timeout", 2*time.Second, "How long to collect search results")
	maxMessages := fs.Int("max-messages", 50, "Maximum frames to collect")
	connectTimeout := fs.Duration("connect-timeout", 5*time.Second, "Connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
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

	msgs, err := s.SearchAndCollect(uint32(*token), *query, *searchTimeout, *maxMessages)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	count := 0
	for _, m := range msgs {
		if fsr, ok := m.Peer.(proto.FileSearchResult); ok {
			fmt.Printf("result[%d]: user=%s count=%d\n", count, fsr.Username, fsr.ResultCount)
			count++
		}
	}
	fmt.Printf("collected %d frames, %d search results\n", len(msgs), count)
	return nil
}
