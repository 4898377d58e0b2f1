package main

import (
	"encoding/hex"
	"flag"
	"fmt"

	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

func printFrameHex(code uint32, payload []byte) {
	fmt.Println(hex.EncodeToString(wire.New(code, payload).Encode()))
}

func runBuildLogin(args []string) error {
	fs := flag.NewFlagSet("build-login", flag.ExitOnError)
	username := fs.String("username", "", "Login username")
	password := fs.String("password", "", "Login password (hashed to MD5 before encoding)")
	clientVersion := fs.Uint("client-version", 160, "Client version")
	minorVersion := fs.Uint("minor-version", 1, "Minor version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg := proto.BuildLoginRequest(*username, *password, uint32(*clientVersion), uint32(*minorVersion))
	code, payload, err := proto.EncodeServerMessage(msg)
	if err != nil {
		return err
	}
	printFrameHex(code, payload)
	return nil
}

func runBuildSearch(args []string) error {
	fs := flag.NewFlagSet("build-search", flag.ExitOnError)
	token := fs.Uint("token", 1, "Search token")
	query := fs.String("query", "", "Search query text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg := proto.BuildFileSearchRequest(uint32(*token), *query)
	code, payload, err := proto.EncodeServerMessage(msg)
	if err != nil {
		return err
	}
	printFrameHex(code, payload)
	return nil
}

func runBuildTransferRequest(args []string) error {
	fs := flag.NewFlagSet("build-transfer-request", flag.ExitOnError)
	direction := fs.Uint("direction", 0, "Transfer direction: 0=download, 1=upload")
	token := fs.Uint("token", 1, "Transfer token")
	virtualPath := fs.String("virtual-path", "", "Virtual file path")
	fileSize := fs.Uint64("file-size", 0, "File size in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg := proto.BuildTransferRequest(proto.TransferDirection(*direction), uint32(*token), *virtualPath, *fileSize)
	code, payload, err := proto.EncodePeerMessage(msg)
	if err != nil {
		return err
	}
	printFrameHex(code, payload)
	return nil
}

func runBuildTransferResponse(args []string) error {
	fs := flag.NewFlagSet("build-transfer-response", flag.ExitOnError)
	token := fs.Uint("token", 1, "Transfer token")
	allowed := fs.Bool("allowed", true, "Whether the transfer is allowed")
	reason := fs.String("reason", "", "Queue position (if allowed) or denial reason")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg := proto.BuildTransferResponse(uint32(*token), *allowed, *reason)
	code, payload, err := proto.EncodePeerMessage(msg)
	if err != nil {
		return err
	}
	printFrameHex(code, payload)
	return nil
}
