// Command soulcli is a developer tool for building raw protocol frames,
// driving a live session by hand, running the end-to-end search-and-download
// workflow, and verifying reconstructed captures against a reference.
package main

import (
	"fmt"
	"os"
)

// Helper implementations moved to dedicated files: version.go, logger.go,
// commands_build.go, commands_run.go, commands_download.go,
// commands_verify.go.

func usage() {
	fmt.Fprintln(os.Stderr, `soulcli: Soulseek protocol toolbox

Usage:
  soulcli <command> [flags]

Commands:
  build-login              Hex-print an encoded Login frame
  build-search              Hex-print an encoded FileSearch frame
  build-transfer-request     Hex-print an encoded TransferRequest frame
  build-transfer-response    Hex-print an encoded TransferResponse frame
  run-login                 Connect and log in to a live/mock server
  run-search                 Connect, log in, and run a search
  download                  Run the full search-select-download workflow
  verify-fixtures            Compare two hex-frame captures and report
  version                   Print version information

Run "soulcli <command> -h" for flags specific to that command.`)
}

func main() {
	gcfg, rest := parseGlobalFlags(os.Args[1:])
	setupLogger(gcfg.logFormat, gcfg.logLevel)

	if gcfg.showVersion {
		fmt.Printf("soulcli %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if len(rest) < 1 {
		usage()
		os.Exit(2)
	}

	cmd := rest[0]
	args := rest[1:]

	var err error
	switch cmd {
	case "build-login":
		err = runBuildLogin(args)
	case "build-search":
		err = runBuildSearch(args)
	case "build-transfer-request":
		err = runBuildTransferRequest(args)
	case "build-transfer-response":
		err = runBuildTransferResponse(args)
	case "run-login":
		err = runRunLogin(args)
	case "run-search":
		err = runRunSearch(args)
	case "download":
		err = runDownload(args)
	case "verify-fixtures":
		err = runVerifyFixtures(args)
	case "version":
		fmt.Printf("soulcli %s (commit %s, built %s)\n", version, commit, date)
		return
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "soulcli: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "soulcli %s: %v\n", cmd, err)
		os.Exit(1)
	}
}
