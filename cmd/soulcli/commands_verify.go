package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soulgo/soulgo/internal/capture"
)

func runVerifyFixtures(args []string) error {
	fs := flag.NewFlagSet("verify-fixtures", flag.ExitOnError)
	fixturesDir := fs.String("fixtures-dir", "", "Directory containing official_frames.hex and neo_frames.hex")
	report := fs.String("report", "", "Path to write the JSON comparison report (empty to skip)")
	runID := fs.String("run-id", "verify-fixtures", "Run identifier recorded in the report")
	semantic := fs.Bool("semantic", false, "Use semantic comparison instead of byte-exact")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fixturesDir == "" {
		return fmt.Errorf("-fixtures-dir is required")
	}

	mode := capture.Bytes
	if *semantic {
		mode = capture.Semantic
	}

	result, err := capture.CompareCaptureRunWithMode(*fixturesDir, *runID, mode)
	if err != nil {
		return fmt.Errorf("compare capture run: %w", err)
	}

	if *report != "" {
		if err := capture.WriteReport(*report, result); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	fmt.Printf("pairs=%d matched=%d mismatched=%d official_only=%d neo_only=%d\n",
		result.TotalPairs, result.MatchedPairs, result.MismatchedPairs, result.OfficialOnly, result.NeoOnly)

	if result.MismatchedPairs > 0 || result.OfficialOnly > 0 || result.NeoOnly > 0 {
		os.Exit(1)
	}
	return nil
}
