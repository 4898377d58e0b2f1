// Package capture implements byte-exact and semantic comparison between a
// reference ("official") frame capture and a reproduction ("neo") capture,
// aggregating the result into a JSON-serializable run report. The
// comparator is pure and deterministic: it never mutates its inputs and
// never performs I/O beyond the explicit load/write helpers.
package capture

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/soulgo/soulgo/internal/metrics"
	"github.com/soulgo/soulgo/internal/proto"
	"github.com/soulgo/soulgo/internal/wire"
)

// ComparisonMode selects byte-exact or semantic frame-pair comparison.
type ComparisonMode int

const (
	Bytes ComparisonMode = iota
	Semantic
)

func (m ComparisonMode) String() string {
	if m == Semantic {
		return "semantic"
	}
	return "bytes"
}

// FrameComparison is the result of comparing one on-disk hex fixture
// against an actually-produced frame.
type FrameComparison struct {
	Fixture         string `json:"fixture"`
	Matches         bool   `json:"matches"`
	ExpectedLen     int    `json:"expected_len"`
	ActualLen       int    `json:"actual_len"`
	FirstDiffOffset *int   `json:"first_diff_offset"`
}

// CaptureFrameComparison is one pair's entry within a CaptureRunReport.
type CaptureFrameComparison struct {
	Index                  int     `json:"index"`
	Matches                bool    `json:"matches"`
	BytesMatch             bool    `json:"bytes_match"`
	SemanticMatches        bool    `json:"semantic_matches"`
	SemanticFirstDiffField *string `json:"semantic_first_diff_field"`
	OfficialLen            int     `json:"official_len"`
	NeoLen                 int     `json:"neo_len"`
	FirstDiffOffset        *int    `json:"first_diff_offset"`
}

// CaptureRunReport is the persisted JSON aggregate for one comparison run.
type CaptureRunReport struct {
	RunID            string                   `json:"run_id"`
	ComparisonMode   string                   `json:"comparison_mode"`
	TotalPairs       int                      `json:"total_pairs"`
	MatchedPairs     int                      `json:"matched_pairs"`
	MismatchedPairs  int                      `json:"mismatched_pairs"`
	OfficialOnly     int                      `json:"official_only"`
	NeoOnly          int                      `json:"neo_only"`
	FrameComparisons []CaptureFrameComparison `json:"frame_comparisons"`
}

// LoadHexFixture reads a single hex-encoded frame from path.
func LoadHexFixture(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(data)))
}

// LoadHexLines reads one hex-encoded frame per non-empty line.
func LoadHexLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b, err := hex.DecodeString(line)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// CompareFixtureHex compares an on-disk hex fixture against actual bytes.
func CompareFixtureHex(fixturePath string, actual []byte) (FrameComparison, error) {
	expected, err := LoadHexFixture(fixturePath)
	if err != nil {
		return FrameComparison{}, err
	}
	return FrameComparison{
		Fixture:         fixturePath,
		Matches:         bytes.Equal(expected, actual),
		ExpectedLen:     len(expected),
		ActualLen:       len(actual),
		FirstDiffOffset: firstDiffOffset(expected, actual),
	}, nil
}

// CompareFixtureToFrame compares an on-disk hex fixture against an
// already-encoded frame.
func CompareFixtureToFrame(fixturePath string, actual wire.Frame) (FrameComparison, error) {
	return CompareFixtureHex(fixturePath, actual.Encode())
}

// CompareCaptureSequences compares two ordered frame-byte sequences in
// Bytes mode.
func CompareCaptureSequences(runID string, official, neo [][]byte) CaptureRunReport {
	return CompareCaptureSequencesWithMode(runID, official, neo, Bytes)
}

// CompareCaptureSequencesWithMode compares two ordered frame-byte sequences
// under the given comparison mode.
func CompareCaptureSequencesWithMode(runID string, official, neo [][]byte, mode ComparisonMode) CaptureRunReport {
	n := len(official)
	if len(neo) < n {
		n = len(neo)
	}

	comparisons := make([]CaptureFrameComparison, 0, n)
	matched := 0
	for i := 0; i < n; i++ {
		a, b := official[i], neo[i]
		bytesMatch := bytes.Equal(a, b)

		semanticMatches := bytesMatch
		var diffField *string
		if mode == Semantic {
			semanticMatches, diffField = semanticCompare(a, b)
		}

		matches := bytesMatch
		if mode == Semantic {
			matches = semanticMatches
		}
		if matches {
			matched++
		} else {
			metrics.IncCaptureMismatch()
		}

		comparisons = append(comparisons, CaptureFrameComparison{
			Index:                  i,
			Matches:                matches,
			BytesMatch:             bytesMatch,
			SemanticMatches:        semanticMatches,
			SemanticFirstDiffField: diffField,
			OfficialLen:            len(a),
			NeoLen:                 len(b),
			FirstDiffOffset:        firstDiffOffset(a, b),
		})
	}

	return CaptureRunReport{
		RunID:            runID,
		ComparisonMode:   mode.String(),
		TotalPairs:       n,
		MatchedPairs:     matched,
		MismatchedPairs:  n - matched,
		OfficialOnly:     len(official) - n,
		NeoOnly:          len(neo) - n,
		FrameComparisons: comparisons,
	}
}

// CompareCaptureRun reads official_frames.hex and neo_frames.hex from
// runDir and compares them in Bytes mode.
func CompareCaptureRun(runDir, runID string) (CaptureRunReport, error) {
	return CompareCaptureRunWithMode(runDir, runID, Bytes)
}

// CompareCaptureRunWithMode reads official_frames.hex and neo_frames.hex
// from runDir and compares them under mode.
func CompareCaptureRunWithMode(runDir, runID string, mode ComparisonMode) (CaptureRunReport, error) {
	official, err := LoadHexLines(filepath.Join(runDir, "official_frames.hex"))
	if err != nil {
		return CaptureRunReport{}, err
	}
	neo, err := LoadHexLines(filepath.Join(runDir, "neo_frames.hex"))
	if err != nil {
		return CaptureRunReport{}, err
	}
	return CompareCaptureSequencesWithMode(runID, official, neo, mode), nil
}

// WriteReport serializes report as indented JSON to path.
func WriteReport(path string, report CaptureRunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func firstDiffOffset(a, b []byte) *int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			v := i
			return &v
		}
	}
	if len(a) != len(b) {
		v := n
		return &v
	}
	return nil
}

// canonicalForm is the intermediate JSON-shaped representation a frame is
// reduced to before semantic comparison, mirroring the original's
// serde_json::Value canonicalization.
type canonicalForm struct {
	DecodeError string  `json:"decode_error,omitempty"`
	FrameMD5    string  `json:"frame_md5,omitempty"`
	Code        *uint32 `json:"code,omitempty"`
	Known       *bool   `json:"known,omitempty"`
	Decoded     any     `json:"decoded,omitempty"`
	PayloadLen  *int    `json:"payload_len,omitempty"`
	PayloadMD5  string  `json:"payload_md5,omitempty"`
}

func canonicalize(raw []byte) canonicalForm {
	f, err := wire.Decode(raw)
	if err != nil {
		return canonicalForm{DecodeError: err.Error(), FrameMD5: md5Hex(raw)}
	}

	msg, err := proto.DecodeMessage(f.Code, f.Payload)
	if err != nil {
		var unsupported *proto.UnsupportedCodeError
		if errors.As(err, &unsupported) {
			code := f.Code
			known := false
			ln := len(f.Payload)
			return canonicalForm{Code: &code, Known: &known, PayloadLen: &ln, PayloadMD5: md5Hex(f.Payload)}
		}
		return canonicalForm{DecodeError: err.Error(), FrameMD5: md5Hex(raw)}
	}

	code := f.Code
	known := true
	var decoded any
	if msg.Server != nil {
		decoded = msg.Server
	} else {
		decoded = msg.Peer
	}
	return canonicalForm{Code: &code, Known: &known, Decoded: decoded}
}

// semanticCompare canonicalizes both sides and reports whether they are
// structurally equal, along with the dotted field path of the first
// divergence when they are not.
func semanticCompare(a, b []byte) (bool, *string) {
	ca := canonicalize(a)
	cb := canonicalize(b)

	if ca.DecodeError != "" || cb.DecodeError != "" {
		if ca.DecodeError == cb.DecodeError && ca.FrameMD5 == cb.FrameMD5 {
			return true, nil
		}
		field := "semantic.decode_error"
		return false, &field
	}

	va, err := toJSONValue(ca)
	if err != nil {
		field := "semantic"
		return false, &field
	}
	vb, err := toJSONValue(cb)
	if err != nil {
		field := "semantic"
		return false, &field
	}

	diff := firstSemanticDiff("semantic", va, vb)
	return diff == nil, diff
}

func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// firstSemanticDiff recursively walks two decoded JSON values, returning
// the dotted path of the first divergence, or nil if they are equal. List
// length mismatches are reported with a ".len" suffix.
func firstSemanticDiff(path string, a, b any) *string {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			p := path
			return &p
		}
		for _, k := range unionKeys(av, bv) {
			childPath := path + "." + k
			aChild, aok := av[k]
			bChild, bok := bv[k]
			if aok != bok {
				p := childPath
				return &p
			}
			if d := firstSemanticDiff(childPath, aChild, bChild); d != nil {
				return d
			}
		}
		return nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			p := path + ".len"
			return &p
		}
		for i := range av {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			if d := firstSemanticDiff(childPath, av[i], bv[i]); d != nil {
				return d
			}
		}
		return nil
	default:
		if !reflect.DeepEqual(a, b) {
			p := path
			return &p
		}
		return nil
	}
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
