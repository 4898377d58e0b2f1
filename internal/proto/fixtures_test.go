package proto

import (
	"encoding/hex"
	"testing"

	"github.com/soulgo/soulgo/internal/wire"
)

// These hex strings are reproduced from the protocol's reference fixtures
// byte-for-byte; they pin the field order and framing this package must
// produce.
const (
	loginFixtureHex      = "390000000100000005000000616c6963652000000030313233343536373839616263646566303132333435363738396162636465669d00000013000000"
	fileSearchFixtureHex = "160000001a000000393000000a0000006170686578207477696e"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	return b
}

func TestLoginFixture_ByteExact(t *testing.T) {
	// The fixture carries the MD5 hash directly in PasswordMD5, so the
	// message is constructed rather than routed through BuildLoginRequest
	// (which hashes a plaintext password).
	msg := Login{
		Username:      "alice",
		PasswordMD5:   "0123456789abcdef0123456789abcdef",
		ClientVersion: 157,
		MinorVersion:  19,
	}

	code, payload, err := EncodeServerMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f := wire.New(code, payload)
	got := f.Encode()
	want := mustDecodeHex(t, loginFixtureHex)
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("login fixture mismatch:\n got  %x\n want %x", got, want)
	}

	decodedFrame, err := wire.Decode(want)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	decoded, err := DecodeServerMessage(decodedFrame.Code, decodedFrame.Payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if decoded != ServerMessage(msg) {
		t.Fatalf("decoded login mismatch: got %+v want %+v", decoded, msg)
	}
}

func TestFileSearchFixture_ByteExact(t *testing.T) {
	msg := BuildFileSearchRequest(12345, "aphex twin")

	code, payload, err := EncodeServerMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f := wire.New(code, payload)
	got := f.Encode()
	want := mustDecodeHex(t, fileSearchFixtureHex)
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("file search fixture mismatch:\n got  %x\n want %x", got, want)
	}
}

func TestTransferResponseRoundTrip(t *testing.T) {
	msg := BuildTransferResponse(555, true, "")

	code, payload, err := EncodePeerMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ParseTransferResponse(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if decoded != msg {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, msg)
	}
	if code != CodeTransferResponse {
		t.Fatalf("code = %d, want %d", code, CodeTransferResponse)
	}
}
