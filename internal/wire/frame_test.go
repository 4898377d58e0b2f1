package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame_EncodeDecodeRoundTrip(t *testing.T) {
	f := New(26, []byte("aphex twin"))
	enc := f.Encode()
	if len(enc) != 8+len(f.Payload) {
		t.Fatalf("encoded length = %d, want %d", len(enc), 8+len(f.Payload))
	}
	out, err := Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != f.Code || !bytes.Equal(out.Payload, f.Payload) {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestDecode_ShortFrame(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
}

func TestDecode_LengthMismatch(t *testing.T) {
	f := New(1, []byte("x"))
	enc := f.Encode()
	enc = append(enc, 0xFF) // trailing garbage byte
	_, err := Decode(enc)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestSplitFirstFrame_NeedMore(t *testing.T) {
	f := New(1, []byte("hello"))
	enc := f.Encode()
	_, n, ok, err := SplitFirstFrame(enc[:len(enc)-1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || n != 0 {
		t.Fatalf("expected need-more sentinel, got ok=%v n=%d", ok, n)
	}
}

func TestSplitFirstFrame_Sequence(t *testing.T) {
	frames := []Frame{
		New(1, []byte("alpha")),
		New(2, nil),
		New(26, []byte("search text")),
	}
	var buf []byte
	for _, f := range frames {
		buf = append(buf, f.Encode()...)
	}

	var got []Frame
	offset := 0
	for offset < len(buf) {
		f, n, ok, err := SplitFirstFrame(buf[offset:])
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		if !ok {
			t.Fatalf("unexpected need-more at offset %d", offset)
		}
		got = append(got, f)
		offset += n
	}

	if len(got) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(got), len(frames))
	}
	for i := range frames {
		if got[i].Code != frames[i].Code || !bytes.Equal(got[i].Payload, frames[i].Payload) {
			t.Fatalf("frame %d mismatch: got %+v want %+v", i, got[i], frames[i])
		}
	}
}

func TestFrame_EmptyPayload(t *testing.T) {
	f := New(2, nil)
	enc := f.Encode()
	out, err := Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Payload) != 0 {
		t.Fatalf("expected empty payload, got %v", out.Payload)
	}
}
