package wire

import "testing"

func TestWriterReader_RoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(12345)
	w.WriteString("aphex twin")
	w.WriteU64(123456789)
	w.WriteBoolU32(true)
	w.WriteString("")

	r := NewReader(w.Bytes())
	if v, err := r.ReadU32(); err != nil || v != 12345 {
		t.Fatalf("ReadU32 = %d, %v", v, err)
	}
	if s, err := r.ReadString(); err != nil || s != "aphex twin" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if v, err := r.ReadU64(); err != nil || v != 123456789 {
		t.Fatalf("ReadU64 = %d, %v", v, err)
	}
	if v, err := r.ReadBoolU32(); err != nil || !v {
		t.Fatalf("ReadBoolU32 = %v, %v", v, err)
	}
	if s, err := r.ReadString(); err != nil || s != "" {
		t.Fatalf("ReadString (empty) = %q, %v", s, err)
	}
	if err := r.EnsureConsumed(); err != nil {
		t.Fatalf("EnsureConsumed: %v", err)
	}
}

func TestReader_NotEnough(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadU32(); err == nil {
		t.Fatal("expected NotEnoughError")
	}
}

func TestReader_TrailingBytes(t *testing.T) {
	w := NewWriter()
	w.WriteU32(1)
	w.WriteU32(2) // one extra field nobody consumes below

	r := NewReader(w.Bytes())
	if _, err := r.ReadU32(); err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if err := r.EnsureConsumed(); err == nil {
		t.Fatal("expected TrailingBytesError")
	}
}

func TestReader_BoolU32_NonCanonicalValueNormalizesTrue(t *testing.T) {
	w := NewWriter()
	w.WriteU32(2) // non-canonical truthy value
	r := NewReader(w.Bytes())
	v, err := r.ReadBoolU32()
	if err != nil || !v {
		t.Fatalf("ReadBoolU32 = %v, %v", v, err)
	}

	// Re-encoding must normalize to canonical 1.
	out := NewWriter()
	out.WriteBoolU32(v)
	if out.Bytes()[0] != 1 {
		t.Fatalf("re-encoded bool_u32 byte = %d, want 1", out.Bytes()[0])
	}
}

func TestReader_LossyUTF8(t *testing.T) {
	w := NewWriter()
	w.WriteU32(3)
	w.buf = append(w.buf, 0xff, 0xfe, 'a')

	r := NewReader(w.Bytes())
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if len(s) == 0 {
		t.Fatal("expected non-empty lossy string")
	}
}
