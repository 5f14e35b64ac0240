package bytes

import "testing"

func TestBufferSlicing(t *testing.T) {
	b := FromString("hello world")
	for i := 0; i <= b.Size(); i++ {
		for j := i; j <= b.Size(); j++ {
			sliced, err := b.Slice(i, j)
			if err != nil {
				t.Fatalf("slice(%d,%d): %v", i, j, err)
			}
			if sliced.Size() != j-i {
				t.Fatalf("slice(%d,%d) size = %d, want %d", i, j, sliced.Size(), j-i)
			}
			if string(sliced.Bytes()) != "hello world"[i:j] {
				t.Fatalf("slice(%d,%d) = %q, want %q", i, j, sliced.Bytes(), "hello world"[i:j])
			}
		}
	}
}

func TestBufferSliceOutOfRange(t *testing.T) {
	b := FromString("abc")
	if _, err := b.Slice(0, 10); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := b.Slice(2, 1); err == nil {
		t.Fatal("expected error when start > end")
	}
}

func TestBufferConcatEmpty(t *testing.T) {
	out := Concat(nil)
	if out.Size() != 0 {
		t.Fatalf("Concat(nil).Size() = %d, want 0", out.Size())
	}
}

func TestBufferCompare(t *testing.T) {
	a := FromString("aaa")
	b := FromString("aab")
	if Compare(a, b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if !Equal(a, FromString("aaa")) {
		t.Fatal("expected equal buffers to compare equal")
	}
}

func TestBufferEncodings(t *testing.T) {
	b := FromBytes([]byte{0xde, 0xad, 0xbe, 0xef})
	if got := b.Str(EncodingHex); got != "DEADBEEF" {
		t.Fatalf("hex = %q, want DEADBEEF", got)
	}
	roundTrip, err := DecodeHex(b.Str(EncodingHex))
	if err != nil || string(roundTrip) != string(b.Bytes()) {
		t.Fatalf("hex round trip failed: %v", err)
	}

	b64 := b.Str(EncodingBase64)
	decoded, err := DecodeBase64(b64)
	if err != nil || string(decoded) != string(b.Bytes()) {
		t.Fatalf("base64 round trip failed: %v", err)
	}
}

func TestBufferSharedMutation(t *testing.T) {
	ab := NewArrayBuffer(4)
	view1 := FromArrayBuffer(ab)
	view2 := FromArrayBuffer(ab)
	ab.Data()[0] = 0x42
	if view1.Bytes()[0] != 0x42 || view2.Bytes()[0] != 0x42 {
		t.Fatal("expected mutation through one view visible to all views")
	}
}
