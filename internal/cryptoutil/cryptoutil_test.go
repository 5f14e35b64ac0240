package cryptoutil

import (
	"sort"
	"testing"
	"time"
)

func TestUUIDv7VersionAndVariant(t *testing.T) {
	id, err := UUIDv7()
	if err != nil {
		t.Fatalf("UUIDv7: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7() = %q, want 36 chars", id)
	}
	if id[14] != '7' {
		t.Errorf("version nibble = %q, want 7", id[14])
	}
	switch id[19] {
	case '8', '9', 'a', 'b':
	default:
		t.Errorf("variant nibble = %q, want one of 8/9/a/b", id[19])
	}
}

func TestSHA1EmptyString(t *testing.T) {
	want := "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709"
	if got := SHA1(nil); got != want {
		t.Errorf("SHA1(\"\") = %q, want %q", got, want)
	}
}

func TestSHA1KnownVector(t *testing.T) {
	want := "2FD4E1C67A2D28FCED849EE1BB76E7391B93EB12"
	if got := SHA1([]byte("The quick brown fox jumps over the lazy dog")); got != want {
		t.Errorf("SHA1 = %q, want %q", got, want)
	}
}

func TestRandIntZeroZero(t *testing.T) {
	if got := RandInt(0, 0); got != 0 {
		t.Errorf("RandInt(0,0) = %d, want 0", got)
	}
}

func TestRandIntRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := RandInt(5, 10)
		if v < 5 || v > 10 {
			t.Fatalf("RandInt(5,10) out of range: %d", v)
		}
	}
}

func TestUUIDv7LexicographicOrder(t *testing.T) {
	ids := make([]string, 5)
	for i := range ids {
		if i > 0 {
			// ordering is only by millisecond, so keep each id in its own one
			time.Sleep(2 * time.Millisecond)
		}
		id, err := UUIDv7()
		if err != nil {
			t.Fatalf("UUIDv7: %v", err)
		}
		ids[i] = id
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for i := range ids {
		if ids[i] != sorted[i] {
			t.Fatalf("UUIDv7s not generated in lexicographic order: %v", ids)
		}
	}
}
