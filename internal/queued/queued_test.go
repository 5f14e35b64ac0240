package queued

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

func TestPutGetRemove(t *testing.T) {
	s := NewStore()
	id := s.Put(Response{Body: []byte("hello")})
	r, ok := s.Get(id)
	if !ok || string(r.Body) != "hello" {
		t.Fatalf("Get = %v, %v", r, ok)
	}
	if !s.Remove(id) {
		t.Fatal("Remove should report true for an existing entry")
	}
	if _, ok := s.Get(id); ok {
		t.Fatal("entry should be gone after Remove")
	}
}

func TestLazyExpiry(t *testing.T) {
	s := NewStore()
	id := s.Put(Response{Body: []byte("x"), TTL: time.Millisecond})
	time.Sleep(5 * time.Millisecond)
	if _, ok := s.Get(id); ok {
		t.Fatal("expired entry should not be returned")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after lazy expiry sweep on Get", s.Len())
	}
}

func TestCancelStopsEventStreamWithinOneEvent(t *testing.T) {
	s := NewStore()
	var calls []bool
	cb := func(name string, data []byte, finished bool) bool {
		calls = append(calls, finished)
		return true
	}
	id := s.Put(Response{EventStream: cb})

	if !s.Cancel(id) {
		t.Fatal("Cancel should report true for a live streaming entry")
	}
	if len(calls) != 1 || calls[0] != true {
		t.Fatalf("expected exactly one finished=true callback, got %v", calls)
	}
	if _, ok := s.Get(id); ok {
		t.Fatal("cancelled entry must be removed from the store")
	}
}

func TestAttachRebindsStreamingCallback(t *testing.T) {
	s := NewStore()
	id := s.Put(Response{EventStream: func(string, []byte, bool) bool { return true }})

	var got []string
	_, ok := s.Attach(id, func(name string, data []byte, finished bool) bool {
		if finished {
			got = append(got, "finished")
			return true
		}
		got = append(got, name+":"+string(data))
		return true
	}, nil)
	if !ok {
		t.Fatal("Attach should succeed for a live streaming entry")
	}

	r, ok := s.Get(id)
	if !ok {
		t.Fatal("Get after Attach should still find the entry")
	}
	r.EventStream("tick", []byte("1"), false)
	r.EventStream("tick", []byte("2"), false)
	r.EventStream("", nil, true)

	want := []string{"tick:1", "tick:2", "finished"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAttachFailsForNonStreamingEntry(t *testing.T) {
	s := NewStore()
	id := s.Put(Response{Body: []byte("static")})
	if _, ok := s.Attach(id, func(string, []byte, bool) bool { return true }, nil); ok {
		t.Fatal("Attach should refuse a non-streaming entry")
	}
}

func TestCancelUnknownID(t *testing.T) {
	s := NewStore()
	if s.Cancel(12345) {
		t.Fatal("Cancel on an unknown id should report false")
	}
}

func TestCompressBodyGzipRoundTrips(t *testing.T) {
	r := Response{Body: []byte("hello queued world")}
	if err := r.CompressBody("gzip"); err != nil {
		t.Fatalf("CompressBody: %v", err)
	}
	if enc, _ := r.Headers.Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", enc)
	}
	reader, err := gzip.NewReader(bytes.NewReader(r.Body))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	if string(got) != "hello queued world" {
		t.Fatalf("round-tripped body = %q", got)
	}
}

func TestCompressBodyBrotliRoundTrips(t *testing.T) {
	r := Response{Body: []byte("hello queued world")}
	if err := r.CompressBody("br"); err != nil {
		t.Fatalf("CompressBody: %v", err)
	}
	if enc, _ := r.Headers.Get("Content-Encoding"); enc != "br" {
		t.Fatalf("Content-Encoding = %q, want br", enc)
	}
	got, err := io.ReadAll(brotli.NewReader(bytes.NewReader(r.Body)))
	if err != nil {
		t.Fatalf("read brotli body: %v", err)
	}
	if string(got) != "hello queued world" {
		t.Fatalf("round-tripped body = %q", got)
	}
}

func TestCompressBodyRejectsUnknownEncoding(t *testing.T) {
	r := Response{Body: []byte("x")}
	if err := r.CompressBody("deflate"); err == nil {
		t.Fatal("expected an error for an unsupported encoding")
	}
}

func TestSweeperRemovesExpiredInBackground(t *testing.T) {
	s := NewStore()
	s.StartSweeper(time.Millisecond)
	defer s.Close()

	s.Put(Response{Body: []byte("x"), TTL: time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after background sweep", s.Len())
	}
}
