package bytes

import "testing"

func TestBufferQueuePushGrows(t *testing.T) {
	q := NewBufferQueue()
	if !q.Push([]byte("abc")) {
		t.Fatal("expected push to succeed")
	}
	if !q.Push([]byte("def")) {
		t.Fatal("expected second push to succeed")
	}
	if string(q.Bytes()) != "abcdef" {
		t.Fatalf("got %q, want abcdef", q.Bytes())
	}
}

func TestBufferQueueFixedOverflow(t *testing.T) {
	q := NewFixedBufferQueue(4)
	if !q.Push([]byte("ab")) {
		t.Fatal("expected push within capacity to succeed")
	}
	if q.Push([]byte("abc")) {
		t.Fatal("expected push exceeding capacity to fail")
	}
	if string(q.Bytes()) != "ab" {
		t.Fatalf("failed push must not mutate queue, got %q", q.Bytes())
	}
}

func TestBufferQueueReset(t *testing.T) {
	q := NewBufferQueue()
	q.Push([]byte("hello"))
	q.Reset()
	if q.Size() != 0 {
		t.Fatalf("Size() after Reset = %d, want 0", q.Size())
	}
	if !q.Push([]byte("again")) {
		t.Fatal("expected push after reset to succeed")
	}
	if string(q.Bytes()) != "again" {
		t.Fatalf("got %q, want again", q.Bytes())
	}
}
