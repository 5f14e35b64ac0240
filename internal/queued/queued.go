// Package queued implements spec.md §4.6's QueuedResponse store: a
// map of response bodies (or streaming callbacks) a scheme handler's
// follow-up request later retrieves by id.
package queued

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/ipcbridge/runtime/internal/cryptoutil"
	"github.com/ipcbridge/runtime/internal/httpmsg"
)

// ID identifies one queued response.
type ID = uint64

// EventStreamCallback sends one SSE event; it returns false when
// sending failed or the stream should stop. finished marks the final
// event of the stream.
type EventStreamCallback func(name string, data []byte, finished bool) bool

// ChunkStreamCallback sends one chunk of a chunked-transfer response,
// with the same finished/return-value contract as EventStreamCallback.
type ChunkStreamCallback func(chunk []byte, finished bool) bool

// Response is one entry in the store: either a static body or a
// streaming callback, never both (spec.md §4.6).
type Response struct {
	ID       ID
	TTL      time.Duration
	Body     []byte
	Headers  httpmsg.Headers
	WorkerID string

	EventStream EventStreamCallback
	ChunkStream ChunkStreamCallback

	expiresAt time.Time
}

// CompressBody replaces r.Body with its "br" (brotli) or "gzip"
// compressed form and sets the matching Content-Encoding header, for
// large static bodies a WebView will decompress on its own side.
func (r *Response) CompressBody(encoding string) error {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "br":
		w = brotli.NewWriter(&buf)
	case "gzip":
		w = gzip.NewWriter(&buf)
	default:
		return fmt.Errorf("queued: unsupported encoding %q", encoding)
	}
	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("queued: compress body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("queued: compress body: %w", err)
	}
	r.Body = buf.Bytes()
	r.Headers.Set("Content-Encoding", encoding)
	return nil
}

// IsStreaming reports whether the response is backed by a streaming
// callback rather than a static body.
func (r Response) IsStreaming() bool {
	return r.EventStream != nil || r.ChunkStream != nil
}

// Store holds queued responses keyed by ID, with lazy TTL expiry and
// an optional background sweep (spec.md §4.6, Open Question on sweep
// strategy: resolved as lazy-on-access plus an optional ticker).
type Store struct {
	mu        sync.Mutex
	responses map[ID]*Response
	ticker    *time.Ticker
	stop      chan struct{}
}

// NewStore returns an empty store. Call StartSweeper to additionally
// run a background expiry sweep.
func NewStore() *Store {
	return &Store{responses: make(map[ID]*Response)}
}

// StartSweeper begins a background goroutine that removes expired
// entries every interval, until Close is called. Calling it more than
// once is a no-op.
func (s *Store) StartSweeper(interval time.Duration) {
	s.mu.Lock()
	if s.ticker != nil {
		s.mu.Unlock()
		return
	}
	s.ticker = time.NewTicker(interval)
	s.stop = make(chan struct{})
	ticker, stop := s.ticker, s.stop
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-stop:
				return
			}
		}
	}()
}

// Close stops the background sweeper, if running.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.ticker = nil
	}
}

func (s *Store) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.responses {
		if !r.expiresAt.IsZero() && now.After(r.expiresAt) {
			delete(s.responses, id)
		}
	}
}

// Put stores r, assigning a random ID if r.ID is zero, and returns the
// effective ID.
func (s *Store) Put(r Response) ID {
	if r.ID == 0 {
		r.ID = cryptoutil.Rand64()
	}
	if r.TTL > 0 {
		r.expiresAt = time.Now().Add(r.TTL)
	}
	stored := r
	s.mu.Lock()
	s.responses[stored.ID] = &stored
	s.mu.Unlock()
	return stored.ID
}

// Get returns the entry for id, expiring it first if its TTL has
// elapsed. A lazily expired entry is removed and reported absent.
func (s *Store) Get(id ID) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[id]
	if !ok {
		return Response{}, false
	}
	if !r.expiresAt.IsZero() && time.Now().After(r.expiresAt) {
		delete(s.responses, id)
		return Response{}, false
	}
	return *r, true
}

// Remove deletes the entry for id, reporting whether it existed.
func (s *Store) Remove(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[id]; !ok {
		return false
	}
	delete(s.responses, id)
	return true
}

// Cancel stops a streaming entry's delivery by invoking its callback
// once with finished=true and an empty payload, then removing it from
// the store. It is the mechanism behind a cancelled follow-up request
// stopping an SSE/chunk stream within one event boundary.
func (s *Store) Cancel(id ID) bool {
	s.mu.Lock()
	r, ok := s.responses[id]
	if ok {
		delete(s.responses, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	switch {
	case r.EventStream != nil:
		r.EventStream("", nil, true)
	case r.ChunkStream != nil:
		r.ChunkStream(nil, true)
	}
	return true
}

// Attach rebinds the delivery callbacks of the streaming entry id to
// onEvent/onChunk, returning the entry's headers so the caller can
// still answer the follow-up request's WriteHead. It is how a
// follow-up scheme request becomes the live destination for a stream
// a handler queued before any request existed to carry it: whichever
// callback arrives here after Attach is what the WebView observes.
func (s *Store) Attach(id ID, onEvent EventStreamCallback, onChunk ChunkStreamCallback) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[id]
	if !ok || !r.IsStreaming() {
		return Response{}, false
	}
	if onEvent != nil {
		r.EventStream = onEvent
	}
	if onChunk != nil {
		r.ChunkStream = onChunk
	}
	return *r, true
}

// Len returns the number of entries currently stored, without
// performing an expiry sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}
