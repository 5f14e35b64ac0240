package scheme

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ipcbridge/runtime/internal/cryptoutil"
	"github.com/ipcbridge/runtime/internal/httpmsg"
	"github.com/ipcbridge/runtime/internal/ipcerr"
	"github.com/ipcbridge/runtime/internal/jsonvalue"
)

// Event is one Server-Sent Event written through a Response.
type Event struct {
	Name string
	Data string
}

// Str renders the event in SSE wire format.
func (e Event) Str() string {
	if e.Name == "" {
		return fmt.Sprintf("data: %s\n\n", e.Data)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Name, e.Data)
}

// Count returns the byte length of the rendered event.
func (e Event) Count() int {
	return len(e.Str())
}

// ErrAlreadyFinalized is returned by WriteHead, Write, Finish or Fail
// once the Response has already finished or failed.
var ErrAlreadyFinalized = errors.New("scheme: request already finalized")

// Response answers one Request: a status/header preamble (WriteHead),
// zero or more Write calls, and exactly one terminal call — Finish,
// Fail, or the request's own cancellation — after which the entry is
// retired from SchemeHandlers.activeRequests (spec.md §8 Property 8).
type Response struct {
	Request    *Request
	ID         uint64
	StatusCode int
	Headers    httpmsg.Headers

	mu          sync.Mutex
	buffers     [][]byte
	headWritten atomic.Bool
	started     atomic.Bool
	finished    atomic.Bool
	handlers *SchemeHandlers
}

func newResponse(request *Request, handlers *SchemeHandlers) *Response {
	return &Response{
		Request:    request,
		ID:         cryptoutil.Rand64(),
		StatusCode: 200,
		handlers:   handlers,
	}
}

// SetHeader sets a response header.
func (r *Response) SetHeader(name, value string) {
	r.Headers.Set(name, value)
}

// GetHeader returns a response header's value, or "" if absent.
func (r *Response) GetHeader(name string) string {
	v, _ := r.Headers.Get(name)
	return v
}

// HasHeader reports whether name is present.
func (r *Response) HasHeader(name string) bool {
	return r.Headers.Has(name)
}

// WriteHead sets the status code and headers for the response. It
// must be called before Write/Finish, and only once.
func (r *Response) WriteHead(statusCode int, headers httpmsg.Headers) error {
	if r.finished.Load() {
		return ErrAlreadyFinalized
	}
	if r.started.Load() {
		return ipcerr.New(ipcerr.KindResponseState, "writeHead called after the body write has started")
	}
	if !r.headWritten.CompareAndSwap(false, true) {
		return ipcerr.New(ipcerr.KindResponseState, "writeHead called more than once")
	}
	if statusCode != 0 {
		r.StatusCode = statusCode
	}
	for _, h := range headers.Entries() {
		r.Headers.Set(h.Name, h.Value)
	}
	return nil
}

// Write appends a chunk of body bytes, buffered until Finish.
func (r *Response) Write(data []byte) error {
	if r.finished.Load() {
		return ErrAlreadyFinalized
	}
	r.started.Store(true)
	r.mu.Lock()
	r.buffers = append(r.buffers, append([]byte(nil), data...))
	r.mu.Unlock()
	return nil
}

// WriteJSON serializes value and writes it as a single chunk.
func (r *Response) WriteJSON(value jsonvalue.Any) error {
	text, err := jsonvalue.Serialize(value)
	if err != nil {
		return err
	}
	return r.Write([]byte(text))
}

// WriteEvent writes one SSE event as a chunk.
func (r *Response) WriteEvent(event Event) error {
	return r.Write([]byte(event.Str()))
}

// Data returns the response body accumulated so far via Write.
func (r *Response) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []byte
	for _, b := range r.buffers {
		out = append(out, b...)
	}
	return out
}

// Finish is the success terminal call: it finalizes the underlying
// Request and runs its Finish callback. Calling it more than once, or
// after Fail, returns ErrAlreadyFinalized and is a no-op.
func (r *Response) Finish() error {
	if !r.finished.CompareAndSwap(false, true) {
		return ErrAlreadyFinalized
	}
	r.Request.Finalize()
	if r.handlers != nil {
		r.handlers.retire(r.Request.ID)
	}
	if r.Request.Callbacks.Finish != nil {
		r.Request.Callbacks.Finish()
	}
	return nil
}

// Fail is the error terminal call: it finalizes the underlying
// Request and runs its Fail callback with reason.
func (r *Response) Fail(reason error) error {
	if !r.finished.CompareAndSwap(false, true) {
		return ErrAlreadyFinalized
	}
	r.Request.Finalize()
	if r.handlers != nil {
		r.handlers.retire(r.Request.ID)
	}
	if r.Request.Callbacks.Fail != nil {
		r.Request.Callbacks.Fail(reason)
	}
	return nil
}

// Redirect is a convenience terminal call equivalent to WriteHead with
// a Location header followed by Finish.
func (r *Response) Redirect(location string, statusCode int) error {
	if statusCode == 0 {
		statusCode = 302
	}
	if err := r.WriteHead(statusCode, httpmsg.Headers{}); err != nil {
		return err
	}
	r.SetHeader("location", location)
	return r.Finish()
}
