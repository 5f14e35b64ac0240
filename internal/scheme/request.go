// Package scheme implements spec.md §4.9's SchemeHandlers: a
// platform-agnostic Request/Response state machine that lets native
// code answer a WebView's requests for custom URL schemes.
package scheme

import (
	"fmt"
	"sync/atomic"

	"github.com/ipcbridge/runtime/internal/bytes"
	"github.com/ipcbridge/runtime/internal/cryptoutil"
	"github.com/ipcbridge/runtime/internal/httpmsg"
)

// RequestCallbacks are host-supplied hooks a Request can invoke:
// Cancel when the WebView aborts the load, Finish on success, Fail on
// error. A handler is never required to use more than one of these in
// its own lifetime per request (spec.md §4.9's "exactly one terminal
// call" invariant) — SchemeHandlers enforces that at the Response
// level.
type RequestCallbacks struct {
	Cancel func()
	Finish func()
	Fail   func(error)
}

// RequestOptions seeds a new Request's static fields.
type RequestOptions struct {
	Scheme      string
	Method      string
	Hostname    string
	Pathname    string
	Query       string
	Fragment    string
	Headers     httpmsg.Headers
	IsCancelled func() bool
}

// Request is one inbound scheme request. It is always constructed
// through Builder or NewRequest and is safe to read concurrently; its
// only mutable state is the finalized/cancelled flags.
type Request struct {
	ID          uint64
	Scheme      string
	Method      string
	Hostname    string
	Pathname    string
	Query       string
	Fragment    string
	Headers     httpmsg.Headers
	Origin      string
	Params      map[string]string
	Body        bytes.Buffer
	Client      string
	OriginalURL string
	Callbacks   RequestCallbacks

	isCancelledFn func() bool
	finalized     atomic.Bool
	cancelled     atomic.Bool
}

// NewRequest builds a Request from options, defaulting Method to GET
// and Pathname to "/" the way the reference Options struct does.
func NewRequest(options RequestOptions) *Request {
	method := options.Method
	if method == "" {
		method = "GET"
	}
	pathname := options.Pathname
	if pathname == "" {
		pathname = "/"
	}
	return &Request{
		ID:            cryptoutil.Rand64(),
		Scheme:        options.Scheme,
		Method:        method,
		Hostname:      options.Hostname,
		Pathname:      pathname,
		Query:         options.Query,
		Fragment:      options.Fragment,
		Headers:       options.Headers,
		Params:        map[string]string{},
		isCancelledFn: options.IsCancelled,
	}
}

// GetHeader returns a request header's value, or "" if absent.
func (r *Request) GetHeader(name string) string {
	v, _ := r.Headers.Get(name)
	return v
}

// HasHeader reports whether name is present.
func (r *Request) HasHeader(name string) bool {
	return r.Headers.Has(name)
}

// URL reconstructs the request's absolute URL string.
func (r *Request) URL() string {
	u := r.Scheme + "://" + r.Hostname + r.Pathname
	if r.Query != "" {
		u += "?" + r.Query
	}
	if r.Fragment != "" {
		u += "#" + r.Fragment
	}
	return u
}

// Str renders the request as an HTTP-style request line + headers.
func (r *Request) Str() string {
	return fmt.Sprintf("%s %s\r\n%s", r.Method, r.URL(), r.Headers.Str())
}

// Finalize marks the request as handled and reports whether this call
// was the one that did so (false if already finalized).
func (r *Request) Finalize() bool {
	return r.finalized.CompareAndSwap(false, true)
}

// IsActive reports whether the request has not yet been finalized.
func (r *Request) IsActive() bool {
	return !r.finalized.Load()
}

// IsCancelled reports cancellation: either the host-provided
// isCancelled hook fired, or Cancel was already observed.
func (r *Request) IsCancelled() bool {
	if r.cancelled.Load() {
		return true
	}
	if r.isCancelledFn != nil && r.isCancelledFn() {
		r.cancelled.Store(true)
		return true
	}
	return false
}

// markCancelled flips the cancelled flag, used by SchemeHandlers when
// a follow-up cancellation arrives out of band.
func (r *Request) markCancelled() {
	r.cancelled.Store(true)
}
