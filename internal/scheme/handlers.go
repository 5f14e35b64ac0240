package scheme

import (
	"strings"
	"sync"

	"github.com/ipcbridge/runtime/internal/httpmsg"
)

// Handler answers one Request by eventually calling done with a
// Response that has at least had WriteHead + Finish (or Fail) called
// on it.
type Handler func(request *Request, done func(*Response))

// Gate runs before a registered Handler and may refuse the request by
// returning an error; HandleRequest turns that refusal into a
// Response instead of reaching the Handler. Used by internal/authmw
// to veto requests missing a valid ipc-token, since Router listeners
// are observational and cannot themselves veto dispatch.
type Gate func(request *Request) error

// SchemeHandlers registers one Handler per custom URL scheme and
// tracks every in-flight Request by ID so cancellation and liveness
// checks can reach it (spec.md §4.9).
type SchemeHandlers struct {
	mu             sync.Mutex
	handlers       map[string]Handler
	activeRequests map[uint64]*Request
	active         func() bool
	gate           Gate
}

// New returns an empty SchemeHandlers. active reports whether the
// owning Bridge is still accepting requests; when it returns false,
// HandleRequest refuses new work.
func New(active func() bool) *SchemeHandlers {
	if active == nil {
		active = func() bool { return true }
	}
	return &SchemeHandlers{
		handlers:       make(map[string]Handler),
		activeRequests: make(map[uint64]*Request),
		active:         active,
	}
}

// RegisterSchemeHandler binds handler to scheme, refusing to replace
// an existing registration (reports false if scheme is already
// handled, or handler is nil).
func (s *SchemeHandlers) RegisterSchemeHandler(scheme string, handler Handler) bool {
	if handler == nil {
		return false
	}
	key := strings.ToLower(scheme)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[key]; ok {
		return false
	}
	s.handlers[key] = handler
	return true
}

// HasHandlerForScheme reports whether scheme has a registered Handler.
func (s *SchemeHandlers) HasHandlerForScheme(scheme string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handlers[strings.ToLower(scheme)]
	return ok
}

// GetHandlerForScheme returns the Handler for scheme, if any.
func (s *SchemeHandlers) GetHandlerForScheme(scheme string) (Handler, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handlers[strings.ToLower(scheme)]
	return h, ok
}

// SetGate installs a Gate evaluated before every Handler invocation.
// A nil gate (the default) admits every request.
func (s *SchemeHandlers) SetGate(gate Gate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

// HandleRequest looks up request's scheme handler and runs it,
// tracking request in activeRequests until a terminal Response call
// retires it. It returns false if the Bridge is inactive or no
// handler is registered for the request's scheme. If a Gate is
// installed and refuses the request, HandleRequest synthesizes a 401
// Response carrying the Gate's error instead of invoking the Handler.
func (s *SchemeHandlers) HandleRequest(request *Request, callback func(*Response)) bool {
	if !s.active() {
		return false
	}
	handler, ok := s.GetHandlerForScheme(request.Scheme)
	if !ok {
		return false
	}

	s.mu.Lock()
	gate := s.gate
	s.activeRequests[request.ID] = request
	s.mu.Unlock()

	if gate != nil {
		if err := gate(request); err != nil {
			resp := s.NewResponse(request)
			resp.WriteHead(401, httpmsg.Headers{})
			resp.Write([]byte(err.Error()))
			resp.Finish()
			if callback != nil {
				callback(resp)
			}
			return true
		}
	}

	handler(request, func(r *Response) {
		if callback != nil {
			callback(r)
		}
	})
	return true
}

// retire removes id from activeRequests. Called by Response's
// terminal methods.
func (s *SchemeHandlers) retire(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeRequests, id)
}

// IsRequestActive reports whether id is currently tracked.
func (s *SchemeHandlers) IsRequestActive(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.activeRequests[id]
	return ok
}

// IsRequestCancelled reports whether the tracked request for id has
// been cancelled; an unknown id is reported as not cancelled.
func (s *SchemeHandlers) IsRequestCancelled(id uint64) bool {
	s.mu.Lock()
	req, ok := s.activeRequests[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return req.IsCancelled()
}

// CancelRequest retires a tracked request, marks it cancelled and
// finalized, then invokes its RequestCallbacks.Cancel hook if set.
func (s *SchemeHandlers) CancelRequest(id uint64) bool {
	s.mu.Lock()
	req, ok := s.activeRequests[id]
	if ok {
		delete(s.activeRequests, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	req.markCancelled()
	req.Finalize()
	if req.Callbacks.Cancel != nil {
		req.Callbacks.Cancel()
	}
	return true
}

// ActiveCount returns the number of requests currently tracked.
func (s *SchemeHandlers) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeRequests)
}

// NewResponse constructs a Response bound to request and this
// SchemeHandlers, for handlers that build their own Response instead
// of relying on HandleRequest's callback wiring.
func (s *SchemeHandlers) NewResponse(request *Request) *Response {
	return newResponse(request, s)
}
