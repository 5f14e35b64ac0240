// Package router implements spec.md §4.10's Router: a name->handler
// table with preserved (built-in) and public tiers, per-name and
// wildcard listeners, and an async/sync Dispatcher for invocation.
package router

import (
	"context"
	"strings"
	"sync"

	"github.com/ipcbridge/runtime/internal/bytes"
	"github.com/ipcbridge/runtime/internal/cryptoutil"
	"github.com/ipcbridge/runtime/internal/ipc"
)

// MessageCallback handles one invocation. It must call reply exactly
// once, synchronously or later, with the Result to send back.
type MessageCallback func(message ipc.Message, router *Router, reply func(ipc.Result))

// ResultCallback receives the final Result for an invocation that
// did not route through reply-fire-and-forget (seq == "-1").
type ResultCallback func(ipc.Result)

// Sender is the subset of the Bridge facade the Router needs to
// deliver fire-and-forget results (seq == "-1") on its own.
type Sender interface {
	Active() bool
	Send(seq string, body string)
}

type routeEntry struct {
	async    bool
	callback MessageCallback
}

type listenerEntry struct {
	token    uint64
	callback MessageCallback
}

// Router owns the route table and listener registry for one Bridge.
// All table/listener access is guarded by a single mutex, matching
// spec.md §5's concurrency model.
type Router struct {
	mu         sync.Mutex
	table      map[string]routeEntry
	preserved  map[string]routeEntry
	listeners  map[string][]listenerEntry
	dispatcher *Dispatcher
	sender     Sender
}

// New returns a Router bound to sender and dispatcher. Call
// PreserveCurrentTable once initial routes (e.g. built-ins) have been
// mapped, before accepting runtime Map calls, to lock them into the
// preserved tier (spec.md: "unmap doesn't remove preserved routes").
func New(sender Sender, dispatcher *Dispatcher) *Router {
	return &Router{
		table:      make(map[string]routeEntry),
		preserved:  make(map[string]routeEntry),
		listeners:  make(map[string][]listenerEntry),
		dispatcher: dispatcher,
		sender:     sender,
	}
}

// PreserveCurrentTable copies the current table into the preserved
// tier, which Unmap can never remove from.
func (r *Router) PreserveCurrentTable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preserved = make(map[string]routeEntry, len(r.table))
	for k, v := range r.table {
		r.preserved[k] = v
	}
}

// Map registers callback for name in the public tier, asynchronously
// by default.
func (r *Router) Map(name string, callback MessageCallback) {
	r.MapAsync(name, true, callback)
}

// MapAsync registers callback for name in the public tier with an
// explicit async flag. A nil callback is a no-op.
func (r *Router) MapAsync(name string, async bool, callback MessageCallback) {
	if callback == nil {
		return
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[key] = routeEntry{async: async, callback: callback}
}

// Unmap removes name from the public tier only; entries copied into
// the preserved tier by PreserveCurrentTable survive.
func (r *Router) Unmap(name string) {
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.table, key)
}

// Listen registers callback to observe every invocation of name (or
// every invocation, for name == "*"), returning a token for Unlisten.
func (r *Router) Listen(name string, callback MessageCallback) uint64 {
	key := strings.ToLower(name)
	token := cryptoutil.Rand64()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[key] = append(r.listeners[key], listenerEntry{token: token, callback: callback})
	return token
}

// Unlisten removes the listener registered under name with the given
// token, reporting whether one was found.
func (r *Router) Unlisten(name string, token uint64) bool {
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.listeners[key]
	if !ok {
		return false
	}
	for i, l := range list {
		if l.token == token {
			r.listeners[key] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// lookup resolves name to a routeEntry, preferring the preserved tier
// (spec.md: preserved routes win over anything the public tier later
// maps under the same name).
func (r *Router) lookup(name string) (routeEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx, ok := r.preserved[name]; ok {
		return ctx, true
	}
	if ctx, ok := r.table[name]; ok {
		return ctx, true
	}
	return routeEntry{}, false
}

func (r *Router) fireListeners(name string, message ipc.Message) {
	r.mu.Lock()
	named := append([]listenerEntry(nil), r.listeners[name]...)
	wildcard := append([]listenerEntry(nil), r.listeners["*"]...)
	r.mu.Unlock()

	noop := func(ipc.Result) {}
	for _, l := range named {
		l.callback(message, r, noop)
	}
	for _, l := range wildcard {
		l.callback(message, r, noop)
	}
}

// InvokeURI parses uri as an IPC message and invokes it, delivering
// the final Result through the Bridge's Sender.
func (r *Router) InvokeURI(ctx context.Context, uri string, body []byte) bool {
	return r.InvokeURIWithCallback(ctx, uri, body, func(result ipc.Result) {
		r.sender.Send(result.Seq, result.Str())
	})
}

// InvokeURIWithCallback parses uri and invokes it, routing the
// terminal Result through callback instead of the Sender.
func (r *Router) InvokeURIWithCallback(ctx context.Context, uri string, body []byte, callback ResultCallback) bool {
	if !r.sender.Active() {
		return false
	}
	message, err := ipc.ParseMessage(uri, true)
	if err != nil {
		return false
	}
	return r.Invoke(ctx, message, body, callback)
}

// Invoke dispatches message to its registered handler, firing named
// and wildcard listeners first. It returns false if the Bridge is
// inactive, no handler is registered, or the handler is nil.
func (r *Router) Invoke(ctx context.Context, message ipc.Message, body []byte, callback ResultCallback) bool {
	if !r.sender.Active() {
		return false
	}

	name := strings.ToLower(message.Name)
	entry, ok := r.lookup(name)
	if !ok || entry.callback == nil {
		return false
	}

	incoming := message
	if len(body) > 0 {
		incoming.Buffer = bytes.FromBytes(body)
	}

	r.fireListeners(name, incoming)

	reply := func(result ipc.Result) {
		if result.Seq == "-1" {
			r.sender.Send(result.Seq, result.Str())
			return
		}
		callback(result)
	}

	if entry.async {
		_ = r.dispatcher.Dispatch(ctx, func() {
			entry.callback(incoming, r, reply)
		})
		return true
	}

	entry.callback(incoming, r, reply)
	return true
}
