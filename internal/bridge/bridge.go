// Package bridge implements spec.md §5's Bridge facade: the object a
// native host constructs once per WebView client, owning a Router, a
// SchemeHandlers, a QueuedResponse store, and the client's identity.
package bridge

import (
	"context"
	"sync/atomic"

	"github.com/ipcbridge/runtime/internal/jsonvalue"
	"github.com/ipcbridge/runtime/internal/queued"
	"github.com/ipcbridge/runtime/internal/router"
	"github.com/ipcbridge/runtime/internal/scheme"
)

// SendFunc delivers a Result's serialized body back to the WebView
// for the given seq. The host wires this to its actual transport
// (evaluate-JavaScript call, postMessage, etc.).
type SendFunc func(seq string, body string)

// EmitFunc delivers an out-of-band event (not tied to any request
// seq) to the WebView.
type EmitFunc func(event string, data jsonvalue.Any)

// Bridge is the facade one WebView client's native-to-JS plumbing is
// built around.
type Bridge struct {
	clientID string
	active   atomic.Bool

	router          *router.Router
	dispatcher      *router.Dispatcher
	schemeHandlers  *scheme.SchemeHandlers
	queuedResponses *queued.Store

	send SendFunc
	emit EmitFunc
}

// New constructs a Bridge for clientID. The Bridge starts active;
// call SetActive(false) when the owning WebView is torn down so
// in-flight Router/SchemeHandlers work stops accepting new requests.
func New(clientID string) *Bridge {
	b := &Bridge{
		clientID:        clientID,
		dispatcher:      router.NewDispatcher(0),
		queuedResponses: queued.NewStore(),
	}
	b.active.Store(true)
	b.router = router.New(b, b.dispatcher)
	b.schemeHandlers = scheme.New(b.Active)
	return b
}

// ClientID returns this Bridge's client identity.
func (b *Bridge) ClientID() string { return b.clientID }

// Active reports whether the Bridge is still accepting new work. It
// also implements router.Sender and is passed as SchemeHandlers' own
// active check.
func (b *Bridge) Active() bool { return b.active.Load() }

// SetActive toggles whether the Bridge accepts new Router invocations
// and SchemeHandlers requests.
func (b *Bridge) SetActive(active bool) { b.active.Store(active) }

// SetSendHandler wires the transport used by Send (and by Router's
// seq == "-1" fire-and-forget delivery).
func (b *Bridge) SetSendHandler(fn SendFunc) { b.send = fn }

// SetEmitHandler wires the transport used by Emit.
func (b *Bridge) SetEmitHandler(fn EmitFunc) { b.emit = fn }

// Send delivers body for seq through the configured SendFunc. It
// satisfies router.Sender.
func (b *Bridge) Send(seq string, body string) {
	if b.send != nil {
		b.send(seq, body)
	}
}

// Emit delivers an out-of-band event through the configured EmitFunc.
func (b *Bridge) Emit(event string, data jsonvalue.Any) {
	if b.emit != nil {
		b.emit(event, data)
	}
}

// Route parses uri as an IPC message and invokes it through the
// Router, returning false if the Bridge is inactive or the route is
// unknown.
func (b *Bridge) Route(ctx context.Context, uri string, body []byte) bool {
	return b.router.InvokeURI(ctx, uri, body)
}

// Router returns the Bridge's Router.
func (b *Bridge) Router() *router.Router { return b.router }

// SchemeHandlers returns the Bridge's SchemeHandlers.
func (b *Bridge) SchemeHandlers() *scheme.SchemeHandlers { return b.schemeHandlers }

// QueuedResponses returns the Bridge's QueuedResponse store.
func (b *Bridge) QueuedResponses() *queued.Store { return b.queuedResponses }

// Close stops the Bridge's dispatcher and queued-response sweeper.
func (b *Bridge) Close() {
	b.SetActive(false)
	b.dispatcher.Close()
	b.queuedResponses.Close()
}
