package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipcbridge/runtime/internal/ipc"
	"github.com/ipcbridge/runtime/internal/jsonvalue"
	"github.com/ipcbridge/runtime/internal/router"
)

func TestBridgeRouteDeliversThroughSend(t *testing.T) {
	b := New("client-1")
	defer b.Close()

	var mu sync.Mutex
	var got string
	b.SetSendHandler(func(seq, body string) {
		mu.Lock()
		got = body
		mu.Unlock()
	})

	b.Router().MapAsync("echo", false, func(message ipc.Message, r *router.Router, reply func(ipc.Result)) {
		reply(ipc.NewResultWithValue(message.Seq, message, jsonvalue.String(message.Value)))
	})

	ok := b.Route(context.Background(), "ipc://echo?seq=1&value=hi", nil)
	if !ok {
		t.Fatal("Route should succeed for a mapped route")
	}

	mu.Lock()
	defer mu.Unlock()
	if got == "" {
		t.Fatal("expected Send to have delivered a body")
	}
}

func TestBridgeInactiveRejectsRoute(t *testing.T) {
	b := New("client-1")
	defer b.Close()
	b.SetActive(false)

	b.Router().MapAsync("echo", false, func(message ipc.Message, r *router.Router, reply func(ipc.Result)) {})
	if b.Route(context.Background(), "ipc://echo?seq=1", nil) {
		t.Fatal("Route should fail when the bridge is inactive")
	}
}

func TestBridgeEmit(t *testing.T) {
	b := New("client-1")
	defer b.Close()

	done := make(chan struct{})
	var gotEvent string
	b.SetEmitHandler(func(event string, data jsonvalue.Any) {
		gotEvent = event
		close(done)
	})
	b.Emit("ready", jsonvalue.Bool(true))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit never invoked the configured handler")
	}
	if gotEvent != "ready" {
		t.Errorf("event = %q, want ready", gotEvent)
	}
}

func TestBridgeClientID(t *testing.T) {
	b := New("abc")
	defer b.Close()
	if b.ClientID() != "abc" {
		t.Errorf("ClientID() = %q, want abc", b.ClientID())
	}
}
