package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipcbridge/runtime/internal/ipc"
	"github.com/ipcbridge/runtime/internal/jsonvalue"
)

type fakeSender struct {
	mu     sync.Mutex
	active bool
	sent   []string
}

func (f *fakeSender) Active() bool { return f.active }
func (f *fakeSender) Send(seq, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
}

func echoHandler(message ipc.Message, r *Router, reply func(ipc.Result)) {
	reply(ipc.NewResultWithValue(message.Seq, message, jsonvalue.String(message.Value)))
}

func TestRouterMapAndInvoke(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.MapAsync("echo", false, echoHandler)

	var got ipc.Result
	var wg sync.WaitGroup
	wg.Add(1)
	ok := r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=1&value=hi", nil, func(result ipc.Result) {
		got = result
		wg.Done()
	})
	if !ok {
		t.Fatal("Invoke should return true for a mapped route")
	}
	wg.Wait()
	if v, _ := got.Value.StringValue(); v != "hi" {
		t.Errorf("result value = %q, want hi", v)
	}
}

func TestRouterInactiveBridgeRejectsInvoke(t *testing.T) {
	sender := &fakeSender{active: false}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.MapAsync("echo", false, echoHandler)

	if r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=1", nil, func(ipc.Result) {}) {
		t.Fatal("Invoke should return false when the bridge is inactive")
	}
}

func TestRouterUnmappedRouteFails(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)

	if r.InvokeURIWithCallback(context.Background(), "ipc://nope?seq=1", nil, func(ipc.Result) {}) {
		t.Fatal("Invoke should return false for an unmapped route")
	}
}

func TestRouterPreservedRouteSurvivesUnmap(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)

	r.MapAsync("builtin", false, echoHandler)
	r.PreserveCurrentTable()
	r.Unmap("builtin")

	if !r.InvokeURIWithCallback(context.Background(), "ipc://builtin?seq=1&value=ok", nil, func(ipc.Result) {}) {
		t.Fatal("a preserved route must still be invokable after Unmap")
	}
}

func TestRouterUnmapRemovesNonPreservedRoute(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)

	r.MapAsync("plugin", false, echoHandler)
	r.Unmap("plugin")

	if r.InvokeURIWithCallback(context.Background(), "ipc://plugin?seq=1", nil, func(ipc.Result) {}) {
		t.Fatal("a non-preserved route must be gone after Unmap")
	}
}

func TestRouterWildcardListenerFiresExactlyOnce(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.MapAsync("echo", false, echoHandler)

	var namedCount, wildcardCount int
	var mu sync.Mutex
	r.Listen("echo", func(message ipc.Message, router *Router, reply func(ipc.Result)) {
		mu.Lock()
		namedCount++
		mu.Unlock()
	})
	r.Listen("*", func(message ipc.Message, router *Router, reply func(ipc.Result)) {
		mu.Lock()
		wildcardCount++
		mu.Unlock()
	})

	r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=1&value=x", nil, func(ipc.Result) {})

	mu.Lock()
	defer mu.Unlock()
	if namedCount != 1 {
		t.Errorf("named listener fired %d times, want 1", namedCount)
	}
	if wildcardCount != 1 {
		t.Errorf("wildcard listener fired %d times, want 1", wildcardCount)
	}
}

func TestRouterUnlisten(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.MapAsync("echo", false, echoHandler)

	var fired bool
	token := r.Listen("echo", func(message ipc.Message, router *Router, reply func(ipc.Result)) {
		fired = true
	})
	if !r.Unlisten("echo", token) {
		t.Fatal("Unlisten should report true for a registered token")
	}
	r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=1&value=x", nil, func(ipc.Result) {})
	if fired {
		t.Fatal("listener should not fire after Unlisten")
	}
}

func TestRouterFireAndForgetSeqRoutesThroughSender(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.MapAsync("echo", false, func(message ipc.Message, router *Router, reply func(ipc.Result)) {
		reply(ipc.NewResultWithValue("-1", message, jsonvalue.String("ignored")))
	})

	called := false
	r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=-1&value=x", nil, func(ipc.Result) {
		called = true
	})

	time.Sleep(10 * time.Millisecond)
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one Send via the bridge sender, got %d", len(sender.sent))
	}
	if called {
		t.Fatal("the result callback must not run for seq == -1")
	}
}

func TestRouterAsyncDispatch(t *testing.T) {
	sender := &fakeSender{active: true}
	d := NewDispatcher(8)
	defer d.Close()
	r := New(sender, d)
	r.Map("echo", echoHandler)

	done := make(chan struct{})
	r.InvokeURIWithCallback(context.Background(), "ipc://echo?seq=1&value=async", nil, func(ipc.Result) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async dispatch never delivered a result")
	}
}
