package devrelay

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestRelayBroadcastsToConnectedClient(t *testing.T) {
	relay := NewRelay("/devrelay")
	defer relay.Close()

	server := httptest.NewServer(relay.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/devrelay"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitForClientCount(t, relay, 1)

	relay.Broadcast(Event{ClientID: "client-1", Route: "echo", Seq: "1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if got.Route != "echo" || got.ClientID != "client-1" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestRelayPathMismatchReturns404(t *testing.T) {
	relay := NewRelay("/devrelay")
	defer relay.Close()

	server := httptest.NewServer(relay.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/wrong-path"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Dial should fail for a mismatched path")
	}
	if resp != nil && resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func waitForClientCount(t *testing.T, relay *Relay, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		relay.mu.RLock()
		n := len(relay.clients)
		relay.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d connected clients", want)
}
