// Package devrelay broadcasts Router invocations over a websocket so
// a dev console (cmd/bridge-inspect) can watch live traffic without
// the core Router package knowing anything about transports.
package devrelay

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ipcbridge/runtime/internal/ipc"
	"github.com/ipcbridge/runtime/internal/router"
)

// Event is one line of the live feed a dev console renders. Preview
// is an optional peek at the invocation's "kind" field, present only
// when the payload is a JSON object carrying one.
type Event struct {
	ClientID  string    `json:"client_id"`
	Route     string    `json:"route"`
	Seq       string    `json:"seq"`
	Preview   string    `json:"preview,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Relay upgrades GET requests at its path into websocket connections
// and fans out Events to every connection currently open.
type Relay struct {
	path     string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

// NewRelay builds a Relay serving upgrades at path (default
// "/devrelay" when empty).
func NewRelay(path string) *Relay {
	if strings.TrimSpace(path) == "" {
		path = "/devrelay"
	}
	return &Relay{
		path: path,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// Path returns the HTTP path this Relay expects websocket upgrades on.
func (r *Relay) Path() string { return r.path }

// Handler exposes an http.Handler performing the websocket upgrade.
func (r *Relay) Handler() http.Handler {
	return http.HandlerFunc(r.handle)
}

func (r *Relay) handle(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != r.path {
		http.NotFound(w, req)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.WithError(err).Warn("devrelay: upgrade failed")
		return
	}

	id := uuid.NewString()
	r.mu.Lock()
	r.clients[id] = conn
	r.mu.Unlock()

	go r.drain(id, conn)
}

// drain discards client-sent frames (this relay is broadcast-only)
// until the connection closes, then removes it from the client set.
func (r *Relay) drain(id string, conn *websocket.Conn) {
	defer func() {
		r.mu.Lock()
		delete(r.clients, id)
		r.mu.Unlock()
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends event to every connected client, dropping any
// connection that fails to write.
func (r *Relay) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("devrelay: failed to marshal event")
		return
	}

	r.mu.RLock()
	targets := make(map[string]*websocket.Conn, len(r.clients))
	for id, conn := range r.clients {
		targets[id] = conn
	}
	r.mu.RUnlock()

	for id, conn := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			r.mu.Lock()
			delete(r.clients, id)
			r.mu.Unlock()
			_ = conn.Close()
		}
	}
}

// Close shuts down every open websocket connection.
func (r *Relay) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*websocket.Conn)
	r.mu.Unlock()
	for _, conn := range clients {
		_ = conn.Close()
	}
}

// Listener returns a router.MessageCallback suitable for
// Router.Listen("*", ...) that broadcasts every invocation this
// process observes.
func (r *Relay) Listener(clientID string) router.MessageCallback {
	return func(message ipc.Message, rt *router.Router, reply func(ipc.Result)) {
		preview, _ := message.PeekValue("kind")
		r.Broadcast(Event{
			ClientID:  clientID,
			Route:     message.Name,
			Seq:       message.Seq,
			Preview:   preview,
			Timestamp: time.Now(),
		})
	}
}
