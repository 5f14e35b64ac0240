// Package passthrough implements a scheme.Handler that forwards a
// request to a real upstream HTTPS origin through a utls-fingerprinted
// client, for bridging WebView requests that must look like ordinary
// browser traffic to a TLS-fingerprinting origin.
package passthrough

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// RoundTripper implements http.RoundTripper using utls with a Firefox
// fingerprint and caches one HTTP/2 connection per host.
type RoundTripper struct {
	mu          sync.Mutex
	connections map[string]*http2.ClientConn
	pending     map[string]*sync.Cond
	dialer      proxy.Dialer
}

// NewRoundTripper builds a RoundTripper, optionally dialing through
// proxyURL (empty for a direct connection).
func NewRoundTripper(proxyURL string) (*RoundTripper, error) {
	dialer := proxy.Direct
	if strings.TrimSpace(proxyURL) != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("passthrough: parse proxy url: %w", err)
		}
		d, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("passthrough: build proxy dialer: %w", err)
		}
		return &RoundTripper{
			connections: make(map[string]*http2.ClientConn),
			pending:     make(map[string]*sync.Cond),
			dialer:      d,
		}, nil
	}
	return &RoundTripper{
		connections: make(map[string]*http2.ClientConn),
		pending:     make(map[string]*sync.Cond),
		dialer:      dialer,
	}, nil
}

func (t *RoundTripper) getOrCreateConnection(host, addr string) (*http2.ClientConn, error) {
	t.mu.Lock()
	if conn, ok := t.connections[host]; ok && conn.CanTakeNewRequest() {
		t.mu.Unlock()
		return conn, nil
	}
	if cond, ok := t.pending[host]; ok {
		cond.Wait()
		if conn, ok := t.connections[host]; ok && conn.CanTakeNewRequest() {
			t.mu.Unlock()
			return conn, nil
		}
	}
	cond := sync.NewCond(&t.mu)
	t.pending[host] = cond
	t.mu.Unlock()

	conn, err := t.createConnection(host, addr)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, host)
	cond.Broadcast()

	if err != nil {
		return nil, err
	}
	t.connections[host] = conn
	return conn, nil
}

func (t *RoundTripper) createConnection(host, addr string) (*http2.ClientConn, error) {
	conn, err := t.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloFirefox_Auto)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	h2Conn, err := (&http2.Transport{}).NewClientConn(tlsConn)
	if err != nil {
		tlsConn.Close()
		return nil, err
	}
	return h2Conn, nil
}

// RoundTrip implements http.RoundTripper.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	hostname := req.URL.Hostname()
	addr := req.URL.Host
	if !strings.Contains(addr, ":") {
		addr += ":443"
	}

	conn, err := t.getOrCreateConnection(hostname, addr)
	if err != nil {
		return nil, err
	}

	resp, err := conn.RoundTrip(req)
	if err != nil {
		t.mu.Lock()
		if cached, ok := t.connections[hostname]; ok && cached == conn {
			delete(t.connections, hostname)
		}
		t.mu.Unlock()
		return nil, err
	}
	return resp, nil
}
