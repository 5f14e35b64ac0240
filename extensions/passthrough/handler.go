package passthrough

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ipcbridge/runtime/internal/scheme"
)

// Handler forwards a scheme.Request whose Query carries a "target"
// parameter (the upstream URL) to that origin through client, copying
// the upstream status, headers, and body into the scheme.Response.
type Handler struct {
	client   *http.Client
	handlers *scheme.SchemeHandlers
}

// NewHandler builds a Handler using rt as the underlying transport.
// handlers is the SchemeHandlers this Handler will be registered
// with, needed to construct tracked Responses.
func NewHandler(rt http.RoundTripper, handlers *scheme.SchemeHandlers) *Handler {
	return &Handler{client: &http.Client{Transport: rt}, handlers: handlers}
}

// Handle implements scheme.Handler.
func (h *Handler) Handle(req *scheme.Request, done func(*scheme.Response)) {
	resp := h.handlers.NewResponse(req)

	query, err := url.ParseQuery(req.Query)
	if err != nil {
		h.fail(resp, done, fmt.Errorf("passthrough: parse query: %w", err))
		return
	}
	target := query.Get("target")
	if target == "" {
		h.fail(resp, done, fmt.Errorf("passthrough: missing target query parameter"))
		return
	}

	upstreamReq, err := http.NewRequest(req.Method, target, bytes.NewReader(req.Body.Bytes()))
	if err != nil {
		h.fail(resp, done, fmt.Errorf("passthrough: build upstream request: %w", err))
		return
	}
	for _, entry := range req.Headers.Entries() {
		upstreamReq.Header.Set(entry.Name, entry.Value)
	}

	upstreamResp, err := h.client.Do(upstreamReq)
	if err != nil {
		h.fail(resp, done, fmt.Errorf("passthrough: upstream request failed: %w", err))
		return
	}
	defer upstreamResp.Body.Close()

	for name, values := range upstreamResp.Header {
		for _, v := range values {
			resp.SetHeader(name, v)
		}
	}
	resp.WriteHead(upstreamResp.StatusCode, resp.Headers)

	body, err := io.ReadAll(upstreamResp.Body)
	if err != nil {
		h.fail(resp, done, fmt.Errorf("passthrough: read upstream body: %w", err))
		return
	}
	resp.Write(body)
	resp.Finish()
	done(resp)
}

func (h *Handler) fail(resp *scheme.Response, done func(*scheme.Response), err error) {
	resp.Fail(err)
	done(resp)
}
