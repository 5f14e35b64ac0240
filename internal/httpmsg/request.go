package httpmsg

import (
	"fmt"
	"strings"

	"github.com/ipcbridge/runtime/internal/bytes"
	"github.com/ipcbridge/runtime/internal/urlutil"
)

// Request is a parsed HTTP-shaped request as used by scheme handlers
// (spec.md §4.9): method, target URL, headers, and an optional body.
type Request struct {
	Version string
	Method  string
	Scheme  string
	URL     urlutil.URL
	Headers Headers
	Body    bytes.Buffer
}

// ParseRequest parses a raw HTTP-style request: a request line
// "METHOD path HTTP/version", CRLF, headers, CRLF, then body.
func ParseRequest(raw []byte) (Request, error) {
	text := string(raw)
	idx := strings.Index(text, "\r\n")
	var line string
	var rest string
	if idx < 0 {
		line = text
	} else {
		line = text[:idx]
		rest = text[idx+2:]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Request{}, fmt.Errorf("httpmsg: invalid request line %q", line)
	}

	req := Request{
		Method:  strings.ToUpper(fields[0]),
		Version: "1.1",
		Scheme:  "http",
	}
	if len(fields) >= 3 {
		if _, v, ok := strings.Cut(fields[2], "/"); ok {
			req.Version = v
		}
	}

	target := fields[1]
	u, err := urlutil.Parse(target, false)
	if err != nil {
		// targets that are bare paths (no scheme) are still valid
		// request lines; fall back to a pathname-only URL.
		u = urlutil.URL{Pathname: target, SearchParams: urlutil.NewSearchParams()}
	}
	req.URL = u

	headerEnd := strings.Index(rest, "\r\n\r\n")
	var headerBlock, body string
	if headerEnd < 0 {
		headerBlock = rest
	} else {
		headerBlock = rest[:headerEnd]
		body = rest[headerEnd+4:]
	}
	req.Headers = ParseHeaders(headerBlock)
	req.Body = bytes.FromString(body)

	return req, nil
}

// Valid reports whether the request has a method and a pathname.
func (r Request) Valid() bool {
	return r.Method != "" && r.URL.Pathname != ""
}

// Str renders the request back to its wire form.
func (r Request) Str() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/%s\r\n", r.Method, r.URL.Pathname+r.URL.Search, r.Version)
	b.WriteString(r.Headers.Str())
	b.Write(r.Body.Bytes())
	return b.String()
}
