package httpmsg

import (
	"fmt"
	"strings"

	"github.com/ipcbridge/runtime/internal/bytes"
	"github.com/ipcbridge/runtime/internal/jsonvalue"
)

// Response is a status + headers + body triple, the shape a scheme
// handler's writeHead/write/finish sequence ultimately produces
// (spec.md §4.9).
type Response struct {
	Version string
	Status  Status
	Headers Headers
	Body    bytes.Buffer
}

// NewResponse builds a Response with the given status and a raw body.
func NewResponse(status Status, body []byte) Response {
	return Response{Version: "1.1", Status: status, Body: bytes.FromBytes(body)}
}

// NewJSONResponse serializes value and sets Content-Type accordingly.
func NewJSONResponse(status Status, value jsonvalue.Any) (Response, error) {
	text, err := jsonvalue.Serialize(value)
	if err != nil {
		return Response{}, err
	}
	r := NewResponse(status, []byte(text))
	r.Headers.Set("content-type", "application/json")
	return r, nil
}

// SetHeader sets a response header and returns the Response for
// chaining.
func (r *Response) SetHeader(name, value string) *Response {
	r.Headers.Set(name, value)
	return r
}

// Str renders the status line, headers, and body as wire bytes.
func (r Response) Str() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/%s %s\r\n", r.Version, r.Status.Str())
	b.WriteString(r.Headers.Str())
	b.Write(r.Body.Bytes())
	return b.String()
}

// Data returns the response body bytes.
func (r Response) Data() []byte {
	return r.Body.Bytes()
}

// Size returns the response body length in bytes.
func (r Response) Size() int {
	return r.Body.Size()
}
