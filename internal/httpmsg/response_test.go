package httpmsg

import (
	"strings"
	"testing"

	"github.com/ipcbridge/runtime/internal/jsonvalue"
)

func TestNewJSONResponse(t *testing.T) {
	r, err := NewJSONResponse(NewStatus(200), jsonvalue.ObjectOf(jsonvalue.Entry{Key: "ok", Value: jsonvalue.Bool(true)}))
	if err != nil {
		t.Fatalf("NewJSONResponse: %v", err)
	}
	ct, ok := r.Headers.Get("content-type")
	if !ok || ct != "application/json" {
		t.Fatalf("content-type = %q, %v", ct, ok)
	}
	if string(r.Data()) != `{"ok":true}` {
		t.Fatalf("Data = %q", r.Data())
	}
	if !strings.HasPrefix(r.Str(), "HTTP/1.1 200 Ok\r\n") {
		t.Fatalf("Str() = %q", r.Str())
	}
}
