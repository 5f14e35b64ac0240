package httpmsg

import (
	"strings"

	"github.com/ipcbridge/runtime/internal/jsonvalue"
)

// Header is a single name/value pair. Name is always stored lower-case
// (spec.md §4.4); Str renders it back in Header-Case.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered, case-insensitive collection of header
// entries: lookups normalize the name to lower-case, but str() emits
// the conventional Header-Case form.
type Headers struct {
	entries []Header
}

// ParseHeaders splits source on newlines, each line "name: value".
func ParseHeaders(source string) Headers {
	var h Headers
	for _, line := range strings.Split(source, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return h
}

// Set assigns value to name, replacing any existing entry for the
// same (case-insensitive) name, or appending one.
func (h *Headers) Set(name, value string) *Headers {
	normalized := strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	for i := range h.entries {
		if h.entries[i].Name == normalized {
			h.entries[i].Value = value
			return h
		}
	}
	h.entries = append(h.entries, Header{Name: normalized, Value: value})
	return h
}

// Has reports whether name is present, case-insensitively.
func (h Headers) Has(name string) bool {
	normalized := strings.ToLower(name)
	for _, e := range h.entries {
		if e.Name == normalized {
			return true
		}
	}
	return false
}

// Get returns the value for name and whether it was found.
func (h Headers) Get(name string) (string, bool) {
	normalized := strings.ToLower(name)
	for _, e := range h.entries {
		if e.Name == normalized {
			return e.Value, true
		}
	}
	return "", false
}

// Delete removes the entry for name, reporting whether it existed.
func (h *Headers) Delete(name string) bool {
	normalized := strings.ToLower(name)
	for i, e := range h.entries {
		if e.Name == normalized {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of entries.
func (h Headers) Len() int { return len(h.entries) }

// Entries returns a snapshot of the stored (lower-cased) header pairs
// in insertion order.
func (h Headers) Entries() []Header {
	out := make([]Header, len(h.entries))
	copy(out, h.entries)
	return out
}

// HeaderCase renders a hyphen-joined name in conventional
// Header-Case, e.g. "content-type" -> "Content-Type", the form a
// header name must appear in outside this package's own case-folded
// storage (e.g. an HTTP wire line or an http-equiv meta tag).
func HeaderCase(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		parts[i] = toProperCase(p)
	}
	return strings.Join(parts, "-")
}

// Str renders the headers as CRLF-joined "Name: value" lines,
// terminated by a blank line, matching the HTTP wire format.
func (h Headers) Str() string {
	var b strings.Builder
	for i, e := range h.entries {
		b.WriteString(HeaderCase(e.Name))
		b.WriteString(": ")
		b.WriteString(e.Value)
		if i < len(h.entries)-1 {
			b.WriteString("\r\n")
		}
	}
	b.WriteString("\r\n\r\n")
	return b.String()
}

// JSON renders the headers as a jsonvalue Object keyed by the
// lower-cased header name.
func (h Headers) JSON() jsonvalue.Any {
	obj := jsonvalue.NewObject()
	o, _ := obj.Object()
	for _, e := range h.entries {
		o.Set(e.Name, jsonvalue.String(e.Value))
	}
	return obj
}
