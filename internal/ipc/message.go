// Package ipc implements spec.md §4.7's Message and Result types: the
// parsed form of an `ipc://` request URI, and the reply envelope a
// Router handler produces for it.
package ipc

import (
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/ipcbridge/runtime/internal/bytes"
	"github.com/ipcbridge/runtime/internal/urlutil"
)

// Message is a parsed IPC request: the router name to invoke plus its
// parameters, decoded from an `ipc://<name>?<params>` URI.
type Message struct {
	URI    urlutil.URL
	Seq    string
	Name   string
	Value  string
	Index  int
	IsHTTP bool
	Buffer bytes.Buffer
	Client string
	Cancel func()
}

// ParseMessage parses source as an IPC URI. decodeValues is forwarded
// to the underlying URL parse (spec.md §4.3); Index defaults to -1 to
// match "no index" when absent or non-numeric.
func ParseMessage(source string, decodeValues bool) (Message, error) {
	u, err := urlutil.Parse(source, decodeValues)
	if err != nil {
		return Message{}, err
	}

	m := Message{URI: u, Index: -1}
	m.Seq = m.Get("seq")
	m.Name = u.Hostname
	m.Value = m.Get("value")

	if raw, ok := u.SearchParams.Get("index"); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			m.Index = n
		}
	}
	return m, nil
}

// Has reports whether key is present among the message's parameters.
func (m Message) Has(key string) bool {
	return m.URI.SearchParams.Contains(key)
}

// Get returns key's value, percent-decoded, or "" if absent. "value"
// is special-cased: once the message's own Value field is non-empty,
// it always wins over whatever the URI's "value" parameter holds.
func (m Message) Get(key string) string {
	return m.GetOr(key, "")
}

// GetOr is Get with an explicit fallback for an absent key.
func (m Message) GetOr(key, fallback string) string {
	if key == "value" && m.Value != "" {
		return m.Value
	}
	raw, ok := m.URI.SearchParams.Get(key)
	if !ok {
		return fallback
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// PeekValue extracts one field from the message's raw JSON Value
// without fully decoding it into a jsonvalue.Any tree, for callers
// (Router listeners, logging) that only need a single field out of a
// large invocation payload. path uses gjson's dotted-path syntax.
func (m Message) PeekValue(path string) (string, bool) {
	result := gjson.Get(m.Value, path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

// Map returns every search parameter, percent-decoded, as a plain map.
func (m Message) Map() map[string]string {
	out := make(map[string]string)
	for _, key := range m.URI.SearchParams.Keys() {
		out[key] = m.Get(key)
	}
	return out
}

// Str renders the message back to its source URI.
func (m Message) Str() string {
	return m.URI.Str()
}
