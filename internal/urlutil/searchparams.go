package urlutil

import (
	"net/url"
	"strings"
)

type param struct {
	key   string
	value string
}

// SearchParams is the ordered multimap backing a URL's query string.
// Insertion order is preserved so Str() round-trips (spec.md §3); Get
// follows spec.md §4.7's "duplicate parameters: last write wins" rule,
// while GetAll exposes every occurrence for callers that need it.
type SearchParams struct {
	entries []param
	// rawValues is true when values were left percent-encoded at parse
	// time (decodeValues was false): Str must then emit them verbatim
	// instead of re-escaping, or the URL would fail to round-trip.
	rawValues bool
}

// NewSearchParams returns an empty multimap.
func NewSearchParams() *SearchParams {
	return &SearchParams{}
}

func parseSearchParams(rawQuery string, decodeValues bool) (*SearchParams, error) {
	sp := &SearchParams{rawValues: !decodeValues}
	if rawQuery == "" {
		return sp, nil
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		if decodeValues && value != "" {
			decodedValue, err := url.QueryUnescape(value)
			if err != nil {
				return nil, err
			}
			value = decodedValue
		}
		sp.entries = append(sp.entries, param{key: decodedKey, value: value})
	}
	return sp, nil
}

// Add appends a key/value pair, preserving any existing entries for
// the same key.
func (s *SearchParams) Add(key, value string) {
	s.entries = append(s.entries, param{key: key, value: value})
}

// Set replaces every existing entry for key with a single value,
// appending it if key was not already present.
func (s *SearchParams) Set(key, value string) {
	replaced := false
	out := s.entries[:0]
	for _, e := range s.entries {
		if e.key == key {
			if !replaced {
				out = append(out, param{key: key, value: value})
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	s.entries = out
	if !replaced {
		s.entries = append(s.entries, param{key: key, value: value})
	}
}

// Contains reports whether key appears at least once.
func (s *SearchParams) Contains(key string) bool {
	for _, e := range s.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

// Get returns the last value set for key, and whether key was present.
func (s *SearchParams) Get(key string) (string, bool) {
	found := false
	var value string
	for _, e := range s.entries {
		if e.key == key {
			value = e.value
			found = true
		}
	}
	return value, found
}

// GetAll returns every value recorded for key, in insertion order.
func (s *SearchParams) GetAll(key string) []string {
	var out []string
	for _, e := range s.entries {
		if e.key == key {
			out = append(out, e.value)
		}
	}
	return out
}

// Keys returns the distinct keys in first-seen order.
func (s *SearchParams) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range s.entries {
		if !seen[e.key] {
			seen[e.key] = true
			out = append(out, e.key)
		}
	}
	return out
}

// Len returns the number of key/value pairs, including duplicates.
func (s *SearchParams) Len() int { return len(s.entries) }

// Str renders the multimap as a query string, without the leading '?'.
func (s *SearchParams) Str() string {
	var b strings.Builder
	for i, e := range s.entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.key))
		b.WriteByte('=')
		if s.rawValues {
			b.WriteString(e.value)
		} else {
			b.WriteString(url.QueryEscape(e.value))
		}
	}
	return b.String()
}
