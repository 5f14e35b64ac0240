// Package urlutil implements the URL type used throughout the IPC
// bridge: the `ipc://<name>?<params>` wire format (spec.md §6), scheme
// requests (spec.md §4.9), and the Message/Result parsing pipeline
// (spec.md §4.7) all build on it. URLs are immutable after
// construction, matching spec.md §3.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is spec.md §3's URL value: scheme, hostname, port, pathname,
// search (with leading '?' retained when non-empty), fragment, and an
// ordered search-params multimap.
type URL struct {
	Scheme       string
	Hostname     string
	Port         string
	Pathname     string
	Search       string
	Fragment     string
	SearchParams *SearchParams
}

// Parse parses raw as `scheme:[//[host[:port]]][/path][?query][#fragment]`.
// When decodeValues is true, query parameter values are percent-decoded
// eagerly; otherwise callers decode lazily (spec.md §4.3).
func Parse(raw string, decodeValues bool) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("urlutil: parse %q: %w", raw, err)
	}

	out := URL{
		Scheme:   strings.ToLower(u.Scheme),
		Hostname: strings.ToLower(u.Hostname()),
		Port:     u.Port(),
		Pathname: u.Path,
		Fragment: u.Fragment,
	}

	if out.Pathname == "" && out.Hostname != "" {
		out.Pathname = "/"
	}

	params, err := parseSearchParams(u.RawQuery, decodeValues)
	if err != nil {
		return URL{}, err
	}
	out.SearchParams = params
	if u.RawQuery != "" {
		out.Search = "?" + params.Str()
	}

	return out, nil
}

// Str reconstructs the URL's canonical string form. For any URL
// produced by Parse, Parse(u.Str(), _).Str() reproduces the same
// fields (spec.md §8 Property 1).
func (u URL) Str() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteByte(':')
	if u.Hostname != "" || u.Pathname != "" {
		b.WriteString("//")
		b.WriteString(u.Hostname)
		if u.Port != "" {
			b.WriteByte(':')
			b.WriteString(u.Port)
		}
	}
	b.WriteString(u.Pathname)
	b.WriteString(u.Search)
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}
