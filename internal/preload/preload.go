// Package preload implements spec.md §4.8: compiling the JS shim and
// metadata that gets injected into an HTML document loaded by a
// WebView, bridging it to the native IPC router.
package preload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/ipcbridge/runtime/internal/httpmsg"
)

// Features toggles individual preload compiler behaviors.
type Features struct {
	UseGlobalCommonJS bool
	UseGlobalNodeJS   bool
	UseTestScript     bool
	UseHTMLMarkup     bool
	UseESM            bool
	UseGlobalArgs     bool
}

// DefaultFeatures mirrors the reference defaults: everything on
// except the test-script import.
func DefaultFeatures() Features {
	return Features{
		UseGlobalCommonJS: true,
		UseGlobalNodeJS:   true,
		UseTestScript:     false,
		UseHTMLMarkup:     true,
		UseESM:            true,
		UseGlobalArgs:     true,
	}
}

// Options configures one Preload compilation.
type Options struct {
	Headless bool
	Debug    bool
	Features Features
	ClientID string
	Index    int

	Argv                      []string
	Headers                   httpmsg.Headers
	UserScript                string
	Metadata                  map[string]string
	Env                       map[string]string
	UserConfig                map[string]string
	Conduit                   map[string]any
	RuntimePrimordialOverride string
}

// Preload holds the compiled JS shim plus the metadata/headers that
// accompany it when injected into HTML.
type Preload struct {
	Options  Options
	buffer   []string
	Headers  httpmsg.Headers
	Metadata map[string]string
	compiled string
}

// New starts a Preload from options without compiling it yet.
func New(options Options) *Preload {
	p := &Preload{Options: options}
	p.configure(options)
	return p
}

func (p *Preload) configure(options Options) {
	p.Options = options
	if options.Features.UseHTMLMarkup {
		p.Headers = options.Headers
		p.Metadata = options.Metadata
	}
}

// Append adds raw source to the preload buffer, prior to Compile.
func (p *Preload) Append(source string) *Preload {
	p.buffer = append(p.buffer, source)
	return p
}

// Compile renders the full preload script: global shims (per
// Features), the __args globalThis object (if enabled), then any
// appended buffer contents and the user script last.
func (p *Preload) Compile() (string, error) {
	var b strings.Builder

	if p.Options.Features.UseGlobalCommonJS {
		b.WriteString("globalThis.module = globalThis.module || {};\n")
		b.WriteString("globalThis.exports = globalThis.exports || {};\n")
	}
	if p.Options.Features.UseGlobalNodeJS {
		b.WriteString("globalThis.process = globalThis.process || { platform: 'unknown' };\n")
		b.WriteString("globalThis.global = globalThis;\n")
	}

	if p.Options.Features.UseGlobalArgs {
		args, err := compileGlobalArgs(p.Options)
		if err != nil {
			return "", fmt.Errorf("preload: compile __args: %w", err)
		}
		fmt.Fprintf(&b, "globalThis.__args = %s;\n", args)
	}

	if p.Options.RuntimePrimordialOverride != "" {
		b.WriteString(p.Options.RuntimePrimordialOverride)
		b.WriteString("\n")
	}

	if p.Options.Features.UseTestScript {
		if p.Options.Features.UseESM {
			b.WriteString("import './test.js';\n")
		} else {
			b.WriteString("import('./test.js');\n")
		}
	}

	for _, source := range p.buffer {
		b.WriteString(source)
		b.WriteString("\n")
	}

	if p.Options.UserScript != "" {
		b.WriteString(p.Options.UserScript)
		b.WriteString("\n")
	}

	p.compiled = b.String()
	return p.compiled, nil
}

// Str returns the last compiled script, or "" if Compile has not run.
func (p *Preload) Str() string {
	return p.compiled
}

// compileGlobalArgs builds the __args object: index, client id,
// argv/env/userConfig maps, and the conduit entries, using sjson so
// arbitrary Go values (including nested maps) round-trip as valid
// JSON without a hand-rolled encoder.
func compileGlobalArgs(options Options) (string, error) {
	json := "{}"
	var err error
	if json, err = sjson.Set(json, "index", options.Index); err != nil {
		return "", err
	}
	if json, err = sjson.Set(json, "client", options.ClientID); err != nil {
		return "", err
	}
	if json, err = sjson.Set(json, "debug", options.Debug); err != nil {
		return "", err
	}
	if json, err = sjson.Set(json, "headless", options.Headless); err != nil {
		return "", err
	}
	if json, err = sjson.Set(json, "argv", options.Argv); err != nil {
		return "", err
	}
	if json, err = setSortedMap(json, "env", options.Env); err != nil {
		return "", err
	}
	if json, err = setSortedMap(json, "config", options.UserConfig); err != nil {
		return "", err
	}
	for _, key := range sortedKeys(options.Conduit) {
		if json, err = sjson.Set(json, "conduit."+key, options.Conduit[key]); err != nil {
			return "", err
		}
	}
	return json, nil
}

func setSortedMap(json, path string, m map[string]string) (string, error) {
	var err error
	for _, key := range sortedStringKeys(m) {
		if json, err = sjson.Set(json, path+"."+key, m[key]); err != nil {
			return "", err
		}
	}
	return json, nil
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
