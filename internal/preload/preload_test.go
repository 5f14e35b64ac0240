package preload

import (
	"strings"
	"testing"

	"github.com/ipcbridge/runtime/internal/httpmsg"
)

func TestCompileIncludesGlobalArgs(t *testing.T) {
	p := New(Options{
		Features: DefaultFeatures(),
		ClientID: "client-1",
		Index:    3,
		Argv:     []string{"--flag"},
	})
	out, err := p.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "globalThis.__args") {
		t.Fatalf("compiled preload missing __args: %q", out)
	}
	if !strings.Contains(out, `"client":"client-1"`) {
		t.Fatalf("compiled preload missing client id: %q", out)
	}
}

func TestCompileDisablesGlobalArgsWhenFeatureOff(t *testing.T) {
	features := DefaultFeatures()
	features.UseGlobalArgs = false
	p := New(Options{Features: features})
	out, err := p.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Contains(out, "__args") {
		t.Fatalf("expected no __args when feature disabled: %q", out)
	}
}

func TestInsertIntoHTMLInjectsScriptAndMeta(t *testing.T) {
	p := New(Options{
		Features: DefaultFeatures(),
		ClientID: "c1",
		Metadata: map[string]string{"title": "demo"},
	})
	if _, err := p.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	out, err := p.InsertIntoHTML("<html><head></head><body>hi</body></html>", InsertOptions{
		Options:                p.Options,
		ProtocolHandlerSchemes: []string{"socket"},
	})
	if err != nil {
		t.Fatalf("InsertIntoHTML: %v", err)
	}
	if !strings.Contains(out, "<script type=\"module\">") {
		t.Fatalf("missing injected script tag: %q", out)
	}
	if !strings.Contains(out, `name="title" content="demo"`) {
		t.Fatalf("missing metadata meta tag: %q", out)
	}
	if !strings.Contains(out, `name="protocol-handler-schemes" content="socket"`) {
		t.Fatalf("missing protocol-handler-schemes meta tag: %q", out)
	}
}

func TestInsertIntoHTMLRendersHeaderAsHTTPEquivMeta(t *testing.T) {
	p := New(Options{Features: DefaultFeatures()})
	if _, err := p.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var headers httpmsg.Headers
	headers.Set("X-A", "1")

	out, err := p.InsertIntoHTML("<html><head></head><body>hi</body></html>", InsertOptions{
		Options: Options{Features: p.Options.Features, Headers: headers},
	})
	if err != nil {
		t.Fatalf("InsertIntoHTML: %v", err)
	}
	if !strings.Contains(out, `<meta http-equiv="X-A" content="1">`) {
		t.Fatalf("missing http-equiv meta tag for header: %q", out)
	}
}

func TestInsertIntoHTMLCreatesHeadWhenMissing(t *testing.T) {
	p := New(Options{Features: DefaultFeatures()})
	if _, err := p.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := p.InsertIntoHTML("<html><body>hi</body></html>", InsertOptions{Options: p.Options})
	if err != nil {
		t.Fatalf("InsertIntoHTML: %v", err)
	}
	if !strings.Contains(out, "<head>") {
		t.Fatalf("expected a synthesized <head>: %q", out)
	}
}
