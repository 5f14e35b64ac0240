// Command bridge-preload compiles a preload script from the current
// feature flags, copies it to the clipboard, and can open a local
// preview page in the default browser.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"

	"github.com/ipcbridge/runtime/internal/preload"
)

func main() {
	var preview bool
	var commonjs, nodejs, args, markup, esm bool
	flag.BoolVar(&preview, "preview", false, "open a local preview page in the default browser")
	flag.BoolVar(&commonjs, "commonjs", true, "include the CommonJS global shim")
	flag.BoolVar(&nodejs, "nodejs", true, "include the Node.js global shim")
	flag.BoolVar(&args, "global-args", true, "expose the __args globalThis object")
	flag.BoolVar(&markup, "html-markup", false, "insert HTML markup when compiling into a document")
	flag.BoolVar(&esm, "esm", false, "compile as an ES module")
	flag.Parse()

	p := preload.New(preload.Options{Features: preload.Features{
		UseGlobalCommonJS: commonjs,
		UseGlobalNodeJS:   nodejs,
		UseGlobalArgs:     args,
		UseHTMLMarkup:     markup,
		UseESM:            esm,
	}})

	script, err := p.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bridge-preload: compile failed: %v\n", err)
		os.Exit(1)
	}

	if err := clipboard.WriteAll(script); err != nil {
		fmt.Fprintf(os.Stderr, "bridge-preload: clipboard copy failed: %v\n", err)
	} else {
		fmt.Println("bridge-preload: compiled script copied to clipboard")
	}

	if !preview {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><head><script>%s</script></head><body><pre>%s</pre></body></html>", script, script)
	})

	srv := &http.Server{Handler: mux}
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "bridge-preload: preview server failed: %v\n", err)
		os.Exit(1)
	}
	previewURL := fmt.Sprintf("http://%s/", ln.Addr().String())
	fmt.Printf("bridge-preload: preview at %s\n", previewURL)
	if err := open.Run(previewURL); err != nil {
		fmt.Fprintf(os.Stderr, "bridge-preload: failed to open browser: %v\n", err)
	}
	_ = srv.Serve(ln)
}
