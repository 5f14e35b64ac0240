// Command bridge-inspect is a terminal dashboard that watches a
// running bridged host's devrelay feed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ipcbridge/runtime/internal/inspecttui"
)

func main() {
	var addr string
	var path string
	flag.StringVar(&addr, "addr", "localhost:7777", "bridged host address")
	flag.StringVar(&path, "path", "/devrelay", "devrelay websocket path")
	flag.Parse()

	wsURL := fmt.Sprintf("ws://%s%s", addr, path)
	if err := inspecttui.Run(wsURL, nil); err != nil {
		fmt.Fprintf(os.Stderr, "bridge-inspect: %v\n", err)
		os.Exit(1)
	}
}
