// Command warncodes queries, validates and exports the DWD warning-code
// catalog.
//
// Usage:
//
//	warncodes list [category]
//	warncodes lookup 22 --category warnungen
//	warncodes search glätte
//	warncodes validate catalog.yaml
//	warncodes export --format sqlite --out warncodes.db
//	warncodes alerts --ags 08311000
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
