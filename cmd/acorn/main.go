// Command acorn demonstrates how to wire a small layered application with
// acorn. Run it with:
//
//	go run ./cmd/acorn graph
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
