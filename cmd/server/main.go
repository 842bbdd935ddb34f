package main

import (
	"fmt"
	"os"
)

// main only dispatches to cobra; wiring lives in serve.go.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
