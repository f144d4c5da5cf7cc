// Package main is the entry point for dupstat.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dupstat/internal/cli"
)

// version is set at build time via ldflags.
//
//nolint:gochecknoglobals // Build-time variable
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
