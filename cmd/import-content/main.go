// Package main converts item content into the YAML catalog layout.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/arena/internal/importer"
)

func main() {
	format := flag.String("format", "lua", "source format: lua or yaml")
	sourcePath := flag.String("source", "", "path to the source catalog (Lua file or YAML directory)")
	outputDir := flag.String("output", "content/items", "path to output item directory")
	flag.Parse()

	if *sourcePath == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content [-format lua|yaml] -source <path> [-output <dir>]")
		os.Exit(1)
	}

	src, ok := importer.SourceFor(*format)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: lua, yaml)\n", *format)
		os.Exit(1)
	}

	start := time.Now()
	imp := importer.New(src, os.Stdout)
	if err := imp.Run(*sourcePath, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
