package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/wasmstash/cmd/wasmstash"
	"github.com/arthur-debert/wasmstash/internal/version"
)

func main() {
	rootCmd := wasmstash.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "WASMSTASH",
		Section: "1",
		Source:  "wasmstash " + version.Version,
		Manual:  "wasmstash manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
