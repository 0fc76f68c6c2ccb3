package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/wasmstash/cmd/wasmstash"
	"github.com/arthur-debert/wasmstash/pkg/ui/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := wasmstash.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Command failures are already on stderr in the chosen format;
		// flag and argument errors are not
		var rendered *wasmstash.RenderedError
		if !errors.As(err, &rendered) {
			errorStyle := styles.GetStyle("Error")
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
		stop()
		os.Exit(1)
	}
}
