package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nurtas/bloomcast/internal/cli"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Stderr.WriteString("bloomcast: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
