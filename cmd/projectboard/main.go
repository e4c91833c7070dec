package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flip-z/projectboard/internal/cli"
)

func main() {
	os.Exit(run())
}

// run keeps the deferred stop ahead of os.Exit.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cli.Run(ctx, os.Args[1:])
}
