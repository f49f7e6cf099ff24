package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dilemma-lab/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ipdctl:", err)
		stop()
		os.Exit(1)
	}
}
