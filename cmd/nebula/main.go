package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(cli.DefaultRunners()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nebula:", err)
		stop()
		os.Exit(1)
	}
}
