// Package main is the entry point for the todolists CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todolists/internal/cli"
	"todolists/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.RemoteFactory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
