// Package main is the entry point for bookshelf, a personal library catalog
// kept in a CSV file.
//
// Running bookshelf without arguments opens the interactive menu. Settings
// come from flags and an optional YAML config file, by default
// <user config dir>/bookshelf/config.yaml.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "bookshelf: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	// Cancels on SIGTERM and SIGINT; a second signal gets the default behavior.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	a := newApp()
	defer a.close()
	return a.rootCmd().ExecuteContext(ctx)
}
