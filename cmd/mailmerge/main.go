// Command mailmerge runs the mail-merge API and scheduler, or a single merge
// from the command line.
//
//	mailmerge serve
//	mailmerge send -config mailmerge.yaml [-source customers] [-test]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage: mailmerge serve | mailmerge send [-config file] [-source name] [-test]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch args[0] {
	case "serve":
		return serve(ctx, cfg)
	case "send":
		return send(ctx, cfg, args[1:])
	default:
		return errUsage
	}
}
