package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/benz9527/xtree/lib/infra"
)

const usage = `Usage: xtree <command> [flags]

Commands:
  dot      build a tree from "key value" lines and write it as a Graphviz digraph
  stress   run random workloads on independent trees and validate them

Run "xtree <command> --help" for the flags of a command.
`

var (
	errMissingCommand = errors.New("[xtree] missing command")
	errUnknownCommand = errors.New("[xtree] unknown command")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return errMissingCommand
	}

	switch args[0] {
	case "dot":
		opts, err := parseDotOptions(args[1:])
		if err != nil {
			return err
		}
		return runDotCommand(ctx, opts, stdin, stdout)
	case "stress":
		opts, err := parseStressOptions(args[1:])
		if err != nil {
			return err
		}
		return runStressCommand(ctx, opts, stdout)
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(stdout, usage)
		return nil
	}
	return infra.WrapErrorStackWithMessage(errUnknownCommand, fmt.Sprintf("command %q", args[0]))
}
