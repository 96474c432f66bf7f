package main

import (
	"fmt"
	"log/slog"
	"os"
)

var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage()
		return 0
	}

	sub := args[0]
	switch sub {
	case "request":
		if err := cmdRequest(args[1:]); err != nil {
			slog.Error("request failed", "err", err)
			return 1
		}
		return 0
	case "extract":
		if err := cmdExtract(args[1:]); err != nil {
			slog.Error("extract failed", "err", err)
			return 1
		}
		return 0
	case "publish":
		if err := cmdPublish(args[1:]); err != nil {
			slog.Error("publish failed", "err", err)
			return 1
		}
		return 0
	case "all":
		if err := cmdAll(args[1:]); err != nil {
			slog.Error("all failed", "err", err)
			return 1
		}
		return 0
	case "version":
		fmt.Fprintln(stdout, version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n\n", sub)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `gemreq %s

Usage:
  gemreq <subcommand> [flags]

Subcommands:
  request  Send a prompt (and optional file) and print the JSON payload
  extract  Extract the JSON payload from a saved raw response
  publish  Upload a saved response to S3
  all      Run request --save -> publish
  version  Print version

Run "gemreq <subcommand> -h" for flags.
`, version)
}
