package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gemreq/internal/requestor"
)

// gemreq extract
func cmdExtract(args []string) error {
	var in, logLevel string

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&in, "in", "-", "Raw response file (- for stdin)")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(logLevel)

	var raw []byte
	var err error
	if in == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(in)
	}
	if err != nil {
		return fmt.Errorf("read raw response: %w", err)
	}
	return writeOutput(stdout, requestor.ExtractJSONBlock(string(raw)))
}
