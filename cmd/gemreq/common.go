package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	cfgpkg "gemreq/internal/config"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// set up slog logger according to level; defaults to info.
// Logs go to stderr so stdout only carries the payload.
func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// Common flags for date/config/env/log-level across subcommands
type commonFlags struct {
	date     string
	config   string
	envFile  string
	logLevel string
}

func addCommonFlags(fs *flag.FlagSet, cf *commonFlags) {
	fs.StringVar(&cf.date, "date", "", "Date in YYYY-MM-DD (UTC); default: today")
	fs.StringVar(&cf.config, "config", "config.json", "Path to config file (.json, .yaml)")
	fs.StringVar(&cf.envFile, "env-file", ".env", "Path to a dotenv file; missing is fine")
	fs.StringVar(&cf.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func resolveDate(in string) (time.Time, error) {
	if in == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", in)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return t, nil
}

// loadConfig merges file, env and flag settings.
func loadConfig(cf commonFlags, flagOv cfgpkg.Overrides) (cfgpkg.Config, error) {
	if err := cfgpkg.LoadDotEnv(cf.envFile); err != nil {
		return cfgpkg.Config{}, err
	}
	fileCfg, err := cfgpkg.LoadFile(cf.config)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	envOv, apiKey := cfgpkg.FromEnv()
	return cfgpkg.Merge(fileCfg, envOv, flagOv, apiKey), nil
}

// stringFlag records whether a string flag was given explicitly.
type stringFlag struct {
	v   string
	set bool
}

func (s *stringFlag) String() string { return s.v }

func (s *stringFlag) Set(v string) error {
	s.v = v
	s.set = true
	return nil
}

func (s *stringFlag) ptr() *string {
	if !s.set {
		return nil
	}
	return &s.v
}

type boolFlag struct {
	v   bool
	set bool
}

func (b *boolFlag) String() string { return strconv.FormatBool(b.v) }

func (b *boolFlag) Set(v string) error {
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	b.v = parsed
	b.set = true
	return nil
}

func (b *boolFlag) IsBoolFlag() bool { return true }

func (b *boolFlag) ptr() *bool {
	if !b.set {
		return nil
	}
	return &b.v
}

func writeOutput(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	if !strings.HasSuffix(s, "\n") {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
