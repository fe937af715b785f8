// Command gm8run loads a GM8 archive and drives its frame loop, either
// in a window or headless for scripted/test use.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/gm8run/gm8emu/internal/archive"
)

// Config is the CLI's populated configuration, matching the teacher's
// flag-driven startup (cpu_m68k_harte_test.go's flag.Bool/flag.Int
// registration style) rather than raw os.Args parsing.
type Config struct {
	ArchivePath string
	Headless    bool
	Scale       int
	LogLevel    slog.Level
}

func parseConfig(args []string) (Config, error) {
	fs := flag.NewFlagSet("gm8run", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "path to the GM8 archive executable (required)")
	headless := fs.Bool("headless", false, "step a fixed number of frames, log a summary and exit, for scripted/test use (a window is still created unless built with the headless tag)")
	scale := fs.Int("scale", 1, "window pixel scale")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *archivePath == "" {
		return Config{}, errors.New("-archive is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}

	return Config{
		ArchivePath: *archivePath,
		Headless:    *headless,
		Scale:       *scale,
		LogLevel:    level,
	}, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitCodeFor maps a loader error's taxonomy Kind to the process exit
// code, per spec.md §6: 0 on success, nonzero on load error.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var loadErr *archive.LoadError
	if errors.As(err, &loadErr) {
		return int(loadErr.Kind) + 1
	}
	return 1
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.Headless {
		if _, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			logger.Debug("headless run on an attached terminal; frame-dump summary will still print")
		}
	}

	ar, err := archive.Load(cfg.ArchivePath)
	if err != nil {
		logger.Error("load failed", "error", err, "path", cfg.ArchivePath)
		os.Exit(exitCodeFor(err))
	}

	logger.Info("archive loaded",
		"version", ar.Version,
		"objects", len(ar.Assets.Objects),
		"sprites", len(ar.Assets.Sprites),
		"rooms", len(ar.Assets.Rooms),
	)

	if err := run(cfg, ar, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
