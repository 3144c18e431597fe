// Package main is the entry point for the koru editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/koru-editor/koru/internal/app"
	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/config"
	"github.com/koru-editor/koru/internal/frontend/terminal"
	"github.com/koru-editor/koru/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logging.Configure(logging.ParseLevel(cfg.Log.Level), logFile(cfg))
	logger := logging.New("main")

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warnf("close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)

	appErr := make(chan error, 1)
	go func() { appErr <- application.Run(ctx) }()

	err = edit(ctx, application, opts.files)
	cancel()
	if runErr := <-appErr; runErr != nil && err == nil {
		err = runErr
	}
	if err != nil {
		logger.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// edit connects a terminal to a new session and serves it until the
// session quits.
func edit(ctx context.Context, application *app.Application, files []string) error {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	client, session, err := application.Connect(connectCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = client.Shutdown(shutdownCtx)
	}()

	for _, f := range files {
		if err := client.Send(ctx, broker.Command{Line: "open " + f}, session); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	term := terminal.New(screen, client, session, terminal.WithLogger(logging.New("terminal")))
	if err := term.Run(ctx); err != nil && !errors.Is(err, terminal.ErrSessionGone) {
		return err
	}
	return nil
}

// logFile keeps log output off the terminal the editor draws on.
func logFile(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "koru.log")
	}
	dir = filepath.Join(dir, "koru")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "koru.log")
	}
	return filepath.Join(dir, "koru.log")
}

func parseFlags() options {
	var opts options
	var showVersion bool

	defaultConfig := ""
	if dir, err := os.UserConfigDir(); err == nil {
		defaultConfig = filepath.Join(dir, "koru", "config.toml")
	}

	flag.StringVar(&opts.configPath, "config", defaultConfig, "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", defaultConfig, "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "koru - a multi-cursor text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: koru [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("koru %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	opts.files = flag.Args()
	return opts
}
