// Package main is the entry point for the lineview file viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/lineview/internal/app"
	"github.com/dshills/lineview/internal/config"
	"github.com/dshills/lineview/internal/config/watcher"
	"github.com/dshills/lineview/internal/engine/linestore"
	"github.com/dshills/lineview/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage reports a command line that cannot be run.
var errUsage = errors.New("usage error")

// options holds the parsed command line.
type options struct {
	ConfigPath  string
	Backend     string
	LogLevel    string
	LogFile     string
	File        string
	ShowVersion bool
	ShowHelp    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}
	if opts.ShowHelp {
		return 0
	}
	if opts.ShowVersion {
		fmt.Fprintf(stdout, "lineview %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	logger.Info("lineview %s starting on %s", version, opts.File)

	store, err := linestore.Open(opts.File)
	if err != nil {
		logger.Error("open failed: %v", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	keys, err := cfg.KeyMap()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	term, err := newBackend(cfg.Viewer.Backend)
	if err != nil {
		logger.Error("backend: %v", err)
		fmt.Fprintf(stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	session, err := app.NewSession(store, term, app.Options{KeyMap: keys, Logger: logger})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Watch && opts.ConfigPath != "" {
		w, err := watchConfig(opts, term, logger)
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			logger.Info("watching %s for key changes", w.Path())
			defer w.Close()
		}
	}

	// Handle signals by unwinding through the session so the terminal is
	// restored.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		sig, ok := <-signals
		if !ok {
			return
		}
		term.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: app.Quit{Reason: sig.String()}})
	}()

	if err := session.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lineview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Backend, "backend", "", "Display backend (tcell, ansi)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.ShowVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&opts.ShowHelp, "help", false, "Show help message")
	fs.BoolVar(&opts.ShowHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "lineview - terminal file viewer\n\n")
		fmt.Fprintf(stderr, "Usage: lineview [options] <file>\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nKeys:\n")
		fmt.Fprintf(stderr, "  arrows                      Move the cursor\n")
		fmt.Fprintf(stderr, "  Esc, Ctrl+C, Ctrl+Q         Exit\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			opts.ShowHelp = true
			return opts, nil
		}
		return opts, err
	}

	if opts.ShowHelp {
		fs.Usage()
		return opts, nil
	}
	if opts.ShowVersion {
		return opts, nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("%w: expected one file argument, got %d", errUsage, fs.NArg())
	}
	opts.File = fs.Arg(0)
	return opts, nil
}

// loadConfig layers the config file, the environment and the command line.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flagSettings := []struct{ path, value string }{
		{"viewer.backend", opts.Backend},
		{"logging.level", opts.LogLevel},
		{"logging.file", opts.LogFile},
	}
	for _, s := range flagSettings {
		if s.value == "" {
			continue
		}
		if err := cfg.Set(s.path, s.value); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger opens the configured log file. Without one, logs are discarded.
func openLogger(cfg *config.Config) (*app.Logger, func() error, error) {
	if cfg.Logging.File == "" {
		return app.NullLogger, func() error { return nil }, nil
	}
	return app.OpenLogFile(cfg.Logging.File, app.ParseLogLevel(cfg.Logging.Level))
}

func newBackend(name string) (backend.Backend, error) {
	switch name {
	case config.BackendANSI:
		return backend.NewANSITerminal(), nil
	case config.BackendTCell, "":
		return backend.NewTerminal()
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// watchConfig reloads key bindings into the running session whenever the
// config file changes.
func watchConfig(opts options, term backend.Backend, logger *app.Logger) (*watcher.Watcher, error) {
	log := logger.WithComponent("watcher")
	return watcher.New(opts.ConfigPath, func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		cfg, err := loadConfig(opts)
		if err != nil {
			log.Warn("reload %s: %v", ev.Path, err)
			return
		}
		keys, err := cfg.KeyMap()
		if err != nil {
			log.Warn("reload %s: %v", ev.Path, err)
			return
		}
		log.Info("config %s changed (%s)", ev.Path, ev.Op)
		term.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: app.ReloadKeys{Keys: keys}})
	}, watcher.WithErrorHandler(func(err error) {
		log.Warn("watch error: %v", err)
	}))
}
