// Package main is the entry point for the quill headless editor.
//
// quill loads a document into an editor, drives it with a Lua script and
// writes the result:
//
//	quill -s fix.lua -o out.txt in.txt
//	quill -e 'ed.find("foo") ed.replace_all("bar")' < in.txt
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/metrics"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	ConfigPath  string
	ScriptPath  string
	Inline      string
	OutputPath  string
	Language    string
	LogLevel    string
	MetricsAddr string
	Watch       bool
	ReadOnly    bool
	Input       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level, _ := settings.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	input, err := readInput(opts.Input)
	if err != nil {
		logger.Error("reading input", slog.Any("error", err))
		return 1
	}

	code, err := readScript(opts)
	if err != nil {
		logger.Error("reading script", slog.Any("error", err))
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if opts.MetricsAddr != "" {
		stop := serveMetrics(opts.MetricsAddr, reg, logger)
		defer stop()
	}

	job := &job{
		opts:    opts,
		input:   input,
		code:    code,
		logger:  logger,
		metrics: m,
	}

	if err := job.process(ctx, settings); err != nil {
		logger.Error("processing failed", slog.Any("error", err))
		return 1
	}

	if !opts.Watch {
		return 0
	}

	logger.Info("watching configuration", slog.String("path", opts.ConfigPath))
	err = config.Watch(ctx, opts.ConfigPath, func(s config.Settings, err error) {
		if err == nil {
			err = config.ApplyEnv(&s, os.LookupEnv)
		}
		if err != nil {
			logger.Warn("configuration reload failed", slog.Any("error", err))
			return
		}
		logger.Info("configuration reloaded", slog.String("settings", s.String()))
		if err := job.process(ctx, s); err != nil {
			logger.Error("processing failed", slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("watch failed", slog.Any("error", err))
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua script to run against the document")
	flag.StringVar(&opts.ScriptPath, "s", "", "Lua script (shorthand)")
	flag.StringVar(&opts.Inline, "e", "", "Inline Lua script")
	flag.StringVar(&opts.OutputPath, "o", "", "Output file (default stdout)")
	flag.StringVar(&opts.Language, "lang", "", "Document language (default from file extension)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.BoolVar(&opts.Watch, "watch", false, "Reprocess whenever the configuration file changes")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open the document read-only")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open the document read-only (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "quill - headless scripted text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quill [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  quill -s fix.lua in.txt             Run a script, print the result\n")
		fmt.Fprintf(os.Stderr, "  quill -s fix.lua -o out.txt in.txt  Write the result to a file\n")
		fmt.Fprintf(os.Stderr, "  quill -c quill.toml -watch ...      Rerun on configuration changes\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("quill %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one input file, got %d\n", flag.NArg())
		os.Exit(2)
	}
	opts.Input = flag.Arg(0)

	if opts.Watch && opts.ConfigPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -watch requires -config\n")
		os.Exit(2)
	}
	if opts.ScriptPath != "" && opts.Inline != "" {
		fmt.Fprintf(os.Stderr, "Error: -script and -e are mutually exclusive\n")
		os.Exit(2)
	}

	if opts.Language == "" && opts.Input != "" {
		opts.Language = strings.TrimPrefix(filepath.Ext(opts.Input), ".")
	}

	return opts
}

// loadSettings reads the configuration file and environment, then applies
// command line overrides.
func loadSettings(opts options) (config.Settings, error) {
	s, err := config.Load(opts.ConfigPath)
	if err != nil {
		return s, err
	}
	if err := config.ApplyEnv(&s, os.LookupEnv); err != nil {
		return s, err
	}
	if opts.LogLevel != "" {
		s.Log.Level = opts.LogLevel
		if err := s.Validate(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// readInput reads the document from path, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return string(data), err
}

func readScript(opts options) (string, error) {
	if opts.ScriptPath == "" {
		return opts.Inline, nil
	}
	data, err := os.ReadFile(opts.ScriptPath)
	return string(data), err
}

// serveMetrics exposes reg over HTTP and returns a function that stops the
// server.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
