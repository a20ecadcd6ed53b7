package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/metrics"
	"github.com/dshills/quill/internal/script"
)

// job runs one document through the editor and script.
type job struct {
	opts    options
	input   string
	code    string
	logger  *slog.Logger
	metrics *metrics.Metrics

	// stdout is where output goes when no output path is set.
	stdout io.Writer
}

// process builds a fresh editor from s, runs the script and writes the
// result unless the script already saved it.
func (j *job) process(ctx context.Context, s config.Settings) error {
	opts := append(s.Options(),
		engine.WithContent(j.input),
		engine.WithLanguage(j.opts.Language),
		engine.WithLogger(j.logger),
		engine.WithMetrics(j.metrics),
	)
	if j.opts.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	ed := engine.New(opts...)
	defer ed.Close()

	saved := false
	if j.code != "" {
		runner := script.New(ed,
			script.WithLogger(j.logger),
			script.WithSaveFunc(func(text string) error {
				saved = true
				return j.write(text)
			}),
		)
		defer runner.Close()

		name := j.opts.ScriptPath
		if name == "" {
			name = "inline"
		}
		if err := runner.Run(ctx, name, j.code); err != nil {
			return err
		}
	}

	if saved && !ed.IsModified() {
		return nil
	}
	if err := j.write(ed.TextWithEnding()); err != nil {
		return err
	}
	ed.MarkSaved()

	j.logger.Debug("document written",
		slog.String("editor", ed.ID().String()),
		slog.Int("lines", ed.LineCount()),
		slog.String("output", j.outputName()))
	return nil
}

// write stores text at the output path, or prints it.
func (j *job) write(text string) error {
	if j.opts.OutputPath == "" || j.opts.OutputPath == "-" {
		w := j.stdout
		if w == nil {
			w = os.Stdout
		}
		_, err := io.WriteString(w, text)
		return err
	}

	// Readers of OutputPath see either the old or the new contents.
	dir := filepath.Dir(j.opts.OutputPath)
	tmp, err := os.CreateTemp(dir, ".quill-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", j.opts.OutputPath, err)
	}
	if _, err := io.WriteString(tmp, text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", j.opts.OutputPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", j.opts.OutputPath, err)
	}
	if err := os.Rename(tmp.Name(), j.opts.OutputPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", j.opts.OutputPath, err)
	}
	return nil
}

func (j *job) outputName() string {
	if j.opts.OutputPath == "" {
		return "stdout"
	}
	return j.opts.OutputPath
}
