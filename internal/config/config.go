package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/engine/search"
	"github.com/dshills/quill/internal/engine/wrap"
)

// Settings is the complete editor configuration.
type Settings struct {
	History HistorySettings `toml:"history" yaml:"history"`
	Search  SearchSettings  `toml:"search" yaml:"search"`
	Wrap    WrapSettings    `toml:"wrap" yaml:"wrap"`
	Editor  EditorSettings  `toml:"editor" yaml:"editor"`
	Log     LogSettings     `toml:"log" yaml:"log"`
}

// HistorySettings configures undo history.
type HistorySettings struct {
	// MaxSize is the number of undo entries kept.
	MaxSize int `toml:"max_size" yaml:"max_size"`
}

// SearchSettings configures find and replace.
type SearchSettings struct {
	// Limit caps the number of matches. Negative means unlimited.
	Limit int `toml:"limit" yaml:"limit"`

	// ParallelThreshold is the line count at which scans fan out.
	ParallelThreshold int `toml:"parallel_threshold" yaml:"parallel_threshold"`

	// Workers bounds scan parallelism. Zero uses GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers"`

	CaseSensitive bool `toml:"case_sensitive" yaml:"case_sensitive"`
}

// WrapSettings configures soft wrapping.
type WrapSettings struct {
	Enabled       bool `toml:"enabled" yaml:"enabled"`
	Column        int  `toml:"column" yaml:"column"`
	ViewportWidth int  `toml:"viewport_width" yaml:"viewport_width"`
	GutterWidth   int  `toml:"gutter_width" yaml:"gutter_width"`
	NarrowWidth   int  `toml:"narrow_width" yaml:"narrow_width"`
	WideWidth     int  `toml:"wide_width" yaml:"wide_width"`
}

// EditorSettings configures editing behavior.
type EditorSettings struct {
	// TabText is inserted by the tab key, e.g. "\t" or four spaces.
	TabText string `toml:"tab_text" yaml:"tab_text"`

	// PageRows is how far page up and page down move.
	PageRows int `toml:"page_rows" yaml:"page_rows"`

	// LineEnding forces "lf", "crlf" or "cr" on save. Empty detects it.
	LineEnding string `toml:"line_ending" yaml:"line_ending"`
}

// LogSettings configures the host logger.
type LogSettings struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		History: HistorySettings{
			MaxSize: history.DefaultMaxSize,
		},
		Search: SearchSettings{
			Limit:             search.DefaultLimit,
			ParallelThreshold: search.DefaultParallelThreshold,
		},
		Wrap: WrapSettings{
			NarrowWidth: wrap.DefaultNarrowWidth,
			WideWidth:   wrap.DefaultWideWidth,
		},
		Editor: EditorSettings{
			TabText:  engine.DefaultTabText,
			PageRows: engine.DefaultPageRows,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate checks that every setting is in range.
func (s Settings) Validate() error {
	checks := []struct {
		path  string
		value int
	}{
		{"history.max_size", s.History.MaxSize},
		{"search.parallel_threshold", s.Search.ParallelThreshold},
		{"search.workers", s.Search.Workers},
		{"wrap.column", s.Wrap.Column},
		{"wrap.viewport_width", s.Wrap.ViewportWidth},
		{"wrap.gutter_width", s.Wrap.GutterWidth},
		{"wrap.narrow_width", s.Wrap.NarrowWidth},
		{"wrap.wide_width", s.Wrap.WideWidth},
		{"editor.page_rows", s.Editor.PageRows},
	}
	for _, c := range checks {
		if c.value < 0 {
			return &ValidationError{Path: c.path, Value: c.value, Message: "must not be negative"}
		}
	}

	if _, err := s.lineEnding(); err != nil {
		return err
	}
	if _, err := s.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (s Settings) LogLevel() (slog.Level, error) {
	var level slog.Level
	if s.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return slog.LevelInfo, &ValidationError{Path: "log.level", Value: s.Log.Level, Message: "unknown level"}
	}
	return level, nil
}

// lineEnding parses the configured line ending. It returns nil when the
// ending should be detected from content.
func (s Settings) lineEnding() (*buffer.LineEnding, error) {
	var le buffer.LineEnding
	switch strings.ToLower(s.Editor.LineEnding) {
	case "":
		return nil, nil
	case "lf":
		le = buffer.LineEndingLF
	case "crlf":
		le = buffer.LineEndingCRLF
	case "cr":
		le = buffer.LineEndingCR
	default:
		return nil, &ValidationError{Path: "editor.line_ending", Value: s.Editor.LineEnding, Message: "must be lf, crlf or cr"}
	}
	return &le, nil
}

// WrapConfig converts the wrap settings.
func (s Settings) WrapConfig() wrap.Config {
	return wrap.Config{
		Enabled:       s.Wrap.Enabled,
		WrapColumn:    s.Wrap.Column,
		ViewportWidth: s.Wrap.ViewportWidth,
		GutterWidth:   s.Wrap.GutterWidth,
		Metrics: wrap.Metrics{
			NarrowWidth: s.Wrap.NarrowWidth,
			WideWidth:   s.Wrap.WideWidth,
		},
	}
}

// SearchOptions converts the search settings.
func (s Settings) SearchOptions() search.Options {
	return search.Options{
		CaseSensitive:     s.Search.CaseSensitive,
		Limit:             s.Search.Limit,
		Workers:           s.Search.Workers,
		ParallelThreshold: s.Search.ParallelThreshold,
	}
}

// Options converts the settings into editor options. Call Validate first;
// invalid values fall back to engine defaults.
func (s Settings) Options() []engine.Option {
	opts := []engine.Option{
		engine.WithMaxUndo(s.History.MaxSize),
		engine.WithSearchOptions(s.SearchOptions()),
		engine.WithWrap(s.WrapConfig()),
		engine.WithTabText(s.Editor.TabText),
		engine.WithPageRows(s.Editor.PageRows),
	}
	if le, err := s.lineEnding(); err == nil && le != nil {
		opts = append(opts, engine.WithLineEnding(*le))
	}
	return opts
}

// String returns a one-line summary for logs.
func (s Settings) String() string {
	return fmt.Sprintf("history=%d search.limit=%d wrap=%t/%d tab=%q log=%s",
		s.History.MaxSize, s.Search.Limit, s.Wrap.Enabled, s.Wrap.Column, s.Editor.TabText, s.Log.Level)
}
