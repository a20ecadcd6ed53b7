package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/engine/search"
	"github.com/dshills/quill/internal/engine/wrap"
	"github.com/dshills/quill/internal/focus"
	"github.com/dshills/quill/internal/metrics"
)

// Default configuration values.
const (
	DefaultTabText  = "\t"
	DefaultPageRows = 20
	DefaultMaxUndo  = history.DefaultMaxSize
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithContent sets the initial content of the editor.
func WithContent(content string) Option {
	return func(e *Editor) {
		e.initContent = content
	}
}

// WithLanguage records the document's language identifier.
func WithLanguage(lang string) Option {
	return func(e *Editor) {
		e.language = lang
	}
}

// WithLineEnding fixes the line ending used when the document is written
// back out. Without it the ending is detected from the content.
func WithLineEnding(le buffer.LineEnding) Option {
	return func(e *Editor) {
		e.bufOpts = append(e.bufOpts, buffer.WithLineEnding(le))
	}
}

// WithMaxUndo sets the maximum number of undo entries.
func WithMaxUndo(max int) Option {
	return func(e *Editor) {
		if max > 0 {
			e.maxUndo = max
		}
	}
}

// WithWrap sets the wrap policy.
func WithWrap(cfg wrap.Config) Option {
	return func(e *Editor) {
		e.wrap = cfg
	}
}

// WithSearchOptions sets the scan options of the find bar.
func WithSearchOptions(opts search.Options) Option {
	return func(e *Editor) {
		e.searchOpts = opts
	}
}

// WithTabText sets the text inserted by InsertTab, such as four spaces.
func WithTabText(text string) Option {
	return func(e *Editor) {
		if text != "" {
			e.tabText = text
		}
	}
}

// WithPageRows sets how many visual rows PageUp and PageDown move.
func WithPageRows(rows int) Option {
	return func(e *Editor) {
		if rows > 0 {
			e.pageRows = rows
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records intents, undo depth and search timings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithFocusManager registers the editor with a shared focus manager.
func WithFocusManager(m *focus.Manager) Option {
	return func(e *Editor) {
		e.focus = m
	}
}

// WithID overrides the generated editor ID.
func WithID(id uuid.UUID) Option {
	return func(e *Editor) {
		e.id = id
	}
}

// WithReadOnly creates a read-only editor.
// Edit intents become no-ops and Transaction returns ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Editor) {
		e.readOnly = true
	}
}
