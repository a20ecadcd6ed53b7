package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/engine"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// SaveFunc receives the document text, with its original line endings,
// when a script calls ed.save(). Returning an error aborts the script and
// leaves the document marked as modified.
type SaveFunc func(text string) error

// Runner executes Lua scripts against one editor.
type Runner struct {
	mu sync.Mutex

	L  *lua.LState
	ed *engine.Editor

	logger  *slog.Logger
	out     io.Writer
	timeout time.Duration
	onSave  SaveFunc

	// cause is the Go error behind the last raised Lua error.
	cause  error
	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for script diagnostics and, when no
// output is set, for print.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput directs print to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithTimeout sets the execution timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithSaveFunc sets the hook called by ed.save().
func WithSaveFunc(fn SaveFunc) Option {
	return func(r *Runner) {
		r.onSave = fn
	}
}

// New creates a Runner bound to ed.
func New(ed *engine.Editor, opts ...Option) *Runner {
	r := &Runner{
		ed:      ed,
		logger:  slog.New(slog.DiscardHandler),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.sandbox()
	r.L.SetGlobal("ed", r.module(r.L))
	return r
}

// openSafeLibraries opens only libraries without host access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes code loading and replaces print.
func (r *Runner) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		r.L.SetGlobal(name, lua.LNil)
	}
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	line := strings.Join(parts, "\t")

	if r.out != nil {
		fmt.Fprintln(r.out, line)
		return 0
	}
	r.logger.Info("script output", slog.String("text", line))
	return 0
}

// Run executes code. name identifies the chunk in error messages.
func (r *Runner) Run(ctx context.Context, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	start := time.Now()
	err := r.do(name, code)
	if err != nil {
		switch cerr := ctx.Err(); {
		case errors.Is(cerr, context.DeadlineExceeded):
			err = &Error{Chunk: name, Message: cerr.Error(), Err: ErrTimeout}
		case cerr != nil:
			err = &Error{Chunk: name, Message: cerr.Error(), Err: cerr}
		}
	}

	r.logger.Debug("script finished",
		slog.String("chunk", name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil))
	return err
}

// do loads and calls the chunk, converting Lua errors and Go panics.
func (r *Runner) do(name, code string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &Error{Chunk: name, Message: fmt.Sprintf("panic: %v", p)}
		}
	}()

	fn, err := r.L.Load(strings.NewReader(code), name)
	if err != nil {
		return &Error{Chunk: name, Message: luaMessage(err), Err: errorCause(err)}
	}
	r.cause = nil
	r.L.Push(fn)
	if err := r.L.PCall(0, 0, nil); err != nil {
		cause := r.cause
		if cause == nil {
			cause = errorCause(err)
		}
		return &Error{Chunk: name, Message: luaMessage(err), Err: cause}
	}
	return nil
}

// Close releases the Lua state. Further calls to Run return ErrClosed.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

// luaMessage drops the Lua stack trace from err.
func luaMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}

// errorCause returns the Go error behind a load or syntax error.
func errorCause(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Cause
	}
	return err
}

// raise records err as the cause and raises it in L.
func (r *Runner) raise(L *lua.LState, format string, err error) {
	r.cause = err
	L.RaiseError(format, err)
}
