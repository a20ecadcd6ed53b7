package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/metrics"
)

func newJob(input, code string, opts options) (*job, *bytes.Buffer) {
	var out bytes.Buffer
	return &job{
		opts:   opts,
		input:  input,
		code:   code,
		logger: slog.New(slog.DiscardHandler),
		stdout: &out,
	}, &out
}

func TestProcessWritesStdout(t *testing.T) {
	j, out := newJob("hello world\r\n", `ed.find("world") ed.replace_all("there")`, options{})
	require.NoError(t, j.process(context.Background(), config.Default()))
	assert.Equal(t, "hello there\r\n", out.String())
}

func TestProcessWithoutScript(t *testing.T) {
	j, out := newJob("as is", "", options{})
	require.NoError(t, j.process(context.Background(), config.Default()))
	assert.Equal(t, "as is", out.String())
}

func TestProcessScriptSaveWritesOnce(t *testing.T) {
	j, out := newJob("", `ed.type("a") ed.save()`, options{})
	require.NoError(t, j.process(context.Background(), config.Default()))
	assert.Equal(t, "a", out.String())
}

func TestProcessWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	j, out := newJob("x", `ed.move("end") ed.type("yz")`, options{OutputPath: path})
	require.NoError(t, j.process(context.Background(), config.Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(data))
	assert.Empty(t, out.String())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessUsesSettings(t *testing.T) {
	s := config.Default()
	s.Editor.TabText = "  "
	s.Editor.LineEnding = "crlf"

	j, out := newJob("a\nb", `ed.tab()`, options{})
	require.NoError(t, j.process(context.Background(), s))
	assert.Equal(t, "  a\r\nb", out.String())
}

func TestProcessScriptError(t *testing.T) {
	j, out := newJob("keep", `error("nope")`, options{})
	err := j.process(context.Background(), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Empty(t, out.String())
}

func TestProcessReadOnly(t *testing.T) {
	j, out := newJob("fixed", `ed.type("zz")`, options{ReadOnly: true})
	require.NoError(t, j.process(context.Background(), config.Default()))
	assert.Equal(t, "fixed", out.String())
}

func TestProcessRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	j, _ := newJob("", `ed.type("ab")`, options{})
	j.metrics = metrics.New(reg)

	require.NoError(t, j.process(context.Background(), config.Default()))
	assert.Equal(t, float64(2), testutil.ToFloat64(j.metrics.Intents.WithLabelValues("insert_char")))
}

func TestLoadSettingsOverride(t *testing.T) {
	s, err := loadSettings(options{LogLevel: "debug"})
	require.NoError(t, err)
	level, err := s.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = loadSettings(options{LogLevel: "chatty"})
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}
