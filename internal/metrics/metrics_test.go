package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentCounter(t *testing.T) {
	m := New(nil)
	m.ObserveIntent("insert_char")
	m.ObserveIntent("insert_char")
	m.ObserveIntent("undo")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Intents.WithLabelValues("insert_char")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Intents.WithLabelValues("undo")))
}

func TestGauges(t *testing.T) {
	m := New(nil)
	m.SetUndoDepth("ed-1", 7)
	m.ObserveSearch("ed-1", 3*time.Millisecond, 42)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.UndoDepth.WithLabelValues("ed-1")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.SearchMatches.WithLabelValues("ed-1")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration))

	m.Forget("ed-1")
	assert.Equal(t, 0, testutil.CollectAndCount(m.UndoDepth))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveIntent("move")

	expected := `
# HELP quill_editor_intents_total Total number of intents processed, by kind
# TYPE quill_editor_intents_total counter
quill_editor_intents_total{kind="move"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quill_editor_intents_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIntent("x")
		m.SetUndoDepth("e", 1)
		m.ObserveSearch("e", time.Second, 1)
		m.Forget("e")
	})
}
