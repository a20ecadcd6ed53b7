// Package metrics exposes editor activity as Prometheus collectors.
//
// The engine only records; serving the registry is the host's job.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quill"

// Metrics holds the editor collectors. A nil *Metrics records nothing.
type Metrics struct {
	Intents        *prometheus.CounterVec
	UndoDepth      *prometheus.GaugeVec
	SearchDuration prometheus.Histogram
	SearchMatches  *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "editor",
				Name:      "intents_total",
				Help:      "Total number of intents processed, by kind",
			},
			[]string{"kind"},
		),
		UndoDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "undo_depth",
				Help:      "Number of entries on the undo stack",
			},
			[]string{"editor"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "scan_duration_seconds",
				Help:      "Time spent scanning a document for matches",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
		),
		SearchMatches: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "matches",
				Help:      "Number of matches from the latest scan",
			},
			[]string{"editor"},
		),
	}
}

// ObserveIntent counts one intent of the given kind.
func (m *Metrics) ObserveIntent(kind string) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(kind).Inc()
}

// SetUndoDepth records the undo stack depth of an editor.
func (m *Metrics) SetUndoDepth(editor string, depth int) {
	if m == nil {
		return
	}
	m.UndoDepth.WithLabelValues(editor).Set(float64(depth))
}

// ObserveSearch records one scan.
func (m *Metrics) ObserveSearch(editor string, d time.Duration, matches int) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(d.Seconds())
	m.SearchMatches.WithLabelValues(editor).Set(float64(matches))
}

// Forget drops the per-editor series of an editor that is going away.
func (m *Metrics) Forget(editor string) {
	if m == nil {
		return
	}
	m.UndoDepth.DeleteLabelValues(editor)
	m.SearchMatches.DeleteLabelValues(editor)
}
