// Package metrics exposes prometheus collectors for journal ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors recorded by the journal engine.
type Metrics struct {
	EntriesIngested *prometheus.CounterVec
	Edges           *prometheus.CounterVec
	EntrySentiment  prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rapport",
			Name:      "entries_ingested_total",
			Help:      "Journal entries analyzed, by operation.",
		}, []string{"op"}),
		Edges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rapport",
			Name:      "edges_total",
			Help:      "Relationship edges touched, by result.",
		}, []string{"result"}),
		EntrySentiment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rapport",
			Name:      "entry_sentiment",
			Help:      "Sentiment score of analyzed entries.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.EntriesIngested, m.Edges, m.EntrySentiment)
	}
	return m
}

// ObserveEntry records one analyzed entry.
func (m *Metrics) ObserveEntry(op string, sentiment float64) {
	if m == nil {
		return
	}
	m.EntriesIngested.WithLabelValues(op).Inc()
	m.EntrySentiment.Observe(sentiment)
}

// ObserveEdges records created and updated edge counts.
func (m *Metrics) ObserveEdges(created, updated int) {
	if m == nil {
		return
	}
	m.Edges.WithLabelValues("created").Add(float64(created))
	m.Edges.WithLabelValues("updated").Add(float64(updated))
}
