package crawler

import (
	"bytes"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics bundles Prometheus collectors for the crawl.
type Metrics struct {
	Registry        *prometheus.Registry
	ChaptersFetched prometheus.Counter
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_chapters_fetched_total",
			Help: "Total chapters fetched and persisted.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_retries_total",
			Help: "Total chapter fetch retries scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total chapter fetch errors by type.",
		},
		[]string{"error_type"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "Chapter fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(fetched, retries, errorsTotal, fetchDuration)

	return &Metrics{
		Registry:        registry,
		ChaptersFetched: fetched,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
		FetchDuration:   fetchDuration,
	}
}

func (m *Metrics) IncFetched() {
	if m == nil {
		return
	}
	m.ChaptersFetched.Inc()
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// Render gathers every collector and returns the text exposition format,
// suitable for the end-of-run debug dump.
func (m *Metrics) Render() string {
	if m == nil {
		return ""
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return ""
		}
	}
	return buf.String()
}
