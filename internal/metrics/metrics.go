package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/elabx-org/identify/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records probe and lookup outcomes on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	probes        *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	lookups       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identify",
			Name:      "provider_probes_total",
			Help:      "Provider probes by source and outcome.",
		}, []string{"source", "outcome"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "identify",
			Name:      "provider_probe_duration_seconds",
			Help:      "Provider probe latency, including the avatar check.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identify",
			Name:      "lookups_total",
			Help:      "Identity resolutions by winning source and result.",
		}, []string{"source", "result"}),
	}
	m.registry.MustRegister(
		m.probes,
		m.probeDuration,
		m.lookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveProbe(source string, outcome provider.Outcome, d time.Duration) {
	m.probes.WithLabelValues(source, string(outcome)).Inc()
	m.probeDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) ObserveLookup(r provider.Result) {
	m.lookups.WithLabelValues(r.Source, ResultLabel(r)).Inc()
}

// ResultLabel names a result for metrics and audit entries.
func ResultLabel(r provider.Result) string {
	switch {
	case r.Success:
		return "found"
	case errors.Is(r.Err(), provider.ErrInvalidEmail):
		return "invalid_email"
	default:
		return "no_result"
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
