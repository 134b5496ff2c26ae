// Package promobs exports observability metrics to Prometheus. Tracing and
// logging are delegated to a base provider, usually the slog observer.
package promobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Navanit-git/genai-advance/providers/observability"
)

// DefaultBuckets are the millisecond buckets used for duration histograms.
var DefaultBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000}

// metricDef pins a generic metric name to a Prometheus name and a fixed
// label set. Label values are read from the attributes passed at record
// time, keyed by the observability attribute name.
type metricDef struct {
	promName string
	help     string
	labels   []label
}

type label struct {
	name string
	attr string
}

var (
	outcomeLabel  = label{name: "outcome", attr: observability.AttrExtractionOutcome}
	modeLabel     = label{name: "mode", attr: observability.AttrExtractionMode}
	providerLabel = label{name: "provider", attr: observability.AttrLLMProvider}
	modelLabel    = label{name: "model", attr: observability.AttrLLMModel}
	statusLabel   = label{name: "status", attr: observability.AttrStatus}
)

var knownCounters = map[string]metricDef{
	observability.MetricExtractionCount: {
		promName: "genai_structured_extractions_total",
		help:     "Structured extractions by outcome.",
		labels:   []label{outcomeLabel, modeLabel, providerLabel},
	},
	observability.MetricClientRequestCount: {
		promName: "genai_client_requests_total",
		help:     "Chat requests sent to providers by status.",
		labels:   []label{providerLabel, modelLabel, statusLabel},
	},
	observability.MetricClientTokensTotal: {
		promName: "genai_client_tokens_total",
		help:     "Total tokens reported by providers.",
		labels:   []label{providerLabel, modelLabel},
	},
}

var knownHistograms = map[string]metricDef{
	observability.MetricExtractionDuration: {
		promName: "genai_structured_extraction_duration_ms",
		help:     "Duration of structured extractions in milliseconds, re-prompts included.",
		labels:   []label{outcomeLabel},
	},
	observability.MetricClientRequestDuration: {
		promName: "genai_client_request_duration_ms",
		help:     "Duration of chat requests in milliseconds.",
		labels:   []label{providerLabel},
	},
}

// Observer implements observability.Provider with Prometheus metrics.
type Observer struct {
	observability.Tracer
	observability.Logger

	registry   *prometheus.Registry
	buckets    []float64
	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

// Option configures an Observer.
type Option func(*Observer)

// WithRegistry registers the metrics on r instead of a private registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *Observer) {
		o.registry = r
	}
}

// WithBuckets overrides DefaultBuckets.
func WithBuckets(buckets ...float64) Option {
	return func(o *Observer) {
		o.buckets = buckets
	}
}

// New returns an observer that exports metrics to Prometheus and forwards
// spans and log records to base.
func New(base observability.Provider, opts ...Option) *Observer {
	o := &Observer{
		Tracer:     base,
		Logger:     base,
		buckets:    DefaultBuckets,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	return o
}

var _ observability.Provider = (*Observer)(nil)

// Registry returns the Prometheus registry for HTTP exposure
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Counter returns the counter registered under name, creating it on first use.
func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.counters[name]; ok {
		return c
	}

	def, ok := knownCounters[name]
	if !ok {
		def = metricDef{promName: promName(name) + "_total", help: name}
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: def.promName, Help: def.help}, labelNames(def.labels))
	c := &counter{vec: vec, labels: def.labels}
	if err := o.registry.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(fmt.Sprintf("promobs: register counter %s: %v", def.promName, err))
		}
		c.vec = are.ExistingCollector.(*prometheus.CounterVec)
	}
	o.counters[name] = c
	return c
}

// Histogram returns the histogram registered under name, creating it on first use.
func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok := o.histograms[name]; ok {
		return h
	}

	def, ok := knownHistograms[name]
	if !ok {
		def = metricDef{promName: promName(name), help: name}
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    def.promName,
		Help:    def.help,
		Buckets: o.buckets,
	}, labelNames(def.labels))
	h := &histogram{vec: vec, labels: def.labels}
	if err := o.registry.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(fmt.Sprintf("promobs: register histogram %s: %v", def.promName, err))
		}
		h.vec = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	o.histograms[name] = h
	return h
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []label
}

func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	if value < 0 {
		return
	}
	c.vec.WithLabelValues(labelValues(c.labels, attrs)...).Add(float64(value))
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []label
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.vec.WithLabelValues(labelValues(h.labels, attrs)...).Observe(value)
}

func labelNames(labels []label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.name
	}
	return names
}

func labelValues(labels []label, attrs []observability.Attribute) []string {
	values := make([]string, len(labels))
	for i, l := range labels {
		if v, ok := observability.Lookup(attrs, l.attr); ok {
			values[i] = fmt.Sprint(v)
		}
	}
	return values
}

// promName turns a dotted metric name into a Prometheus metric name.
func promName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}
