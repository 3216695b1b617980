package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	slots       *prometheus.CounterVec
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	cache       *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry, so tests can build
// as many as they like.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	slots := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplan_slots_total",
			Help: "Meal slots processed by the generator, by outcome",
		},
		[]string{"outcome"},
	)

	generations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplan_generations_total",
			Help: "Generation runs, by mode (preview or persisted)",
		},
		[]string{"mode"},
	)

	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mealplan_generation_duration_seconds",
			Help:    "Time spent generating one plan",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	cache := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplan_candidate_cache_total",
			Help: "Candidate cache lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		slots,
		generations,
		duration,
		cache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:    registry,
		slots:       slots,
		generations: generations,
		duration:    duration,
		cache:       cache,
	}
}

// RecordSlot counts one slot outcome.
func (c *Collector) RecordSlot(outcome string) {
	c.slots.WithLabelValues(outcome).Inc()
}

// RecordGeneration counts a run and observes how long it took.
func (c *Collector) RecordGeneration(mode string, elapsed time.Duration) {
	c.generations.WithLabelValues(mode).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// RecordCache counts a candidate cache lookup.
func (c *Collector) RecordCache(result string) {
	c.cache.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SlotCounter returns the slot counter for outcome.
func (c *Collector) SlotCounter(outcome string) prometheus.Counter {
	return c.slots.WithLabelValues(outcome)
}

// GenerationCounter returns the run counter for mode.
func (c *Collector) GenerationCounter(mode string) prometheus.Counter {
	return c.generations.WithLabelValues(mode)
}

// CacheCounter returns the cache lookup counter for result.
func (c *Collector) CacheCounter(result string) prometheus.Counter {
	return c.cache.WithLabelValues(result)
}
