package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var promNameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_")

// PrometheusMetrics implements Metrics on a Prometheus registry. Vectors are
// created on first use with the label keys of that call; later calls for the
// same metric must use the same keys or the observation is dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector backed by a fresh registry that
// also exports Go runtime and process metrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry exposes the underlying registry.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	keys, values := splitTags(tags)
	promName := PrometheusName(name)
	if !strings.HasSuffix(promName, "_total") {
		promName += "_total"
	}

	p.mu.Lock()
	vec, ok := p.counters[promName]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: promName, Help: name}, keys)
		if p.registry.Register(vec) != nil {
			p.mu.Unlock()
			return
		}
		p.counters[promName] = vec
	}
	p.mu.Unlock()

	if c, err := vec.GetMetricWithLabelValues(values...); err == nil {
		c.Add(float64(value))
	}
}

func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	keys, values := splitTags(tags)
	promName := PrometheusName(name)

	p.mu.Lock()
	vec, ok := p.gauges[promName]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: promName, Help: name}, keys)
		if p.registry.Register(vec) != nil {
			p.mu.Unlock()
			return
		}
		p.gauges[promName] = vec
	}
	p.mu.Unlock()

	if g, err := vec.GetMetricWithLabelValues(values...); err == nil {
		g.Set(value)
	}
}

func (p *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	p.observe(PrometheusName(name), name, prometheus.DefBuckets, value, tags)
}

// Timing records durations in seconds on a histogram suffixed _seconds.
func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	p.observe(PrometheusName(name)+"_seconds", name, prometheus.DefBuckets, duration.Seconds(), tags)
}

func (p *PrometheusMetrics) observe(promName, help string, buckets []float64, value float64, tags []Tag) {
	keys, values := splitTags(tags)

	p.mu.Lock()
	vec, ok := p.histograms[promName]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    promName,
			Help:    help,
			Buckets: buckets,
		}, keys)
		if p.registry.Register(vec) != nil {
			p.mu.Unlock()
			return
		}
		p.histograms[promName] = vec
	}
	p.mu.Unlock()

	if h, err := vec.GetMetricWithLabelValues(values...); err == nil {
		h.Observe(value)
	}
}

// PrometheusName converts a dotted metric name to a valid Prometheus name.
func PrometheusName(name string) string {
	return promNameReplacer.Replace(name)
}

// splitTags returns label keys and values ordered by key.
func splitTags(tags []Tag) ([]string, []string) {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	keys := make([]string, len(sorted))
	values := make([]string, len(sorted))
	for i, t := range sorted {
		keys[i] = PrometheusName(t.Key)
		values[i] = t.Value
	}
	return keys, values
}
