package observability

import (
	"strings"
	"sync"
	"time"
)

// Metrics records application metrics. Implementations must be safe for
// concurrent use.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag represents a key-value pair for metric labeling.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)           {}
func (NoopMetrics) Gauge(string, float64, ...Tag)           {}
func (NoopMetrics) Histogram(string, float64, ...Tag)       {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag)    {}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}

// InMemoryMetrics keeps every observation in memory. Tests assert on it.
type InMemoryMetrics struct {
	mu         sync.RWMutex
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
	timings    map[string][]time.Duration
}

// NewInMemoryMetrics creates a new in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
		timings:    make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.counters[key] += value
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.gauges[key] = value
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.histograms[key] = append(m.histograms[key], value)
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.timings[key] = append(m.timings[key], duration)
}

// GetCounter returns the current value of a counter.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[formatKey(name, tags)]
}

// GetGauge returns the current value of a gauge.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[formatKey(name, tags)]
}

// GetHistogram returns all recorded values for a histogram.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.histograms[formatKey(name, tags)]
}

// GetTimings returns all recorded timings.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timings[formatKey(name, tags)]
}

// Reset clears all recorded metrics.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.histograms = make(map[string][]float64)
	m.timings = make(map[string][]time.Duration)
}

func formatKey(name string, tags []Tag) string {
	var b strings.Builder
	b.WriteString(name)
	for _, t := range tags {
		b.WriteString(":")
		b.WriteString(t.Key)
		b.WriteString("=")
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names. Dots become underscores when exported to Prometheus.
const (
	MetricOperationTotal    = "kafeel.operation.total"
	MetricOperationDuration = "kafeel.operation.duration"
	MetricOperationErrors   = "kafeel.operation.errors"

	MetricSessionsRecorded = "kafeel.sessions.recorded"
	MetricSessionsDropped  = "kafeel.sessions.dropped"
	MetricSessionSeconds   = "kafeel.sessions.seconds"

	MetricFocusScore            = "kafeel.focus.score"
	MetricXPGranted             = "kafeel.xp.granted"
	MetricLevel                 = "kafeel.profile.level"
	MetricStreakDays            = "kafeel.streak.days"
	MetricAchievementsUnlocked  = "kafeel.achievements.unlocked"
	MetricRecordsImproved       = "kafeel.records.improved"
	MetricPersistenceErrors     = "kafeel.persistence.errors"
	MetricDaysEvaluated         = "kafeel.days.evaluated"

	MetricEventsPublished = "kafeel.events.published"
	MetricEventsFailed    = "kafeel.events.failed"
	MetricEventsDead      = "kafeel.events.dead"
	MetricEventsConsumed  = "kafeel.events.consumed"
	MetricOutboxLag       = "kafeel.outbox.lag_seconds"
	MetricBreakerOpen     = "kafeel.publisher.breaker_open"
)
