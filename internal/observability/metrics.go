package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricsRegistry holds all registered metrics.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	histos   map[string]*Histogram
}

// Counter is a monotonically increasing metric, optionally split by one label.
type Counter struct {
	name   string
	help   string
	label  string
	mu     sync.Mutex
	values map[string]float64
}

// Histogram tracks distribution of values.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
	mu      sync.Mutex
}

// NewMetricsRegistry creates a new metrics registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		histos:   make(map[string]*Histogram),
	}
}

// NewCounter creates and registers a counter. label may be empty.
func (r *MetricsRegistry) NewCounter(name, help, label string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{name: name, help: help, label: label, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewHistogram creates and registers a histogram.
func (r *MetricsRegistry) NewHistogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buckets == nil {
		buckets = DefaultBuckets()
	}
	h := &Histogram{name: name, help: help, buckets: buckets, counts: make([]uint64, len(buckets))}
	r.histos[name] = h
	return h
}

// DefaultBuckets returns histogram buckets suited to command durations in seconds.
func DefaultBuckets() []float64 {
	return []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}
}

func (c *Counter) Inc() { c.Add("", 1) }

// IncLabel increments the series for the given label value.
func (c *Counter) IncLabel(value string) { c.Add(value, 1) }

func (c *Counter) Add(labelValue string, v float64) {
	c.mu.Lock()
	c.values[labelValue] += v
	c.mu.Unlock()
}

// Value returns the counter value for a label value ("" when unlabelled).
func (c *Counter) Value(labelValue string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[labelValue]
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += v
	h.count++
	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i]++
		}
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// WritePrometheus writes all metrics in Prometheus text format, sorted by name.
func (r *MetricsRegistry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		c.mu.Lock()
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
		for _, lv := range sortedKeys(c.values) {
			labels := ""
			if c.label != "" {
				labels = fmt.Sprintf("{%s=%q}", c.label, lv)
			}
			fmt.Fprintf(&b, "%s%s %s\n", c.name, labels, formatFloat(c.values[lv]))
		}
		c.mu.Unlock()
	}

	for _, name := range sortedKeys(r.histos) {
		h := r.histos[name]
		h.mu.Lock()
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
		for i, bound := range h.buckets {
			fmt.Fprintf(&b, "%s_bucket{le=%q} %d\n", h.name, formatFloat(bound), h.counts[i])
		}
		fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", h.name, h.count)
		fmt.Fprintf(&b, "%s_sum %s\n%s_count %d\n", h.name, formatFloat(h.sum), h.name, h.count)
		h.mu.Unlock()
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SanityMetrics contains the doccheck run metrics.
type SanityMetrics struct {
	Registry *MetricsRegistry

	TestsTotal      *Counter
	MessagesTotal   *Counter
	CommandsTotal   *Counter
	CommandFailures *Counter
	CommandDuration *Histogram
}

// NewSanityMetrics creates doccheck-specific metrics.
func NewSanityMetrics() *SanityMetrics {
	r := NewMetricsRegistry()
	return &SanityMetrics{
		Registry:        r,
		TestsTotal:      r.NewCounter("doccheck_tests_total", "Sanity tests run by outcome", "status"),
		MessagesTotal:   r.NewCounter("doccheck_messages_total", "Error messages reported by test", "test"),
		CommandsTotal:   r.NewCounter("doccheck_commands_total", "External commands executed", ""),
		CommandFailures: r.NewCounter("doccheck_command_failures_total", "External commands with non-zero exit", ""),
		CommandDuration: r.NewHistogram("doccheck_command_duration_seconds", "External command duration", nil),
	}
}

// RecordTest records the outcome of one sanity test.
func (m *SanityMetrics) RecordTest(test, status string, messages int) {
	m.TestsTotal.IncLabel(status)
	if messages > 0 {
		m.MessagesTotal.Add(test, float64(messages))
	}
}

// RecordCommand records one external command execution.
func (m *SanityMetrics) RecordCommand(duration time.Duration, err error) {
	m.CommandsTotal.Inc()
	m.CommandDuration.Observe(duration.Seconds())
	if err != nil {
		m.CommandFailures.Inc()
	}
}
