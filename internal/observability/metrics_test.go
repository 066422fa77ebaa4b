package observability

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCounter_Inc(t *testing.T) {
	r := NewMetricsRegistry()
	c := r.NewCounter("test_counter", "Test counter", "")

	c.Inc()
	c.Inc()
	c.Add("", 1.5)

	if got := c.Value(""); got != 3.5 {
		t.Fatalf("expected 3.5, got %f", got)
	}
}

func TestCounter_Labels(t *testing.T) {
	r := NewMetricsRegistry()
	c := r.NewCounter("tests_total", "Tests", "status")

	c.IncLabel("success")
	c.IncLabel("failure")
	c.IncLabel("success")

	if got := c.Value("success"); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := c.Value("skipped"); got != 0 {
		t.Errorf("skipped = %v, want 0", got)
	}
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewMetricsRegistry().NewCounter("c", "c", "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	if got := c.Value(""); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestHistogram_Observe(t *testing.T) {
	h := NewMetricsRegistry().NewHistogram("h", "h", []float64{1, 5})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(10)

	if h.Count() != 3 {
		t.Fatalf("got count %d, want 3", h.Count())
	}
	if h.counts[0] != 1 || h.counts[1] != 2 {
		t.Errorf("got bucket counts %v, want [1 2]", h.counts)
	}
}

func TestWritePrometheus(t *testing.T) {
	r := NewMetricsRegistry()
	c := r.NewCounter("b_total", "B things", "status")
	c.IncLabel("failure")
	plain := r.NewCounter("a_total", "A things", "")
	plain.Inc()
	h := r.NewHistogram("c_seconds", "C durations", []float64{0.5})
	h.Observe(0.25)

	var sb strings.Builder
	if err := r.WritePrometheus(&sb); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"# TYPE a_total counter\na_total 1\n",
		`b_total{status="failure"} 1`,
		"# TYPE c_seconds histogram",
		`c_seconds_bucket{le="0.5"} 1`,
		`c_seconds_bucket{le="+Inf"} 1`,
		"c_seconds_sum 0.25",
		"c_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "a_total") > strings.Index(out, "b_total") {
		t.Errorf("counters should be sorted by name:\n%s", out)
	}
}

func TestSanityMetrics(t *testing.T) {
	m := NewSanityMetrics()

	m.RecordTest("ansible-doc", "failure", 3)
	m.RecordTest("ansible-doc", "skipped", 0)
	m.RecordCommand(2*time.Second, nil)
	m.RecordCommand(time.Second, errors.New("exit status 1"))

	if got := m.TestsTotal.Value("failure"); got != 1 {
		t.Errorf("failure tests = %v, want 1", got)
	}
	if got := m.MessagesTotal.Value("ansible-doc"); got != 3 {
		t.Errorf("messages = %v, want 3", got)
	}
	if got := m.CommandsTotal.Value(""); got != 2 {
		t.Errorf("commands = %v, want 2", got)
	}
	if got := m.CommandFailures.Value(""); got != 1 {
		t.Errorf("command failures = %v, want 1", got)
	}
	if got := m.CommandDuration.Count(); got != 2 {
		t.Errorf("duration observations = %v, want 2", got)
	}
}
