package sanity

import (
	"context"
	"fmt"
	"time"

	"github.com/efebarandurmaz/doccheck/internal/observability"
)

// Report captures the results of a pipeline run.
type Report struct {
	Status       Status        `json:"status"` // failure if any test failed
	Results      []*Result     `json:"results"`
	PassedCount  int           `json:"passed_count"`
	FailedCount  int           `json:"failed_count"`
	SkippedCount int           `json:"skipped_count"`
	Duration     time.Duration `json:"duration"`
	EvaluatedAt  time.Time     `json:"evaluated_at"`
	Summary      string        `json:"summary"`
}

// Pipeline runs sanity tests one after another against the same targets.
type Pipeline struct {
	registry *Registry
	env      *Env
	metrics  *observability.SanityMetrics
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(registry *Registry, env *Env, metrics *observability.SanityMetrics) *Pipeline {
	if env == nil {
		env = &Env{}
	}
	return &Pipeline{registry: registry, env: env, metrics: metrics}
}

// Run executes the named tests, or every registered test when names is empty.
func (p *Pipeline) Run(ctx context.Context, names []string, targets Targets) (*Report, error) {
	if len(names) == 0 {
		names = p.registry.Names()
	}

	tests := make([]Test, 0, len(names))
	for _, name := range names {
		t, err := p.registry.Get(name)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}

	start := time.Now()
	report := &Report{Status: StatusSuccess, EvaluatedAt: start}

	for _, t := range tests {
		r := p.RunTest(ctx, t, targets)
		report.Results = append(report.Results, r)

		switch r.Status {
		case StatusSuccess:
			report.PassedCount++
		case StatusFailure:
			report.FailedCount++
			report.Status = StatusFailure
		case StatusSkipped:
			report.SkippedCount++
		}
	}

	report.Duration = time.Since(start)
	report.Summary = formatSummary(report)
	return report, nil
}

// RunTest runs a single test with tracing, logging and metrics.
func (p *Pipeline) RunTest(ctx context.Context, t Test, targets Targets) *Result {
	log := p.env.Log().With("test", t.Name())
	ctx, span := observability.StartTestSpan(ctx, t.Name(), len(targets.Include))
	defer span.End()

	log.Debug("running sanity test", "targets", len(targets.Include))
	start := time.Now()
	r := t.Run(ctx, p.env, targets)
	if r == nil {
		r = Failure(t.Name(), "test returned no result", nil)
	}
	r.Duration = time.Since(start)

	observability.RecordTestResult(span, string(r.Status), len(r.Messages))
	if p.metrics != nil {
		p.metrics.RecordTest(t.Name(), string(r.Status), len(r.Messages))
	}

	switch r.Status {
	case StatusFailure:
		log.Warn("sanity test failed", "messages", len(r.Messages), "duration", r.Duration)
	default:
		log.Info("sanity test finished", "status", r.Status, "duration", r.Duration)
	}
	return r
}

func formatSummary(r *Report) string {
	return fmt.Sprintf("Sanity: %d passed, %d failed, %d skipped [%s]",
		r.PassedCount, r.FailedCount, r.SkippedCount, r.Status)
}
