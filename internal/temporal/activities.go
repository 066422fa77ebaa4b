package temporal

import (
	"context"
	"errors"

	"github.com/efebarandurmaz/doccheck/internal/app"
	"github.com/efebarandurmaz/doccheck/internal/sanity"
)

// TestResult is the serializable result of one sanity test.
type TestResult struct {
	Name     string
	Status   string
	Summary  string
	Messages []string
}

// Dependencies holds shared resources injected into activities.
type Dependencies struct {
	App *app.App
}

var deps *Dependencies

// SetDependencies injects shared resources (called during worker setup).
func SetDependencies(d *Dependencies) {
	deps = d
}

func ListTestsActivity(ctx context.Context) ([]string, error) {
	if deps == nil || deps.App == nil {
		return nil, errors.New("worker dependencies not configured")
	}
	if tests := deps.App.Config.Sanity.Tests; len(tests) > 0 {
		return tests, nil
	}
	return deps.App.Registry.Names(), nil
}

func SanityActivity(ctx context.Context, test string, includes []string) (TestResult, error) {
	if deps == nil || deps.App == nil {
		return TestResult{}, errors.New("worker dependencies not configured")
	}

	report, err := deps.App.Run(ctx, []string{test}, includes)
	if err != nil {
		return TestResult{}, err
	}
	if len(report.Results) != 1 {
		return TestResult{}, errors.New("expected exactly one result")
	}
	return toTestResult(report.Results[0]), nil
}

func toTestResult(r *sanity.Result) TestResult {
	tr := TestResult{Name: r.Name, Status: string(r.Status), Summary: r.Summary}
	for _, m := range r.Messages {
		tr.Messages = append(tr.Messages, m.String())
	}
	return tr
}
