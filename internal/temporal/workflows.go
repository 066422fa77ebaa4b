package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"
)

// SanityInput holds the workflow parameters.
type SanityInput struct {
	Tests    []string // Empty runs every registered test
	Includes []string // Include globs; empty selects every target
}

// SanityOutput holds the workflow result.
type SanityOutput struct {
	Passed  bool
	Results []TestResult
}

// SanityWorkflow runs each requested sanity test as its own activity so a
// crashed worker only repeats the test it was running.
func SanityWorkflow(ctx workflow.Context, input SanityInput) (*SanityOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	tests := input.Tests
	if len(tests) == 0 {
		if err := workflow.ExecuteActivity(ctx, ListTestsActivity).Get(ctx, &tests); err != nil {
			return nil, fmt.Errorf("list tests: %w", err)
		}
	}

	out := &SanityOutput{Passed: true}
	for _, name := range tests {
		var result TestResult
		if err := workflow.ExecuteActivity(ctx, SanityActivity, name, input.Includes).Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if result.Status == "failure" {
			out.Passed = false
		}
		out.Results = append(out.Results, result)
	}

	workflow.GetLogger(ctx).Info("sanity workflow finished", "tests", len(out.Results), "passed", out.Passed)
	return out, nil
}
