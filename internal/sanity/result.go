package sanity

import (
	"fmt"
	"strings"
	"time"
)

// Status is the terminal outcome of a sanity test.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Result captures the outcome of a single sanity test run.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Summary  string        `json:"summary,omitempty"`
	Messages []Message     `json:"messages,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Success reports a passing test.
func Success(name string) *Result {
	return &Result{Name: name, Status: StatusSuccess}
}

// Failure reports a failing test. Either summary or messages should be set.
func Failure(name, summary string, messages []Message) *Result {
	return &Result{Name: name, Status: StatusFailure, Summary: summary, Messages: messages}
}

// Skipped reports a test that had nothing to check.
func Skipped(name string) *Result {
	return &Result{Name: name, Status: StatusSkipped}
}

// Details renders the summary and messages as plain text.
func (r *Result) Details() string {
	var b strings.Builder
	if r.Summary != "" {
		b.WriteString(strings.TrimSpace(r.Summary))
		b.WriteString("\n")
	}
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "%s\n", m)
	}
	return b.String()
}
