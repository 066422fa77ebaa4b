// Package sanity provides the framework that runs sanity tests against a
// content tree and collects their results.
package sanity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/efebarandurmaz/doccheck/internal/subprocess"
)

// Target is a source file known to the framework.
type Target struct {
	Path    string   `json:"path"`
	Module  string   `json:"module,omitempty"`  // Module name when the file is a module
	Modules []string `json:"modules,omitempty"` // All logical names the file documents
}

// Targets is the target set handed to a test.
type Targets struct {
	Targets []Target // Every target in the content tree
	Include []Target // Targets selected for this run
}

// Paths returns the paths of the given targets in order.
func Paths(targets []Target) []string {
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		paths = append(paths, t.Path)
	}
	return paths
}

// Message is a single error reported by a test.
type Message struct {
	Text   string `json:"message"`
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Code   string `json:"code,omitempty"`
}

func (m Message) String() string {
	s := fmt.Sprintf("%s:%d:%d: ", m.Path, m.Line, m.Column)
	if m.Code != "" {
		s += m.Code + ": "
	}
	return s + m.Text
}

// Env carries the collaborators a test needs to run.
type Env struct {
	Root     string              // Content root; command working directory
	Prefix   string              // Collection prefix prepended to logical names
	Runner   subprocess.Runner   // Executes external commands
	Coverage *subprocess.Coverage // Optional coverage wrapper
	ExtraEnv map[string]string   // Added to every command environment
	Settings *Settings
	Logger   *slog.Logger
}

// Log returns the configured logger or the slog default.
func (e *Env) Log() *slog.Logger {
	if e == nil || e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// TestSettings returns the settings for the named test, never nil.
func (e *Env) TestSettings(name string) *TestSettings {
	if e == nil || e.Settings == nil {
		return (&Settings{}).ForTest(name)
	}
	return e.Settings.ForTest(name)
}

// Test is the interface all sanity tests implement.
type Test interface {
	Name() string
	Run(ctx context.Context, env *Env, targets Targets) *Result
}

// Registry stores the available sanity tests by name.
type Registry struct {
	mu    sync.RWMutex
	tests map[string]Test
}

// NewRegistry creates an empty test registry.
func NewRegistry() *Registry {
	return &Registry{tests: make(map[string]Test)}
}

func (r *Registry) Register(t Test) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[t.Name()] = t
}

func (r *Registry) Get(name string) (Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tests[name]
	if !ok {
		return nil, fmt.Errorf("no sanity test named %q", name)
	}
	return t, nil
}

// Names returns the registered test names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tests))
	for name := range r.tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
