// Package ansibledoc implements the ansible-doc sanity test: every module and
// plugin touched by a change must load its documentation through ansible-doc.
package ansibledoc

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/efebarandurmaz/doccheck/internal/sanity"
	"github.com/efebarandurmaz/doccheck/internal/subprocess"
)

// Name is the sanity test name used in reports and ignore files.
const Name = "ansible-doc"

// Options configures the test.
type Options struct {
	Command             string   // ansible-doc binary (default "ansible-doc")
	Extensions          []string // Source extensions to check (default .py)
	ExcludedPluginTypes []string // Plugin types ansible-doc cannot document
}

// DefaultOptions returns the standard ansible-doc configuration.
func DefaultOptions() Options {
	return Options{
		Command:             "ansible-doc",
		Extensions:          []string{".py"},
		ExcludedPluginTypes: DefaultExcludedPluginTypes,
	}
}

// Test is the ansible-doc sanity test.
type Test struct {
	opts Options
}

// New creates the test. Zero-valued option fields take their defaults.
func New(opts Options) *Test {
	def := DefaultOptions()
	if opts.Command == "" {
		opts.Command = def.Command
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = def.Extensions
	}
	if opts.ExcludedPluginTypes == nil {
		opts.ExcludedPluginTypes = def.ExcludedPluginTypes
	}
	return &Test{opts: opts}
}

func (t *Test) Name() string { return Name }

// SelectTargets keeps included targets with a checked extension that the
// settings do not skip.
func (t *Test) SelectTargets(include []sanity.Target, settings *sanity.TestSettings) []sanity.Target {
	var selected []sanity.Target
	for _, target := range include {
		if slices.Contains(t.opts.Extensions, path.Ext(target.Path)) {
			selected = append(selected, target)
		}
	}
	return settings.FilterSkippedTargets(selected)
}

func (t *Test) Run(ctx context.Context, env *sanity.Env, targets sanity.Targets) *sanity.Result {
	if env == nil {
		env = &sanity.Env{}
	}
	log := env.Log().With("test", Name)
	settings := env.TestSettings(Name)

	included := t.SelectTargets(targets.Include, settings)
	if len(included) == 0 {
		return sanity.Skipped(Name)
	}
	paths := sanity.Paths(included)

	categories := BuildCategories(targets.Targets, included, env.Prefix, t.opts.ExcludedPluginTypes)
	if categories.Empty() {
		return sanity.Skipped(Name)
	}

	runner := env.Runner
	if runner == nil {
		runner = &subprocess.ExecRunner{}
	}
	cmdEnv := subprocess.Environment(env.Root, false, env.ExtraEnv)

	var messages []sanity.Message
	for _, category := range categories.Sorted() {
		args := append([]string{t.opts.Command, "-t", category}, categories.Names[category]...)
		cmd := env.Coverage.Wrap(subprocess.Command{Args: args, Env: cmdEnv, Dir: env.Root}, Name)

		log.Debug("running ansible-doc", "category", category, "names", len(categories.Names[category]))
		stdout, stderr, err := runner.Run(ctx, cmd)

		var status int
		var procErr *subprocess.SubprocessError
		if errors.As(err, &procErr) {
			status = procErr.Status
		} else if err != nil {
			return sanity.Failure(Name, fmt.Sprintf("unable to run %s: %v", t.opts.Command, err), nil)
		}

		if len(stderr) > 0 {
			if parsed, ok := parseStderr(string(stderr), categories); ok {
				messages = append(messages, parsed...)
				continue
			}
		}

		if status != 0 {
			summary := (&subprocess.SubprocessError{Cmd: args, Status: status, Stderr: string(stderr)}).Error()
			return sanity.Failure(Name, summary, nil)
		}

		if out := strings.TrimSpace(string(stdout)); out != "" {
			log.Debug("ansible-doc output", "category", category, "stdout", out)
		}

		if len(stderr) > 0 {
			summary := "Output on stderr from ansible-doc is considered an error.\n\n" +
				(&subprocess.SubprocessError{Cmd: args, Stderr: string(stderr)}).Error()
			return sanity.Failure(Name, summary, nil)
		}
	}

	messages = settings.ProcessErrors(messages, paths)
	if len(messages) > 0 {
		return sanity.Failure(Name, "", messages)
	}
	return sanity.Success(Name)
}

// parseStderr parses every stderr line. ok is false unless there is at least
// one line and every line is an ansible-doc error.
func parseStderr(stderr string, categories *Categories) ([]sanity.Message, bool) {
	lines := StderrLines(stderr)
	if len(lines) == 0 {
		return nil, false
	}

	var messages []sanity.Message
	for _, line := range lines {
		msg, matched := ParseLine(line, categories)
		if !matched {
			return nil, false
		}
		if msg != nil {
			messages = append(messages, *msg)
		}
	}
	return messages, true
}
