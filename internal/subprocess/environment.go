package subprocess

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Environment builds the environment for ansible commands run against the
// content tree at root. extra overrides the defaults, except for the color
// settings, which always follow color.
func Environment(root string, color bool, extra map[string]string) []string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	vars["ANSIBLE_DEPRECATION_WARNINGS"] = "false"
	vars["ANSIBLE_HOST_KEY_CHECKING"] = "false"
	vars["ANSIBLE_RETRY_FILES_ENABLED"] = "false"
	vars["PAGER"] = "/bin/cat"
	vars["PYTHONDONTWRITEBYTECODE"] = "1"

	if root != "" {
		lib := filepath.Join(root, "lib")
		if existing := vars["PYTHONPATH"]; existing != "" {
			lib += string(os.PathListSeparator) + existing
		}
		vars["PYTHONPATH"] = lib
	}

	for k, v := range extra {
		vars[k] = v
	}

	vars["ANSIBLE_FORCE_COLOR"] = boolString(color)
	if !color {
		vars["ANSIBLE_NOCOLOR"] = "true"
	} else {
		delete(vars, "ANSIBLE_NOCOLOR")
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Coverage wraps commands so they run under a coverage collector.
type Coverage struct {
	Enabled   bool
	Command   []string // e.g. ["coverage", "run", "--parallel-mode", "--"]
	OutputDir string
}

// Wrap returns cmd prefixed with the coverage command and with COVERAGE_FILE
// pointing at a per-target data file. Disabled coverage returns cmd unchanged.
func (c *Coverage) Wrap(cmd Command, targetName string) Command {
	if c == nil || !c.Enabled || len(c.Command) == 0 {
		return cmd
	}

	wrapped := Command{Dir: cmd.Dir}
	wrapped.Args = append(append([]string{}, c.Command...), cmd.Args...)

	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	wrapped.Env = append(append([]string{}, env...), "COVERAGE_FILE="+filepath.Join(dir, "coverage="+targetName))
	return wrapped
}
