package sanity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// IgnoreEntry is one line of an ignore file.
type IgnoreEntry struct {
	Path string
	Test string
	Code string // Empty when the entry covers every error on the path
	Skip bool   // Entry ends in "!skip"
	Line int
}

// Settings holds the ignore and skip entries for all tests.
//
// The file format is one entry per line:
//
//	lib/ansible/modules/ping.py ansible-doc          ignore errors on the path
//	lib/ansible/modules/ping.py validate:E101        ignore a single error code
//	lib/ansible/modules/ping.py ansible-doc!skip     do not test the path at all
type Settings struct {
	File    string
	Entries []IgnoreEntry
}

// LoadSettings reads an ignore file. A missing file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return &Settings{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{File: path}, nil
		}
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close()

	s, err := ParseSettings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.File = path
	return s, nil
}

// ParseSettings parses ignore entries from r.
func ParseSettings(r io.Reader) (*Settings, error) {
	s := &Settings{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"path test\", got %q", lineNo, line)
		}
		entry := IgnoreEntry{Path: fields[0], Test: fields[1], Line: lineNo}
		if name, ok := strings.CutSuffix(entry.Test, "!skip"); ok {
			entry.Test = name
			entry.Skip = true
		} else if name, code, ok := strings.Cut(entry.Test, ":"); ok {
			if code == "" {
				return nil, fmt.Errorf("line %d: empty error code", lineNo)
			}
			entry.Test = name
			entry.Code = code
		}
		if entry.Test == "" {
			return nil, fmt.Errorf("line %d: missing test name", lineNo)
		}
		s.Entries = append(s.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore entries: %w", err)
	}
	return s, nil
}

// ForTest returns the entries that apply to the named test.
func (s *Settings) ForTest(name string) *TestSettings {
	ts := &TestSettings{test: name, file: s.File}
	for _, e := range s.Entries {
		if e.Test != name {
			continue
		}
		if e.Skip {
			ts.skip = append(ts.skip, e)
		} else {
			ts.ignore = append(ts.ignore, e)
		}
	}
	return ts
}

// TestSettings is the slice of Settings relevant to one test.
type TestSettings struct {
	test   string
	file   string
	skip   []IgnoreEntry
	ignore []IgnoreEntry
}

// FilterSkippedTargets removes targets marked "!skip" for this test.
func (ts *TestSettings) FilterSkippedTargets(targets []Target) []Target {
	if len(ts.skip) == 0 {
		return targets
	}
	skipped := make(map[string]bool, len(ts.skip))
	for _, e := range ts.skip {
		skipped[e.Path] = true
	}
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if !skipped[t.Path] {
			out = append(out, t)
		}
	}
	return out
}

// ProcessErrors drops messages covered by an ignore entry and reports ignore
// entries for tested paths that matched nothing.
func (ts *TestSettings) ProcessErrors(messages []Message, paths []string) []Message {
	used := make([]bool, len(ts.ignore))
	var out []Message

	for _, m := range messages {
		ignored := false
		for i, e := range ts.ignore {
			if e.Path == m.Path && (e.Code == "" || e.Code == m.Code) {
				used[i] = true
				ignored = true
			}
		}
		if !ignored {
			out = append(out, m)
		}
	}

	tested := make(map[string]bool, len(paths))
	for _, p := range paths {
		tested[p] = true
	}
	for i, e := range ts.ignore {
		if used[i] || !tested[e.Path] {
			continue
		}
		text := fmt.Sprintf("Ignoring '%s' is unnecessary", e.Path)
		if e.Code != "" {
			text = fmt.Sprintf("Ignoring '%s' on '%s' is unnecessary", e.Code, e.Path)
		}
		out = append(out, Message{Text: text, Path: ts.file, Line: e.Line, Column: 1})
	}

	return out
}
