package ansibledoc

import (
	"regexp"
	"strings"

	"github.com/efebarandurmaz/doccheck/internal/sanity"
)

// errorPattern matches ansible-doc error lines, for example:
//
//	ERROR! module ping missing documentation (or could not parse documentation): expected string or buffer
//	[ERROR]: module ping has a documentation error formatting or is missing documentation.
var errorPattern = regexp.MustCompile(`^[^ ]*ERROR[^ ]* (?P<type>[^ ]+) (?P<name>[^ ]+) (?P<text>.*)$`)

var (
	typeIndex = errorPattern.SubexpIndex("type")
	nameIndex = errorPattern.SubexpIndex("name")
	textIndex = errorPattern.SubexpIndex("text")
)

// ParseLine parses one stderr line. matched reports whether the line is an
// ansible-doc error at all; msg is nil when it is but names something
// outside the path index.
func ParseLine(line string, categories *Categories) (msg *sanity.Message, matched bool) {
	m := errorPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	p, ok := categories.Lookup(m[typeIndex], m[nameIndex])
	if !ok {
		return nil, true
	}
	return &sanity.Message{Text: m[textIndex], Path: p}, true
}

// StderrLines splits stderr into the lines ParseLine is applied to. Leading
// and trailing whitespace is dropped first; blank lines inside the output are
// kept and never match. Blank stderr has no lines.
func StderrLines(stderr string) []string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
