package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/efebarandurmaz/doccheck/internal/sanity/ansibledoc"
)

func TestAttributeStderr(t *testing.T) {
	categories := &ansibledoc.Categories{
		Names: map[string][]string{"module": {"ping"}},
		Paths: map[string]map[string]string{"module": {"ping": "lib/ansible/modules/ping.py"}},
	}

	tests := []struct {
		name          string
		stderr        string
		wantUnmatched int
		wantOutput    []string
	}{
		{
			name:       "attributed and unattributed",
			stderr:     "\nERROR! module ping bad docs\n[ERROR]: module copy bad docs\n",
			wantOutput: []string{"lib/ansible/modules/ping.py:0:0: bad docs", "unattributed: [ERROR]: module copy bad docs"},
		},
		{
			name:          "interior blank line",
			stderr:        "ERROR! module ping bad docs\n\nERROR! module ping worse docs\n",
			wantUnmatched: 1,
			wantOutput:    []string{`unparsed: ""`},
		},
		{
			name:          "noise",
			stderr:        "Traceback (most recent call last):\n",
			wantUnmatched: 1,
			wantOutput:    []string{"unparsed:"},
		},
		{name: "blank", stderr: "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := attributeStderr(&buf, tt.stderr, categories); got != tt.wantUnmatched {
				t.Errorf("unmatched = %d, want %d", got, tt.wantUnmatched)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
