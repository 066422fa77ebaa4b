package ansibledoc

import "testing"

func testCategories() *Categories {
	return &Categories{
		Names: map[string][]string{"module": {"ping"}},
		Paths: map[string]map[string]string{
			"module": {"ping": "lib/ansible/modules/ping.py"},
			"lookup": {"file": "lib/ansible/plugins/lookup/file.py"},
		},
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantMatched bool
		wantText    string
		wantPath    string
	}{
		{
			name:        "bracketed error",
			line:        "[ERROR]: module ping has a documentation error formatting or is missing documentation.",
			wantMatched: true,
			wantText:    "has a documentation error formatting or is missing documentation.",
			wantPath:    "lib/ansible/modules/ping.py",
		},
		{
			name:        "bang error",
			line:        "ERROR! module ping missing documentation (or could not parse documentation): expected string or buffer",
			wantMatched: true,
			wantText:    "missing documentation (or could not parse documentation): expected string or buffer",
			wantPath:    "lib/ansible/modules/ping.py",
		},
		{
			name:        "plugin category",
			line:        "ERROR! lookup file has bad docs",
			wantMatched: true,
			wantText:    "has bad docs",
			wantPath:    "lib/ansible/plugins/lookup/file.py",
		},
		{
			name:        "unknown name",
			line:        "[ERROR]: module copy is missing documentation.",
			wantMatched: true,
		},
		{
			name:        "name under wrong category",
			line:        "[ERROR]: lookup ping is missing documentation.",
			wantMatched: true,
		},
		{
			name: "warning",
			line: "[WARNING]: module ping is deprecated",
		},
		{
			name: "traceback",
			line: "Traceback (most recent call last):",
		},
		{
			name: "leading space",
			line: " ERROR! module ping broken",
		},
		{
			name: "too few tokens",
			line: "ERROR! module ping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, matched := ParseLine(tt.line, testCategories())
			if matched != tt.wantMatched {
				t.Fatalf("got matched %v, want %v", matched, tt.wantMatched)
			}
			if tt.wantPath == "" {
				if msg != nil {
					t.Errorf("expected no message, got %+v", msg)
				}
				return
			}
			if msg == nil {
				t.Fatal("expected message")
			}
			if msg.Text != tt.wantText {
				t.Errorf("got text %q, want %q", msg.Text, tt.wantText)
			}
			if msg.Path != tt.wantPath {
				t.Errorf("got path %q, want %q", msg.Path, tt.wantPath)
			}
		})
	}
}

func TestParseStderr(t *testing.T) {
	c := testCategories()

	msgs, ok := parseStderr("\n[ERROR]: module ping bad\r\nERROR! module copy bad\n\n", c)
	if !ok {
		t.Fatal("expected stderr to parse")
	}
	if len(msgs) != 1 || msgs[0].Path != "lib/ansible/modules/ping.py" {
		t.Errorf("got %+v", msgs)
	}

	if _, ok := parseStderr("[ERROR]: module ping bad\nsomething else\n", c); ok {
		t.Error("a non-matching line should fail the batch")
	}
	if _, ok := parseStderr("  \n", c); ok {
		t.Error("blank stderr should not count as parsed")
	}
}

func TestStderrLines(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   []string
	}{
		{"blank", " \n\t\n", nil},
		{"trimmed", "\n[ERROR]: module ping bad\r\n\n", []string{"[ERROR]: module ping bad"}},
		{"interior blank kept", "ERROR! module ping bad\n\nERROR! module copy bad", []string{"ERROR! module ping bad", "", "ERROR! module copy bad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StderrLines(tt.stderr)
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseStderr_InteriorBlankLine(t *testing.T) {
	if _, ok := parseStderr("ERROR! module ping bad\n\nERROR! module ping worse\n", testCategories()); ok {
		t.Error("a blank line between errors should fail the batch")
	}
}
