package sanity

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// FormatReport returns a human-readable report. colorize=false forces plain text.
func FormatReport(report *Report, colorize bool) string {
	paint := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	passed := paint(color.FgGreen)
	failed := paint(color.FgRed)
	skipped := paint(color.FgYellow)

	var b strings.Builder
	for _, r := range report.Results {
		switch r.Status {
		case StatusSuccess:
			fmt.Fprintf(&b, "%s %s\n", passed.Sprint("PASS"), r.Name)
		case StatusSkipped:
			fmt.Fprintf(&b, "%s %s\n", skipped.Sprint("SKIP"), r.Name)
		case StatusFailure:
			fmt.Fprintf(&b, "%s %s\n", failed.Sprint("FAIL"), r.Name)
			for _, line := range strings.Split(strings.TrimRight(r.Details(), "\n"), "\n") {
				if line != "" {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
		}
	}

	status := passed.Sprint("PASSED")
	if report.Status == StatusFailure {
		status = failed.Sprint("FAILED")
	}
	fmt.Fprintf(&b, "Result: %s (%s)\n", status, report.Summary)
	return b.String()
}
