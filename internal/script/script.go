package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dokyun/lingtube/internal/timestamp"
)

// TimedLine is one subtitle sentence as stored in the script file, before
// translation and analysis overlays are merged in.
type TimedLine struct {
	Number int
	Start  float64
	End    float64
	Text   string
}

var scriptLineRe = regexp.MustCompile(`\[(\d+:\d+[:\d.]*)\s*-->\s*(\d+:\d+[:\d.]*)\]\s*(.*)`)

// ParseScript reads the script file format, one `[start --> end] text` line
// per subtitle, numbered 1-based by file order. A line that does not match
// the pattern keeps its raw text with zero times rather than failing the
// whole parse.
func ParseScript(content string) []TimedLine {
	var out []TimedLine
	for _, raw := range strings.Split(content, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		number := len(out) + 1
		m := scriptLineRe.FindStringSubmatch(raw)
		if m == nil {
			out = append(out, TimedLine{Number: number, Text: raw})
			continue
		}
		start, err := timestamp.Parse(m[1])
		if err != nil {
			out = append(out, TimedLine{Number: number, Text: raw})
			continue
		}
		end, err := timestamp.Parse(m[2])
		if err != nil {
			out = append(out, TimedLine{Number: number, Text: raw})
			continue
		}
		out = append(out, TimedLine{Number: number, Start: start, End: end, Text: m[3]})
	}
	return out
}

// FormatScript renders lines back into the script file format. The output
// round-trips through ParseScript and is what the translation/analysis
// tooling consumes.
func FormatScript(lines []TimedLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("[%s --> %s] %s",
			timestamp.Format(line.Start), timestamp.Format(line.End), line.Text))
	}
	return strings.Join(parts, "\n")
}
