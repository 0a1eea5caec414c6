package script

import (
	"regexp"
	"strconv"
	"strings"
)

var translateLineRe = regexp.MustCompile(`^\[(\d+)\]\s*(.*)`)

// ParseTranslations reads the translation file, one `[n] text` line per
// subtitle. The translation tool often surrounds its output with prose, so
// lines that do not match the pattern are skipped, never an error.
func ParseTranslations(content string) map[int]string {
	out := make(map[int]string)
	for _, raw := range strings.Split(content, "\n") {
		m := translateLineRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		out[n] = m[2]
	}
	return out
}
