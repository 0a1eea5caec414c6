// Package timestamp converts between textual timestamps and seconds.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders seconds as HH:MM:SS.mmm, the script file representation.
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// Parse reads H:M:S(.mmm) or M:S(.mmm) into seconds.
func Parse(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q: negative component", s)
		}
		values = append(values, v)
	}
	if len(values) == 3 {
		return values[0]*3600 + values[1]*60 + values[2], nil
	}
	return values[0]*60 + values[1], nil
}

// Clock renders seconds as M:SS for display lists.
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
