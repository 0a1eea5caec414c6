// Package highlight splits subtitle text into styled segments around
// annotated expressions.
package highlight

import (
	"sort"
	"unicode"

	"github.com/dokyun/lingtube/internal/model"
)

// Kind classifies one segment of highlighted text.
type Kind int

const (
	// Plain text outside any expression.
	Plain Kind = iota
	// Green marks a key expression.
	Green
	// Yellow marks an idiom.
	Yellow
)

// Segment is a run of text with one highlight kind.
type Segment struct {
	Text string
	Kind Kind
}

// Apply scans text for the given expressions and returns ordered segments.
// Matching is greedy, case-insensitive and non-overlapping: at each position
// the longest candidate wins, and among equal-length matches the leftmost
// occurrence wins. Expressions are scanned longest-first so an idiom that
// contains a shorter key phrase is highlighted whole.
func Apply(text string, expressions []model.Expression) []Segment {
	if text == "" {
		return nil
	}
	if len(expressions) == 0 {
		return []Segment{{Text: text, Kind: Plain}}
	}

	sorted := make([]model.Expression, len(expressions))
	copy(sorted, expressions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Phrase) > len(sorted[j].Phrase)
	})

	var out []Segment
	remaining := []rune(text)
	for len(remaining) > 0 {
		expr, idx, size, found := nextMatch(remaining, sorted)
		if !found {
			out = append(out, Segment{Text: string(remaining), Kind: Plain})
			break
		}
		if idx > 0 {
			out = append(out, Segment{Text: string(remaining[:idx]), Kind: Plain})
		}
		out = append(out, Segment{Text: string(remaining[idx : idx+size]), Kind: kindFor(expr.Highlight)})
		remaining = remaining[idx+size:]
	}
	return out
}

// nextMatch finds the winning expression for the current scan position:
// expressions are tried longest-first, and the first one occurring anywhere
// in text wins at its leftmost occurrence. A shorter expression sitting
// before the winner's match is deliberately left plain; that is the
// "longest first, leftmost available" tie-break.
//
// Everything works in rune indices. Case folding happens rune-by-rune, so a
// fold that changes a rune's encoded length (Ⱥ→ⱥ grows, İ→i shrinks) cannot
// skew the match position relative to the original text.
func nextMatch(text []rune, sorted []model.Expression) (model.Expression, int, int, bool) {
	lower := lowerRunes(text)
	for _, expr := range sorted {
		if expr.Phrase == "" {
			continue
		}
		phrase := lowerRunes([]rune(expr.Phrase))
		if idx := indexRunes(lower, phrase); idx >= 0 {
			return expr, idx, len(phrase), true
		}
	}
	return model.Expression{}, 0, 0, false
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		j := 0
		for j < len(needle) && haystack[i+j] == needle[j] {
			j++
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

func kindFor(h model.Highlight) Kind {
	if h == model.HighlightYellow {
		return Yellow
	}
	return Green
}
