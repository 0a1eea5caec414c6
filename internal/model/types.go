// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
)

// Highlight selects the presentation color for an expression.
type Highlight int

const (
	// HighlightGreen marks key expressions.
	HighlightGreen Highlight = iota
	// HighlightYellow marks idioms.
	HighlightYellow
)

// String returns the wire name of the highlight.
func (h Highlight) String() string {
	if h == HighlightYellow {
		return "yellow"
	}
	return "green"
}

// MarshalJSON encodes the highlight as its wire name.
func (h Highlight) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes "green" or "yellow". Unknown values are an error.
func (h *Highlight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "green":
		*h = HighlightGreen
	case "yellow":
		*h = HighlightYellow
	default:
		return fmt.Errorf("unknown highlight color %q", s)
	}
	return nil
}

// Expression is one annotated phrase within a subtitle line.
type Expression struct {
	Phrase      string    `json:"expression"`
	Meaning     string    `json:"meaning"`
	Explanation string    `json:"explanation"`
	Example     string    `json:"example"`
	Highlight   Highlight `json:"highlightColor"`
}

// SubtitleLine is one spoken sentence with its study overlays. Line numbers
// are 1-based and define the study order.
type SubtitleLine struct {
	Number         int
	Start          float64
	End            float64
	Text           string
	Translation    string
	KeyExpressions []Expression
	Idioms         []Expression
}

// VideoInfo summarizes one stored video for listings.
type VideoInfo struct {
	ID         string
	Lines      int
	Translated bool
	Analyzed   bool
}
