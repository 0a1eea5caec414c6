package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/dokyun/lingtube/internal/highlight"
)

func TestWrapPlain(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"breaks at space", "hello world", 8, []string{"hello", "world"}},
		{"hard break long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"zero width passthrough", "hello world", 0, []string{"hello world"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(wrapPlain(tt.text, tt.width), "\n")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %q, want %d lines %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegmentRunesKeepsStylePerRune(t *testing.T) {
	styles := map[highlight.Kind]lipgloss.Style{
		highlight.Plain: lipgloss.NewStyle(),
		highlight.Green: lipgloss.NewStyle(),
	}
	segments := []highlight.Segment{
		{Text: "ab ", Kind: highlight.Plain},
		{Text: "cd", Kind: highlight.Green},
	}
	runes := segmentRunes(segments, styles)
	if len(runes) != 5 {
		t.Fatalf("got %d runes, want 5", len(runes))
	}
	if !runes[2].isSpace {
		t.Error("third rune should be flagged as a space")
	}
	if got := renderStyledRunes(runes); got != "ab cd" {
		t.Errorf("rendered = %q, want %q", got, "ab cd")
	}
}

func TestWrapWideRunes(t *testing.T) {
	// Hangul syllables are double width; four of them need two lines at
	// width four.
	got := wrapPlain("가나다라", 4)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines %q, want 2", len(lines), lines)
	}
	if lines[0] != "가나" || lines[1] != "다라" {
		t.Errorf("lines = %q, want [가나 다라]", lines)
	}
}
