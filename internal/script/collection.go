// Package script parses the per-video study files and holds the merged,
// line-indexed subtitle collection.
package script

import "github.com/dokyun/lingtube/internal/model"

// Collection is the ordered, read-only set of subtitle lines for one video.
// It is built once per session and never mutated afterwards.
type Collection struct {
	lines  []model.SubtitleLine
	byLine map[int]int
}

// NewCollection builds a collection from already-merged lines. Line order is
// preserved as given.
func NewCollection(lines []model.SubtitleLine) *Collection {
	byLine := make(map[int]int, len(lines))
	for i, line := range lines {
		byLine[line.Number] = i
	}
	return &Collection{lines: lines, byLine: byLine}
}

// Len reports the number of lines.
func (c *Collection) Len() int {
	return len(c.lines)
}

// Lines returns the underlying ordered lines. Callers must not modify it.
func (c *Collection) Lines() []model.SubtitleLine {
	return c.lines
}

// Line looks up a line by number. Missing numbers report ok=false so gaps
// never panic downstream.
func (c *Collection) Line(n int) (model.SubtitleLine, bool) {
	i, ok := c.byLine[n]
	if !ok {
		return model.SubtitleLine{}, false
	}
	return c.lines[i], true
}

// ActiveAt finds the line whose [Start, End) interval contains t. Intervals
// are non-overlapping by construction, so the first match is the only one.
func (c *Collection) ActiveAt(t float64) (model.SubtitleLine, bool) {
	for _, line := range c.lines {
		if t >= line.Start && t < line.End {
			return line, true
		}
	}
	return model.SubtitleLine{}, false
}
