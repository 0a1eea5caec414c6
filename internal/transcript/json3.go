package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dokyun/lingtube/internal/script"
)

// json3Track mirrors the YouTube json3 caption payload. Unmapped fields are
// ignored on purpose; the format carries plenty of styling noise.
type json3Track struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64      `json:"tStartMs"`
	DurationMs int64      `json:"dDurationMs"`
	Segs       []json3Seg `json:"segs"`
}

type json3Seg struct {
	Utf8 string `json:"utf8"`
}

func (e json3Event) text() string {
	var b strings.Builder
	for _, seg := range e.Segs {
		b.WriteString(seg.Utf8)
	}
	return b.String()
}

// parseJSON3 turns a json3 caption payload into timed, cleaned script lines.
// Events without text (window definitions, pure newlines) are dropped, and
// overlapping intervals are repaired before numbering.
func parseJSON3(data []byte) ([]script.TimedLine, error) {
	var track json3Track
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("failed to decode captions: %w", err)
	}
	var lines []script.TimedLine
	for _, event := range track.Events {
		text := cleanCaptionText(event.text())
		if text == "" {
			continue
		}
		start := float64(event.StartMs) / 1000
		lines = append(lines, script.TimedLine{
			Start: start,
			End:   start + float64(event.DurationMs)/1000,
			Text:  text,
		})
	}
	return clampOverlaps(lines), nil
}

// clampOverlaps caps each line's end at the next line's start so intervals
// never overlap. The earlier line always yields to the later one. Line
// numbers are assigned here, 1-based in order.
func clampOverlaps(lines []script.TimedLine) []script.TimedLine {
	for i := range lines {
		lines[i].Number = i + 1
		if i+1 < len(lines) && lines[i].End > lines[i+1].Start {
			lines[i].End = lines[i+1].Start
		}
	}
	return lines
}
