package script

import "github.com/dokyun/lingtube/internal/model"

// Merge joins the script lines with their optional translation and analysis
// overlays. The script side is authoritative for order and count; a line
// without a translation gets "" and one without analysis gets empty
// expression slices. Merging the same inputs again yields the same result.
func Merge(lines []TimedLine, translations map[int]string, analyses []AnalysisLine) *Collection {
	byLine := make(map[int]AnalysisLine, len(analyses))
	for _, a := range analyses {
		byLine[a.Line] = a
	}
	merged := make([]model.SubtitleLine, 0, len(lines))
	for _, line := range lines {
		entry := model.SubtitleLine{
			Number:         line.Number,
			Start:          line.Start,
			End:            line.End,
			Text:           line.Text,
			Translation:    translations[line.Number],
			KeyExpressions: []model.Expression{},
			Idioms:         []model.Expression{},
		}
		if a, ok := byLine[line.Number]; ok {
			if len(a.KeyExpressions) > 0 {
				entry.KeyExpressions = a.KeyExpressions
			}
			if len(a.Idioms) > 0 {
				entry.Idioms = a.Idioms
			}
		}
		merged = append(merged, entry)
	}
	return NewCollection(merged)
}
