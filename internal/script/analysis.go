package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dokyun/lingtube/internal/model"
)

// AnalysisLine carries the expression annotations for one subtitle line.
type AnalysisLine struct {
	Line           int                `json:"line"`
	KeyExpressions []model.Expression `json:"keyExpressions"`
	Idioms         []model.Expression `json:"idioms"`
}

// ParseAnalysis reads the analysis file: a JSON array located between the
// first `[` and the last `]`, tolerating prose the analysis tool may emit
// around it. No bracket pair means no annotations, not an error.
func ParseAnalysis(content string) ([]AnalysisLine, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, nil
	}
	var out []AnalysisLine
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return out, nil
}
