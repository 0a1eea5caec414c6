// Package library stores per-video study files on disk.
//
// Each video owns one directory under the data dir holding up to three flat
// files: the script (authoritative), and the optional translation and
// analysis overlays produced out-of-band by the operator-run LLM step. The
// file names and formats round-trip with that tooling and must not change.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dokyun/lingtube/internal/model"
	"github.com/dokyun/lingtube/internal/script"
)

// ErrNotFound reports that a video has no stored script.
var ErrNotFound = errors.New("video not found in library")

// Library reads and writes per-video study files under a root directory.
type Library struct {
	root string
}

// New opens a library rooted at dir (usually config.DefaultVideoDir()).
func New(dir string) *Library {
	return &Library{root: dir}
}

// VideoDir returns the directory holding one video's files.
func (l *Library) VideoDir(id string) string {
	return filepath.Join(l.root, id)
}

// ScriptPath returns the script file path for a video.
func (l *Library) ScriptPath(id string) string {
	return filepath.Join(l.VideoDir(id), id+"_script.txt")
}

// TranslatePath returns the translation file path for a video.
func (l *Library) TranslatePath(id string) string {
	return filepath.Join(l.VideoDir(id), id+"_script_translate.txt")
}

// AnalysisPath returns the analysis file path for a video.
func (l *Library) AnalysisPath(id string) string {
	return filepath.Join(l.VideoDir(id), id+"_script_analysis.json")
}

// HasScript reports whether a video's script file exists.
func (l *Library) HasScript(id string) bool {
	_, err := os.Stat(l.ScriptPath(id))
	return err == nil
}

// HasTranslation reports whether a video's translation overlay exists.
func (l *Library) HasTranslation(id string) bool {
	_, err := os.Stat(l.TranslatePath(id))
	return err == nil
}

// HasAnalysis reports whether a video's analysis overlay exists.
func (l *Library) HasAnalysis(id string) bool {
	_, err := os.Stat(l.AnalysisPath(id))
	return err == nil
}

// SaveScript writes the script file, creating the video directory. The file
// is newline-joined with no trailing newline, byte-identical to what the
// overlay tooling expects.
func (l *Library) SaveScript(id string, lines []script.TimedLine) error {
	if err := os.MkdirAll(l.VideoDir(id), 0o755); err != nil {
		return fmt.Errorf("failed to create video directory: %w", err)
	}
	content := script.FormatScript(lines)
	if err := os.WriteFile(l.ScriptPath(id), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	return nil
}

// LoadScript reads just the script lines for a video.
func (l *Library) LoadScript(id string) ([]script.TimedLine, error) {
	data, err := os.ReadFile(l.ScriptPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return script.ParseScript(string(data)), nil
}

// Load builds the merged collection for a video. The script is required;
// missing translation or analysis files simply yield empty overlays, so the
// caller always gets a complete collection or an error, never a partial one.
func (l *Library) Load(id string) (*script.Collection, error) {
	lines, err := l.LoadScript(id)
	if err != nil {
		return nil, err
	}

	translations := map[int]string{}
	if data, err := os.ReadFile(l.TranslatePath(id)); err == nil {
		translations = script.ParseTranslations(string(data))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read translation: %w", err)
	}

	var analyses []script.AnalysisLine
	if data, err := os.ReadFile(l.AnalysisPath(id)); err == nil {
		analyses, err = script.ParseAnalysis(string(data))
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}

	return script.Merge(lines, translations, analyses), nil
}

// List enumerates stored videos with line counts and overlay presence,
// sorted by id.
func (l *Library) List() ([]model.VideoInfo, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	var out []model.VideoInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if !l.HasScript(id) {
			continue
		}
		lines, err := l.LoadScript(id)
		if err != nil {
			continue
		}
		out = append(out, model.VideoInfo{
			ID:         id,
			Lines:      len(lines),
			Translated: l.HasTranslation(id),
			Analyzed:   l.HasAnalysis(id),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
