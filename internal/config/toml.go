// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Fetch  FetchConfig  `toml:"fetch"`
	Player PlayerConfig `toml:"player"`
	Study  StudyConfig  `toml:"study"`
}

// FetchConfig maps caption acquisition settings.
type FetchConfig struct {
	Lang  *string `toml:"lang"`
	YtDlp *string `toml:"yt-dlp"`
}

// PlayerConfig maps external player settings.
type PlayerConfig struct {
	Mpv *string `toml:"mpv"`
}

// StudyConfig maps study session settings.
type StudyConfig struct {
	PollMs     *int     `toml:"poll-ms"`
	OffsetStep *float64 `toml:"offset-step"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
