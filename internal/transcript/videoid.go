// Package transcript acquires English caption tracks for YouTube videos.
package transcript

import (
	"fmt"
	"regexp"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/(?:embed|shorts|live)/)([A-Za-z0-9_-]{11})`),
}

var bareVideoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video id out of a YouTube URL.
// A bare id is accepted as-is.
func ExtractVideoID(input string) (string, error) {
	if bareVideoIDRe.MatchString(input) {
		return input, nil
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no video id found in %q", input)
}
