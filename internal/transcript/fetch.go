package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/dokyun/lingtube/internal/script"
)

const (
	fetchTimeout  = 30 * time.Second
	maxTrackBytes = 10 << 20
	userAgent     = "lingtube/1.0"
)

// Fetcher downloads a video's English caption track. Track discovery goes
// through yt-dlp (`-j` metadata dump); the track itself is fetched over HTTP
// in json3 format.
type Fetcher struct {
	ytdlp string
	lang  string
	http  *http.Client
}

// NewFetcher builds a fetcher. ytdlp is the binary name or path, lang the
// caption language code (normally "en").
func NewFetcher(ytdlp, lang string) *Fetcher {
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	if lang == "" {
		lang = "en"
	}
	return &Fetcher{
		ytdlp: ytdlp,
		lang:  lang,
		http:  &http.Client{Timeout: fetchTimeout},
	}
}

// metadata is the subset of `yt-dlp -j` output we consume.
type metadata struct {
	Title             string                     `json:"title"`
	Subtitles         map[string][]subtitleTrack `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleTrack `json:"automatic_captions"`
}

type subtitleTrack struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// Result carries the acquired captions and the video title.
type Result struct {
	Title string
	Lines []script.TimedLine
}

// Fetch acquires the caption track for a video id. Manual subtitles are
// preferred over automatic captions. There is no retry; the caller reports
// the error and the learner resubmits.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (Result, error) {
	meta, err := f.probe(ctx, videoID)
	if err != nil {
		return Result{}, err
	}
	url, ok := pickTrack(meta.Subtitles, f.lang)
	if !ok {
		url, ok = pickTrack(meta.AutomaticCaptions, f.lang)
	}
	if !ok {
		return Result{}, fmt.Errorf("no %s captions available for %s", f.lang, videoID)
	}
	data, err := f.download(ctx, url)
	if err != nil {
		return Result{}, err
	}
	lines, err := parseJSON3(data)
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		return Result{}, fmt.Errorf("caption track for %s is empty", videoID)
	}
	return Result{Title: meta.Title, Lines: lines}, nil
}

func (f *Fetcher) probe(ctx context.Context, videoID string) (metadata, error) {
	cmd := exec.CommandContext(ctx, f.ytdlp, "-j", "--no-warnings", "--skip-download",
		"https://www.youtube.com/watch?v="+videoID)
	out, err := cmd.Output()
	if err != nil {
		return metadata{}, fmt.Errorf("yt-dlp failed for %s: %w", videoID, err)
	}
	var meta metadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return metadata{}, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}
	return meta, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build caption request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected caption status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTrackBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}
	if len(data) > maxTrackBytes {
		return nil, fmt.Errorf("caption track too large (>%d bytes)", maxTrackBytes)
	}
	return data, nil
}

// pickTrack selects a json3 track for lang. YouTube keys automatic captions
// as "en", "en-orig", etc., so prefixed variants are accepted.
func pickTrack(tracks map[string][]subtitleTrack, lang string) (string, bool) {
	if url, ok := pickExact(tracks[lang]); ok {
		return url, true
	}
	for key, candidates := range tracks {
		if !strings.HasPrefix(key, lang+"-") {
			continue
		}
		if url, ok := pickExact(candidates); ok {
			return url, true
		}
	}
	return "", false
}

func pickExact(candidates []subtitleTrack) (string, bool) {
	for _, track := range candidates {
		if track.Ext == "json3" && track.URL != "" {
			return track.URL, true
		}
	}
	return "", false
}
