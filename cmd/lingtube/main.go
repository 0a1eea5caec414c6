// Package main provides the CLI entrypoint for lingtube.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dokyun/lingtube/internal/config"
	"github.com/dokyun/lingtube/internal/library"
	"github.com/dokyun/lingtube/internal/player"
	"github.com/dokyun/lingtube/internal/sync"
	"github.com/dokyun/lingtube/internal/transcript"
	"github.com/dokyun/lingtube/internal/tui"
)

const (
	defaultLang       = "en"
	defaultYtDlp      = "yt-dlp"
	defaultMpv        = "mpv"
	defaultPollMs     = 200
	defaultOffsetStep = 0.5
)

var (
	studyLang       string
	studyYtDlp      string
	studyMpv        string
	studyPollMs     int
	studyOffsetStep float64
	studyDataDir    string

	fetchLang    string
	fetchYtDlp   string
	fetchDataDir string

	promptKind string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lingtube <video-url-or-id>",
		Short:         "Study YouTube videos line by line",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runStudyCmd,
	}

	rootCmd.Flags().StringVar(&studyLang, "lang", defaultLang, "caption language code")
	rootCmd.Flags().StringVar(&studyYtDlp, "yt-dlp", defaultYtDlp, "yt-dlp binary")
	rootCmd.Flags().StringVar(&studyMpv, "mpv", defaultMpv, "mpv binary")
	rootCmd.Flags().IntVar(&studyPollMs, "poll-ms", defaultPollMs, "playback clock poll interval in milliseconds")
	rootCmd.Flags().Float64Var(&studyOffsetStep, "offset-step", defaultOffsetStep, "sync offset adjustment step in seconds")
	rootCmd.Flags().StringVar(&studyDataDir, "data-dir", "", "video data directory (default: XDG data dir)")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runStudyCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &studyLang, fileCfg.Fetch.Lang)
	applyStringConfig(cmd, "yt-dlp", &studyYtDlp, fileCfg.Fetch.YtDlp)
	applyStringConfig(cmd, "mpv", &studyMpv, fileCfg.Player.Mpv)
	applyIntConfig(cmd, "poll-ms", &studyPollMs, fileCfg.Study.PollMs)
	applyFloatConfig(cmd, "offset-step", &studyOffsetStep, fileCfg.Study.OffsetStep)

	if studyPollMs <= 0 {
		return fmt.Errorf("--poll-ms must be > 0")
	}
	if studyOffsetStep <= 0 {
		return fmt.Errorf("--offset-step must be > 0")
	}

	videoID, err := transcript.ExtractVideoID(args[0])
	if err != nil {
		return err
	}

	lib := library.New(resolveDataDir(studyDataDir))
	if !lib.HasScript(videoID) {
		logErrf("No script for %s yet; fetching captions...\n", videoID)
		if err := fetchScript(lib, videoID, studyYtDlp, studyLang); err != nil {
			return err
		}
	}
	if !lib.HasTranslation(videoID) || !lib.HasAnalysis(videoID) {
		logErrf("Overlays missing for %s. Generate them with: lingtube prompt %s\n", videoID, videoID)
	}

	collection, err := lib.Load(videoID)
	if err != nil {
		return err
	}

	socketDir := config.DefaultSocketDir()
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	socketPath := filepath.Join(socketDir, fmt.Sprintf("%s-%d.sock", videoID, os.Getpid()))
	defer func() {
		_ = os.Remove(socketPath)
	}()

	adapter, err := player.Launch(studyMpv, socketPath, videoID)
	if err != nil {
		return fmt.Errorf("failed to launch mpv: %w", err)
	}
	defer func() {
		if cerr := adapter.Close(); cerr != nil {
			logErrf("failed to close player: %v\n", cerr)
		}
	}()

	engine := sync.New(collection)
	model := tui.NewModel(engine, adapter, tui.Options{
		VideoID:      videoID,
		PollInterval: time.Duration(studyPollMs) * time.Millisecond,
		OffsetStep:   studyOffsetStep,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <video-url-or-id>",
		Short: "Download captions and store the script",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchLang, "lang", defaultLang, "caption language code")
	cmd.Flags().StringVar(&fetchYtDlp, "yt-dlp", defaultYtDlp, "yt-dlp binary")
	cmd.Flags().StringVar(&fetchDataDir, "data-dir", "", "video data directory (default: XDG data dir)")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &fetchLang, fileCfg.Fetch.Lang)
	applyStringConfig(cmd, "yt-dlp", &fetchYtDlp, fileCfg.Fetch.YtDlp)

	videoID, err := transcript.ExtractVideoID(args[0])
	if err != nil {
		return err
	}
	lib := library.New(resolveDataDir(fetchDataDir))
	if err := fetchScript(lib, videoID, fetchYtDlp, fetchLang); err != nil {
		return err
	}
	logErrf("Next: lingtube prompt %s\n", videoID)
	return nil
}

func fetchScript(lib *library.Library, videoID, ytdlp, lang string) error {
	fetcher := transcript.NewFetcher(ytdlp, lang)
	result, err := fetcher.Fetch(context.Background(), videoID)
	if err != nil {
		return fmt.Errorf("failed to fetch captions: %w", err)
	}
	if err := lib.SaveScript(videoID, result.Lines); err != nil {
		return err
	}
	logErrf("Saved %d lines of %q to %s\n", len(result.Lines), result.Title, lib.ScriptPath(videoID))
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored videos",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	lib := library.New(resolveDataDir(""))
	videos, err := lib.List()
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		logErrln("No videos stored. Download one with: lingtube fetch <url>")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Video", "Lines", "Translated", "Analyzed"})
	for _, video := range videos {
		t.AppendRow(table.Row{video.ID, video.Lines, yesNo(video.Translated), yesNo(video.Analyzed)})
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		t.SetStyle(table.StyleRounded)
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
			t.SetAllowedRowLength(width)
		}
		t.Render()
	} else {
		t.RenderTSV()
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <video-url-or-id>",
		Short: "Show stored files for a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	videoID, err := transcript.ExtractVideoID(args[0])
	if err != nil {
		return err
	}
	lib := library.New(resolveDataDir(""))
	out := cmd.OutOrStdout()
	rows := []struct {
		name string
		path string
		have bool
	}{
		{"script", lib.ScriptPath(videoID), lib.HasScript(videoID)},
		{"translation", lib.TranslatePath(videoID), lib.HasTranslation(videoID)},
		{"analysis", lib.AnalysisPath(videoID), lib.HasAnalysis(videoID)},
	}
	for _, row := range rows {
		mark := "missing"
		if row.have {
			mark = "ok"
		}
		if _, err := fmt.Fprintf(out, "%-12s %-8s %s\n", row.name, mark, row.path); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if lines, err := lib.LoadScript(videoID); err == nil {
		if _, err := fmt.Fprintf(out, "%-12s %d\n", "lines", len(lines)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if !lib.HasScript(videoID) {
		logErrf("Fetch it with: lingtube fetch %s\n", videoID)
	} else if !lib.HasTranslation(videoID) || !lib.HasAnalysis(videoID) {
		logErrf("Generate overlays with: lingtube prompt %s\n", videoID)
	}
	return nil
}

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <video-url-or-id>",
		Short: "Print an LLM prompt for the translation or analysis overlay",
		Args:  cobra.ExactArgs(1),
		RunE:  runPromptCmd,
	}
	cmd.Flags().StringVar(&promptKind, "kind", "translate", "overlay to generate: translate or analysis")
	return cmd
}

func runPromptCmd(cmd *cobra.Command, args []string) error {
	videoID, err := transcript.ExtractVideoID(args[0])
	if err != nil {
		return err
	}
	lib := library.New(resolveDataDir(""))
	lines, err := lib.LoadScript(videoID)
	if err != nil {
		return err
	}

	var body string
	switch promptKind {
	case "translate":
		body = translatePrompt(lib.TranslatePath(videoID))
	case "analysis":
		body = analysisPrompt(lib.AnalysisPath(videoID))
	default:
		return fmt.Errorf("--kind must be translate or analysis, got %q", promptKind)
	}

	var numbered strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&numbered, "[%d] %s\n", line.Number, line.Text)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", body, numbered.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func translatePrompt(outPath string) string {
	return fmt.Sprintf(`Translate each numbered subtitle line below into Korean.
Respond with one line per subtitle, formatted exactly as:

[1] translated text

Keep the numbering identical to the input. No commentary.
Save the response to: %s

Lines:`, outPath)
}

func analysisPrompt(outPath string) string {
	return fmt.Sprintf(`Analyze each numbered subtitle line below for a language learner.
Respond with a single JSON array. Each element:

{
  "line": 1,
  "keyExpressions": [
    {"expression": "...", "meaning": "...", "explanation": "...", "example": "...", "highlightColor": "green"}
  ],
  "idioms": [
    {"expression": "...", "meaning": "...", "explanation": "...", "example": "...", "highlightColor": "yellow"}
  ]
}

Only include lines that contain something worth noting. Use "green" for key
expressions and "yellow" for idioms. No text outside the JSON array.
Save the response to: %s

Lines:`, outPath)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveDataDir(override string) string {
	if override != "" {
		return override
	}
	return config.DefaultVideoDir()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lingtube configuration
# Uncomment a value to enable it. CLI flags override config values.

[fetch]
# lang = %q            # Caption language code
# yt-dlp = %q      # yt-dlp binary

[player]
# mpv = %q             # mpv binary

[study]
# poll-ms = %d         # Playback clock poll interval in milliseconds
# offset-step = %.1f   # Sync offset adjustment step in seconds
`,
		defaultLang,
		defaultYtDlp,
		defaultMpv,
		defaultPollMs,
		defaultOffsetStep,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
