package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dokyun/lingtube/internal/player"
	"github.com/dokyun/lingtube/internal/sync"
)

const (
	tabStudy = iota
	tabLines
)

// DefaultPollInterval is the playback clock poll cadence.
const DefaultPollInterval = 200 * time.Millisecond

type tickMsg time.Time

// Options configures a study session.
type Options struct {
	VideoID      string
	PollInterval time.Duration
	OffsetStep   float64
}

// Model implements the Bubble Tea study UI. All engine and adapter access
// happens inside Update, so the session state is only ever touched from the
// program's single event loop.
type Model struct {
	engine  *sync.Engine
	adapter player.Adapter

	videoID      string
	pollInterval time.Duration
	offsetStep   float64

	width  int
	height int

	tabs      []string
	activeTab int
	linesView viewport.Model

	jumpMode  bool
	jumpInput textinput.Model
	jumpError string
}

// NewModel constructs a study session over a loaded engine and a playback
// adapter. Both are owned by the caller and shared with nothing else.
func NewModel(engine *sync.Engine, adapter player.Adapter, opts Options) *Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.OffsetStep <= 0 {
		opts.OffsetStep = sync.OffsetStep
	}
	input := textinput.New()
	input.Prompt = "Line: "
	input.CharLimit = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	return &Model{
		engine:       engine,
		adapter:      adapter,
		videoID:      opts.VideoID,
		pollInterval: opts.PollInterval,
		offsetStep:   opts.OffsetStep,
		tabs:         []string{"Study", "Lines"},
		linesView:    viewport.New(0, 0),
		jumpInput:    input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderLines()
		return m, nil
	case tickMsg:
		m.onTick()
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.jumpMode {
			return m.updateJump(msg)
		}
		return m.updateKeys(msg)
	default:
		return m, nil
	}
}

// onTick is one clock cycle: poll the player, fold the position into the
// engine, execute whatever side effects the engine asks for, and issue at
// most one pending navigation seek.
func (m *Model) onTick() {
	if t, ok := m.adapter.Poll(); ok {
		tick := m.engine.OnClockTick(t)
		if tick.RepeatSeekOK {
			m.adapter.SeekTo(tick.RepeatSeek)
		}
		if tick.LineChanged {
			m.renderLines()
		}
	}
	if paused, ok := m.adapter.PauseEvents(); ok {
		m.engine.SetPlaying(!paused)
	}
	m.flushSeek()
}

// flushSeek consumes a pending navigation seek and issues it once.
func (m *Model) flushSeek() {
	if target, ok := m.engine.ConsumeSeekRequest(); ok {
		m.adapter.SeekTo(target)
	}
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1", "left":
		m.engine.Prev()
		m.flushSeek()
		m.renderLines()
		return m, nil
	case "2", " ":
		playing := m.engine.Playing()
		m.adapter.SetPaused(playing)
		m.engine.SetPlaying(!playing)
		return m, nil
	case "3":
		m.engine.ToggleRepeating()
		return m, nil
	case "4", "right":
		m.engine.Next()
		m.flushSeek()
		m.renderLines()
		return m, nil
	case "o":
		m.engine.ToggleOriginal()
		return m, nil
	case "t":
		m.engine.ToggleTranslation()
		return m, nil
	case "[":
		m.engine.AdjustOffset(-m.offsetStep)
		return m, nil
	case "]":
		m.engine.AdjustOffset(m.offsetStep)
		return m, nil
	case "0":
		m.engine.ResetOffset()
		return m, nil
	case "g":
		return m.startJump()
	case "tab", "h", "l":
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		m.renderLines()
		return m, tea.ClearScreen
	default:
		if m.activeTab == tabLines {
			var cmd tea.Cmd
			m.linesView, cmd = m.linesView.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) startJump() (tea.Model, tea.Cmd) {
	m.jumpMode = true
	m.jumpError = ""
	m.jumpInput.SetValue("")
	return m, m.jumpInput.Focus()
}

func (m *Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.jumpMode = false
		m.jumpInput.Blur()
		return m, nil
	case tea.KeyEnter:
		n, err := strconv.Atoi(strings.TrimSpace(m.jumpInput.Value()))
		if err != nil || n < 1 || n > m.engine.LineCount() {
			m.jumpError = "enter a line between 1 and " + strconv.Itoa(m.engine.LineCount())
			return m, nil
		}
		m.engine.NavigateTo(n)
		m.flushSeek()
		m.renderLines()
		m.jumpMode = false
		m.jumpInput.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.jumpInput, cmd = m.jumpInput.Update(msg)
		return m, cmd
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.linesView.Width = m.width
	m.linesView.Height = bodyHeight
	promptWidth := lipgloss.Width(m.jumpInput.Prompt)
	m.jumpInput.Width = maxInt(10, m.width/2-promptWidth)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeTabStyle.Render("X")) + 1
	footerHeight = 1
	if m.jumpError != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
