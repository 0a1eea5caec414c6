package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dokyun/lingtube/internal/highlight"
	"github.com/dokyun/lingtube/internal/model"
	"github.com/dokyun/lingtube/internal/timestamp"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")).Bold(true).Underline(true)
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D")).Bold(true).Underline(true)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	greenCardStyle  = cardStyle.BorderForeground(lipgloss.Color("#6BCB77"))
	yellowCardStyle = cardStyle.BorderForeground(lipgloss.Color("#FFD93D"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

var highlightStyles = map[highlight.Kind]lipgloss.Style{
	highlight.Plain:  textStyle,
	highlight.Green:  greenStyle,
	highlight.Yellow: yellowStyle,
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.jumpMode {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			modalStyle.Render(m.renderJumpModal()))
	}
	_, bodyHeight, _ := m.layoutHeights()
	header := m.renderHeader()
	var body string
	if m.activeTab == tabLines {
		body = m.linesView.View()
	} else {
		body = m.renderStudy(bodyHeight)
	}
	return strings.Join([]string{header, body, m.renderFooter()}, "\n")
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	id := headerStyle.Render(m.videoID)
	gap := m.width - lipgloss.Width(tabs) - lipgloss.Width(id)
	if gap < 1 {
		return tabs
	}
	return tabs + strings.Repeat(" ", gap) + id
}

func (m *Model) renderJumpModal() string {
	lines := []string{m.jumpInput.View()}
	if m.jumpError != "" {
		lines = append(lines, errorStyle.Render(m.jumpError))
	}
	lines = append(lines, mutedStyle.Render("enter to jump · esc to cancel"))
	return strings.Join(lines, "\n")
}

// renderStudy draws the current sentence card with its overlays plus the
// neighbouring lines for context.
func (m *Model) renderStudy(height int) string {
	active, ok := m.engine.ActiveLine()
	if !ok {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			mutedStyle.Render("no line data"))
	}

	contentWidth := int(float64(m.width) * 0.8)
	if contentWidth < 20 {
		contentWidth = maxInt(1, m.width-2)
	}

	var sections []string
	if prev, ok := m.neighbour(-1); ok {
		sections = append(sections, mutedStyle.Render("← "+clip(prev.Text, contentWidth-2)))
	}
	sections = append(sections, m.renderCurrentCard(active, contentWidth))
	sections = append(sections, m.renderExpressions(active, contentWidth)...)
	if next, ok := m.neighbour(1); ok {
		sections = append(sections, mutedStyle.Render("→ "+clip(next.Text, contentWidth-2)))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) neighbour(delta int) (model.SubtitleLine, bool) {
	line, ok := m.engine.Line(m.engine.CurrentLine() + delta)
	return line, ok
}

func (m *Model) renderCurrentCard(active model.SubtitleLine, width int) string {
	header := markStyle.Render(fmt.Sprintf("#%d", active.Number)) +
		headerStyle.Render(fmt.Sprintf("  %s - %s",
			timestamp.Clock(active.Start), timestamp.Clock(active.End)))
	lines := []string{header}
	if m.engine.ShowOriginal() {
		segments := highlight.Apply(active.Text, append(append([]model.Expression{}, active.KeyExpressions...), active.Idioms...))
		lines = append(lines, wrapStyledRunes(segmentRunes(segments, highlightStyles), width-4))
	}
	if m.engine.ShowTranslation() && active.Translation != "" {
		lines = append(lines, mutedStyle.Render(wrapPlain(active.Translation, width-4)))
	}
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderExpressions(active model.SubtitleLine, width int) []string {
	var out []string
	for _, expr := range active.KeyExpressions {
		out = append(out, renderExpressionCard(expr, greenStyle, greenCardStyle, width))
	}
	for _, expr := range active.Idioms {
		out = append(out, renderExpressionCard(expr, yellowStyle, yellowCardStyle, width))
	}
	return out
}

func renderExpressionCard(expr model.Expression, title lipgloss.Style, card lipgloss.Style, width int) string {
	lines := []string{title.Render(expr.Phrase)}
	if expr.Meaning != "" {
		lines = append(lines, textStyle.Render(wrapPlain(expr.Meaning, width-4)))
	}
	if expr.Explanation != "" {
		lines = append(lines, mutedStyle.Render(wrapPlain(expr.Explanation, width-4)))
	}
	if expr.Example != "" {
		lines = append(lines, mutedStyle.Italic(true).Render(wrapPlain("\""+expr.Example+"\"", width-4)))
	}
	return card.Width(width).Render(strings.Join(lines, "\n"))
}

// renderLines rebuilds the Lines tab viewport and keeps the active line in
// view.
func (m *Model) renderLines() {
	if m.linesView.Width <= 0 {
		return
	}
	current := m.engine.CurrentLine()
	rows := make([]string, 0, m.engine.LineCount())
	activeRow := 0
	for i, line := range m.engine.Lines() {
		marker := "  "
		style := mutedStyle
		if line.Number == current {
			marker = markStyle.Render("▸ ")
			style = textStyle
			activeRow = i
		}
		row := fmt.Sprintf("%s%s  %s", marker,
			headerStyle.Render(fmt.Sprintf("%5s", timestamp.Clock(line.Start))),
			style.Render(clip(line.Text, m.linesView.Width-12)))
		if line.Translation != "" {
			row += "\n" + strings.Repeat(" ", 9) + mutedStyle.Render(clip(line.Translation, m.linesView.Width-12))
		}
		rows = append(rows, row)
	}
	m.linesView.SetContent(strings.Join(rows, "\n"))
	offset := activeRow - m.linesView.Height/2
	if offset < 0 {
		offset = 0
	}
	m.linesView.SetYOffset(offset)
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("line %d/%d", m.engine.CurrentLine(), m.engine.LineCount()),
		timestamp.Clock(m.engine.ClockTime()),
		fmt.Sprintf("sync %+.1fs", m.engine.Offset()),
	}
	if m.engine.Playing() {
		segments = append(segments, "▶")
	} else {
		segments = append(segments, "⏸")
	}
	if m.engine.Repeating() {
		segments = append(segments, "repeat")
	}
	segments = append(segments, "1/4 prev/next · 2 play · 3 repeat · g goto · [ ] sync · q quit")
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.jumpError != "" {
		footer = errorStyle.Render(m.jumpError) + "\n" + footer
	}
	return footer
}

func clip(s string, width int) string {
	if width <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func wrapPlain(s string, width int) string {
	return wrapStyledRunes(plainRunes(s), width)
}
