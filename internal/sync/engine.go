// Package sync maps a polled playback clock onto the subtitle line sequence.
//
// The engine distinguishes two ways the active line can change. A passive
// update comes from the clock: the player is already at that position, so no
// seek is needed. An active update comes from user navigation: the learner
// chose a line, so the player must be moved there. Active updates raise a
// seek-requested flag that the driver consumes exactly once per transition;
// that split is what prevents a programmatic seek from echoing back through
// the clock and triggering another seek.
//
// The engine is not safe for concurrent use. It is driven from a single
// event loop that serializes clock ticks and user input.
package sync

import (
	"math"

	"github.com/dokyun/lingtube/internal/model"
	"github.com/dokyun/lingtube/internal/script"
)

// OffsetStep is the sync offset adjustment granularity in seconds.
const OffsetStep = 0.5

// Tick reports the side effects a clock tick asks of the driver.
type Tick struct {
	// LineChanged is true when the tick moved the active line passively.
	LineChanged bool
	// RepeatSeek, when RepeatSeekOK, is a seek target that restarts the
	// active line's interval. It bypasses the seek-requested flag: looping
	// does not change the active line.
	RepeatSeek   float64
	RepeatSeekOK bool
}

// Engine holds the playback-session state for one video.
type Engine struct {
	lines *script.Collection

	currentLine     int
	clockTime       float64
	offset          float64
	repeating       bool
	playing         bool
	seekRequested   bool
	showOriginal    bool
	showTranslation bool
}

// New builds an engine over a loaded collection. The session starts at line 1
// with no offset, both subtitle layers visible, repeat off.
func New(lines *script.Collection) *Engine {
	return &Engine{
		lines:           lines,
		currentLine:     1,
		showOriginal:    true,
		showTranslation: true,
	}
}

// OnClockTick folds the latest player-reported position into the session.
// The lookup applies the sync offset; the repeat check uses the raw clock
// time because the loop boundary is a physical position in the video.
func (e *Engine) OnClockTick(t float64) Tick {
	e.clockTime = t

	var tick Tick
	adjusted := t - e.offset
	if line, ok := e.lines.ActiveAt(adjusted); ok && line.Number != e.currentLine {
		// Passive path: the video is already there, no seek.
		e.currentLine = line.Number
		tick.LineChanged = true
	}
	// No match: keep the last known line. Offset adjustments can push the
	// adjusted time into a gap or past either end of the collection, and
	// clearing or resetting the line there would make the UI jump around.

	if e.repeating {
		if active, ok := e.lines.Line(e.currentLine); ok && t >= active.End {
			tick.RepeatSeek = active.Start
			tick.RepeatSeekOK = true
		}
	}
	return tick
}

// NavigateTo jumps to a line explicitly. Valid targets clear repeat (repeat
// is scoped to the line it was enabled on) and raise the seek-requested
// flag. Out-of-range targets are ignored entirely; Prev/Next therefore stop
// silently at the collection bounds.
func (e *Engine) NavigateTo(n int) {
	if _, ok := e.lines.Line(n); !ok {
		return
	}
	e.currentLine = n
	e.repeating = false
	e.seekRequested = true
}

// Prev navigates to the previous line, if any.
func (e *Engine) Prev() {
	e.NavigateTo(e.currentLine - 1)
}

// Next navigates to the next line, if any.
func (e *Engine) Next() {
	e.NavigateTo(e.currentLine + 1)
}

// ConsumeSeekRequest hands the pending seek target to the driver and clears
// the flag. It is the only way the flag clears, and calling it again before
// the next navigation reports ok=false, so the driver issues exactly one
// seek per navigation.
func (e *Engine) ConsumeSeekRequest() (target float64, ok bool) {
	if !e.seekRequested {
		return 0, false
	}
	e.seekRequested = false
	line, ok := e.lines.Line(e.currentLine)
	if !ok {
		return 0, false
	}
	return line.Start, true
}

// SetRepeating turns single-line looping on or off.
func (e *Engine) SetRepeating(on bool) {
	e.repeating = on
}

// ToggleRepeating flips single-line looping.
func (e *Engine) ToggleRepeating() {
	e.repeating = !e.repeating
}

// AdjustOffset shifts the sync offset by delta seconds. The result is
// rounded to one decimal so repeated adjustments cannot accumulate float
// drift. Positive offsets show subtitles later relative to the audio.
func (e *Engine) AdjustOffset(delta float64) {
	e.offset = math.Round((e.offset+delta)*10) / 10
}

// ResetOffset clears the sync offset.
func (e *Engine) ResetOffset() {
	e.offset = 0
}

// ToggleOriginal flips the source-text overlay.
func (e *Engine) ToggleOriginal() {
	e.showOriginal = !e.showOriginal
}

// ToggleTranslation flips the translation overlay.
func (e *Engine) ToggleTranslation() {
	e.showTranslation = !e.showTranslation
}

// SetPlaying mirrors the external player's play/pause state.
func (e *Engine) SetPlaying(playing bool) {
	e.playing = playing
}

// ActiveLine returns the line currently considered active for display.
// A gap in the collection reports ok=false rather than panicking.
func (e *Engine) ActiveLine() (model.SubtitleLine, bool) {
	return e.lines.Line(e.currentLine)
}

// CurrentLine reports the active line number.
func (e *Engine) CurrentLine() int { return e.currentLine }

// ClockTime reports the last polled player position.
func (e *Engine) ClockTime() float64 { return e.clockTime }

// Offset reports the sync offset in seconds.
func (e *Engine) Offset() float64 { return e.offset }

// Repeating reports whether single-line looping is on.
func (e *Engine) Repeating() bool { return e.repeating }

// Playing reports the mirrored play/pause state.
func (e *Engine) Playing() bool { return e.playing }

// SeekRequested reports whether a navigation seek is pending.
func (e *Engine) SeekRequested() bool { return e.seekRequested }

// ShowOriginal reports whether the source text overlay is visible.
func (e *Engine) ShowOriginal() bool { return e.showOriginal }

// ShowTranslation reports whether the translation overlay is visible.
func (e *Engine) ShowTranslation() bool { return e.showTranslation }

// LineCount reports the collection size.
func (e *Engine) LineCount() int { return e.lines.Len() }

// Line looks up a line by number.
func (e *Engine) Line(n int) (model.SubtitleLine, bool) { return e.lines.Line(n) }

// Lines returns the full collection in order.
func (e *Engine) Lines() []model.SubtitleLine { return e.lines.Lines() }
