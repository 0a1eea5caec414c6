package sync

import (
	"math"
	"testing"

	"github.com/dokyun/lingtube/internal/model"
	"github.com/dokyun/lingtube/internal/script"
)

func collection(lines ...model.SubtitleLine) *script.Collection {
	return script.NewCollection(lines)
}

func twoLines() *script.Collection {
	return collection(
		model.SubtitleLine{Number: 1, Start: 0, End: 2},
		model.SubtitleLine{Number: 2, Start: 2, End: 4},
	)
}

func TestClockTickPassiveUpdate(t *testing.T) {
	e := New(twoLines())

	tick := e.OnClockTick(1.5)
	if tick.LineChanged {
		t.Error("tick inside the initial line should not report a change")
	}
	if e.CurrentLine() != 1 {
		t.Fatalf("current line = %d, want 1", e.CurrentLine())
	}

	tick = e.OnClockTick(2.5)
	if !tick.LineChanged {
		t.Error("crossing into line 2 should report a change")
	}
	if e.CurrentLine() != 2 {
		t.Fatalf("current line = %d, want 2", e.CurrentLine())
	}
	if e.SeekRequested() {
		t.Error("passive update must not request a seek")
	}
}

func TestClockTickIdempotent(t *testing.T) {
	e := New(twoLines())
	e.OnClockTick(2.5)
	for i := 0; i < 3; i++ {
		tick := e.OnClockTick(2.5)
		if tick.LineChanged {
			t.Error("repeated tick with the same time must not change the line")
		}
	}
	if e.CurrentLine() != 2 || e.SeekRequested() {
		t.Errorf("state drifted: line=%d seek=%v", e.CurrentLine(), e.SeekRequested())
	}
}

func TestClockTickGapRetainsLine(t *testing.T) {
	c := collection(
		model.SubtitleLine{Number: 1, Start: 0, End: 2},
		model.SubtitleLine{Number: 2, Start: 3, End: 5},
	)
	e := New(c)
	e.OnClockTick(1.0)
	if e.CurrentLine() != 1 {
		t.Fatalf("current line = %d, want 1", e.CurrentLine())
	}
	// In the gap between the intervals, before the first line, and past the
	// last line the active line must be retained, never cleared or reset.
	for _, clock := range []float64{2.5, -1, 99} {
		if tick := e.OnClockTick(clock); tick.LineChanged {
			t.Errorf("tick(%v) reported a change", clock)
		}
		if e.CurrentLine() != 1 {
			t.Errorf("tick(%v) moved line to %d", clock, e.CurrentLine())
		}
	}
}

func TestOffsetShiftsLookup(t *testing.T) {
	e := New(twoLines())
	e.AdjustOffset(0.5)
	e.AdjustOffset(0.5)
	// clock 2.5 adjusted by -1.0 lands at 1.5, inside line 1
	e.OnClockTick(2.5)
	if e.CurrentLine() != 1 {
		t.Fatalf("current line = %d, want 1 with +1.0s offset", e.CurrentLine())
	}
	e.ResetOffset()
	e.OnClockTick(2.5)
	if e.CurrentLine() != 2 {
		t.Fatalf("current line = %d, want 2 after reset", e.CurrentLine())
	}
}

func TestNavigateTo(t *testing.T) {
	e := New(twoLines())
	e.SetRepeating(true)

	e.NavigateTo(2)
	if e.CurrentLine() != 2 {
		t.Fatalf("current line = %d, want 2", e.CurrentLine())
	}
	if !e.SeekRequested() {
		t.Error("navigation must request a seek")
	}
	if e.Repeating() {
		t.Error("navigation must clear repeat")
	}
}

func TestNavigateToOutOfRangeIsNoOp(t *testing.T) {
	e := New(twoLines())
	for _, n := range []int{0, -1, 3, 99} {
		e.NavigateTo(n)
		if e.CurrentLine() != 1 {
			t.Errorf("NavigateTo(%d) moved line to %d", n, e.CurrentLine())
		}
		if e.SeekRequested() {
			t.Errorf("NavigateTo(%d) requested a seek", n)
		}
	}
}

func TestPrevNextClamp(t *testing.T) {
	e := New(twoLines())
	e.Prev()
	if e.CurrentLine() != 1 || e.SeekRequested() {
		t.Errorf("Prev at line 1 changed state: line=%d seek=%v", e.CurrentLine(), e.SeekRequested())
	}
	e.Next()
	if e.CurrentLine() != 2 || !e.SeekRequested() {
		t.Fatalf("Next failed: line=%d seek=%v", e.CurrentLine(), e.SeekRequested())
	}
	e.ConsumeSeekRequest()
	e.Next()
	if e.CurrentLine() != 2 || e.SeekRequested() {
		t.Errorf("Next at last line changed state: line=%d seek=%v", e.CurrentLine(), e.SeekRequested())
	}
}

func TestConsumeSeekRequestOnce(t *testing.T) {
	e := New(twoLines())
	e.NavigateTo(2)

	target, ok := e.ConsumeSeekRequest()
	if !ok {
		t.Fatal("expected a pending seek")
	}
	if target != 2 {
		t.Errorf("seek target = %v, want 2 (line 2 start)", target)
	}
	if e.SeekRequested() {
		t.Error("flag must clear on consume")
	}

	if _, ok := e.ConsumeSeekRequest(); ok {
		t.Error("second consume must report nothing pending")
	}
}

func TestSeekNotEchoedByTick(t *testing.T) {
	e := New(twoLines())
	e.NavigateTo(2)
	e.ConsumeSeekRequest()
	// The player lands on line 2's start and the next poll reports it. That
	// tick is the echo of our own seek and must not raise the flag again.
	tick := e.OnClockTick(2.0)
	if tick.LineChanged {
		t.Error("tick after seek should see the line already current")
	}
	if e.SeekRequested() {
		t.Error("clock tick must never request a seek")
	}
}

func TestRepeatLoop(t *testing.T) {
	c := collection(model.SubtitleLine{Number: 1, Start: 2.0, End: 5.0})
	e := New(c)
	e.SetRepeating(true)

	if tick := e.OnClockTick(4.9); tick.RepeatSeekOK {
		t.Error("tick before the line end must not loop")
	}
	tick := e.OnClockTick(5.0)
	if !tick.RepeatSeekOK {
		t.Fatal("tick at the line end must loop")
	}
	if tick.RepeatSeek != 2.0 {
		t.Errorf("loop target = %v, want 2.0", tick.RepeatSeek)
	}
	if e.SeekRequested() {
		t.Error("repeat looping must not touch the seek-requested flag")
	}
	if e.CurrentLine() != 1 {
		t.Errorf("repeat looping must not change the line, got %d", e.CurrentLine())
	}
}

func TestRepeatUsesRawClockTime(t *testing.T) {
	e := New(twoLines())
	e.SetRepeating(true)
	e.AdjustOffset(0.5)
	// Raw clock 2.0 is at line 1's end, so the loop fires even though the
	// adjusted lookup time 1.5 is still inside the interval.
	tick := e.OnClockTick(2.0)
	if !tick.RepeatSeekOK || tick.RepeatSeek != 0 {
		t.Errorf("expected loop to 0, got %+v", tick)
	}
}

func TestAdjustOffsetRounding(t *testing.T) {
	e := New(twoLines())
	e.AdjustOffset(0.5)
	e.AdjustOffset(0.5)
	e.AdjustOffset(0.5)
	e.AdjustOffset(-0.5)
	if math.Abs(e.Offset()-1.0) > 1e-12 {
		t.Errorf("offset = %v, want 1.0 exactly", e.Offset())
	}
	e.ResetOffset()
	if e.Offset() != 0 {
		t.Errorf("offset = %v after reset, want 0", e.Offset())
	}
}

func TestToggles(t *testing.T) {
	e := New(twoLines())
	if !e.ShowOriginal() || !e.ShowTranslation() {
		t.Fatal("overlays must default to visible")
	}
	e.ToggleOriginal()
	e.ToggleTranslation()
	if e.ShowOriginal() || e.ShowTranslation() {
		t.Error("toggles did not flip")
	}
	e.ToggleRepeating()
	if !e.Repeating() {
		t.Error("repeat toggle did not flip")
	}
	e.SetPlaying(true)
	if !e.Playing() {
		t.Error("playing state not mirrored")
	}
}

func TestActiveLineDefensiveOnGap(t *testing.T) {
	c := collection(
		model.SubtitleLine{Number: 1, Start: 0, End: 1},
		model.SubtitleLine{Number: 3, Start: 2, End: 3},
	)
	e := New(c)
	e.NavigateTo(3)
	if line, ok := e.ActiveLine(); !ok || line.Number != 3 {
		t.Fatalf("active line lookup failed: %+v %v", line, ok)
	}
	// Force the missing number to exercise the defensive path.
	e.currentLine = 2
	if _, ok := e.ActiveLine(); ok {
		t.Error("missing line must report ok=false")
	}
	if _, ok := e.ConsumeSeekRequest(); ok {
		t.Error("no seek should be pending")
	}
}

func TestEndToEnd(t *testing.T) {
	e := New(twoLines())
	e.OnClockTick(1.5)
	if e.CurrentLine() != 1 {
		t.Fatalf("current line = %d, want 1", e.CurrentLine())
	}
	e.OnClockTick(2.5)
	if e.CurrentLine() != 2 {
		t.Fatalf("current line = %d, want 2", e.CurrentLine())
	}
	if e.SeekRequested() {
		t.Error("seek must still be unrequested")
	}
}
