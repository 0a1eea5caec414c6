package player

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"
)

// fakeMPV answers IPC requests on a unix socket the way mpv does: one JSON
// object per line, echoing request_id, with optional event lines injected
// before the response.
type fakeMPV struct {
	t        *testing.T
	listener net.Listener

	mu              sync.Mutex
	timePos         any
	commands        [][]any
	events          []string
	observeRefusals int
}

func newFakeMPV(t *testing.T) *fakeMPV {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	f := &fakeMPV{t: t, listener: listener, timePos: nil}
	go f.serve()
	t.Cleanup(func() {
		_ = listener.Close()
	})
	return f
}

func (f *fakeMPV) path() string {
	return f.listener.Addr().String()
}

func (f *fakeMPV) setTimePos(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timePos = v
}

func (f *fakeMPV) refuseObserve(times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observeRefusals = times
}

func (f *fakeMPV) queueEvent(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, line)
}

func (f *fakeMPV) sentCommands() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int   `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		pending := f.events
		f.events = nil
		timePos := f.timePos
		refuse := len(req.Command) > 0 && req.Command[0] == "observe_property" && f.observeRefusals > 0
		if refuse {
			f.observeRefusals--
		}
		f.mu.Unlock()

		for _, event := range pending {
			if _, err := conn.Write([]byte(event + "\n")); err != nil {
				return
			}
		}

		resp := map[string]any{"error": "success", "request_id": req.RequestID}
		if refuse {
			resp["error"] = "property unavailable"
		}
		if len(req.Command) > 1 && req.Command[0] == "get_property" && req.Command[1] == "time-pos" {
			resp["data"] = timePos
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			f.t.Errorf("failed to marshal response: %v", err)
			return
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			return
		}
	}
}

func TestPollReportsPosition(t *testing.T) {
	fake := newFakeMPV(t)
	fake.setTimePos(12.34)
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	seconds, ok := m.Poll()
	if !ok {
		t.Fatal("expected a position")
	}
	if seconds != 12.34 {
		t.Errorf("Poll = %v, want 12.34", seconds)
	}
}

func TestPollNullPositionSkipsTick(t *testing.T) {
	fake := newFakeMPV(t)
	// time-pos is null while mpv is still loading the stream.
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	if _, ok := m.Poll(); ok {
		t.Error("null time-pos must report ok=false")
	}
}

func TestPollWithoutSocketIsSilent(t *testing.T) {
	m := Attach(filepath.Join(t.TempDir(), "absent.sock"))
	defer func() {
		_ = m.Close()
	}()

	if _, ok := m.Poll(); ok {
		t.Error("missing socket must report ok=false, not fail")
	}
}

func TestSeekAndPauseCommands(t *testing.T) {
	fake := newFakeMPV(t)
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	m.SeekTo(2.5)
	m.SetPaused(true)

	var sawSeek, sawPause bool
	for _, command := range fake.sentCommands() {
		if len(command) == 0 {
			continue
		}
		switch command[0] {
		case "seek":
			sawSeek = command[1] == 2.5 && command[2] == "absolute"
		case "set_property":
			if command[1] == "pause" {
				sawPause = command[2] == true
			}
		}
	}
	if !sawSeek {
		t.Error("seek command not sent")
	}
	if !sawPause {
		t.Error("pause command not sent")
	}
}

func TestPauseEventsFolded(t *testing.T) {
	fake := newFakeMPV(t)
	fake.setTimePos(1.0)
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	if _, ok := m.PauseEvents(); ok {
		t.Fatal("no events expected before any round trip")
	}

	fake.queueEvent(`{"event":"property-change","id":1,"name":"pause","data":false}`)
	if _, ok := m.Poll(); !ok {
		t.Fatal("poll failed")
	}

	paused, ok := m.PauseEvents()
	if !ok {
		t.Fatal("expected a pause notification")
	}
	if paused {
		t.Error("expected paused=false")
	}
	if _, ok := m.PauseEvents(); ok {
		t.Error("notification must be consumed")
	}
}

func TestObserveRefusalRetriedOnNextCall(t *testing.T) {
	fake := newFakeMPV(t)
	fake.setTimePos(1.0)
	fake.refuseObserve(1)
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	// The refused subscription must take the connection down with it:
	// otherwise pause events are silently lost for the whole session.
	if _, ok := m.Poll(); ok {
		t.Fatal("poll should fail while the subscription is refused")
	}
	if _, ok := m.Poll(); !ok {
		t.Fatal("poll should succeed after redial")
	}

	var observes int
	for _, command := range fake.sentCommands() {
		if len(command) > 0 && command[0] == "observe_property" {
			observes++
		}
	}
	if observes != 2 {
		t.Errorf("expected the subscription to be retried, got %d observe_property commands", observes)
	}
}

func TestObserveSubscriptionSentFirst(t *testing.T) {
	fake := newFakeMPV(t)
	fake.setTimePos(1.0)
	m := Attach(fake.path())
	defer func() {
		_ = m.Close()
	}()

	m.Poll()
	commands := fake.sentCommands()
	if len(commands) == 0 || commands[0][0] != "observe_property" {
		t.Fatalf("expected observe_property first, got %v", commands)
	}
}
