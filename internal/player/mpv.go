// Package player drives an external mpv process over its JSON IPC socket.
//
// The adapter exposes the narrow contract the study session needs: poll the
// playback position, seek, flip pause. mpv may not have created the socket
// yet, or may still be loading the stream, so every call degrades to a
// silent no-op until the player is ready; the 200ms poll cadence retries
// implicitly.
package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"time"
)

const (
	dialTimeout    = 250 * time.Millisecond
	replyTimeout   = 500 * time.Millisecond
	pauseObserveID = 1
)

// Adapter is the playback clock contract consumed by the study session.
type Adapter interface {
	// Poll reports the current playback position. ok=false means no update
	// this tick (player not ready), never a fatal condition.
	Poll() (seconds float64, ok bool)
	// SeekTo moves playback to an absolute position, best-effort.
	SeekTo(seconds float64)
	// SetPaused sets the pause state, best-effort.
	SetPaused(paused bool)
	// PauseEvents drains pending pause-state notifications. The last value
	// wins; ok=false means no notification arrived since the previous call.
	PauseEvents() (paused bool, ok bool)
	// Close tears the player down. Pending seeks are simply discarded.
	Close() error
}

// MPV is the mpv-backed Adapter.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	conn       net.Conn
	reader     *bufio.Reader
	requestID  int

	pausePending bool
	pauseValue   bool
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type ipcResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int             `json:"request_id"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	ID        int             `json:"id"`
}

// Launch starts mpv playing a YouTube video with its IPC server on
// socketPath and returns the adapter. mpv resolves the stream itself via
// yt-dlp, so startup is asynchronous; the adapter connects lazily.
func Launch(mpvPath, socketPath, videoID string) (*MPV, error) {
	if mpvPath == "" {
		mpvPath = "mpv"
	}
	cmd := exec.Command(mpvPath,
		"--input-ipc-server="+socketPath,
		"--no-terminal",
		"--force-window",
		"--pause",
		"ytdl://"+videoID,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}
	return &MPV{socketPath: socketPath, cmd: cmd}, nil
}

// Attach wraps an already-listening IPC socket without spawning a process.
func Attach(socketPath string) *MPV {
	return &MPV{socketPath: socketPath}
}

// Poll implements Adapter.
func (m *MPV) Poll() (float64, bool) {
	data, err := m.roundTrip("get_property", "time-pos")
	if err != nil {
		return 0, false
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		// time-pos is null before the file loads.
		return 0, false
	}
	return seconds, true
}

// SeekTo implements Adapter. Failures are swallowed; the next navigation or
// tick self-corrects.
func (m *MPV) SeekTo(seconds float64) {
	_, _ = m.roundTrip("seek", seconds, "absolute")
}

// SetPaused implements Adapter.
func (m *MPV) SetPaused(paused bool) {
	_, _ = m.roundTrip("set_property", "pause", paused)
}

// PauseEvents implements Adapter. Property-change events are collected as a
// side effect of request round-trips, so this only reports state observed
// since the last call.
func (m *MPV) PauseEvents() (bool, bool) {
	if !m.pausePending {
		return false, false
	}
	m.pausePending = false
	return m.pauseValue, true
}

// Close implements Adapter.
func (m *MPV) Close() error {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	return nil
}

// connect dials the socket on first use and subscribes to pause changes.
func (m *MPV) connect() error {
	if m.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", m.socketPath, dialTimeout)
	if err != nil {
		return err
	}
	m.conn = conn
	m.reader = bufio.NewReader(conn)
	if _, err := m.roundTrip("observe_property", pauseObserveID, "pause"); err != nil {
		// The subscription is per-connection. An mpv-level refusal leaves
		// the transport up, so drop it explicitly; the next call redials
		// and re-subscribes.
		m.drop()
		return err
	}
	return nil
}

// roundTrip issues one command and reads until its matching response,
// folding any interleaved event messages into the pause state.
func (m *MPV) roundTrip(command ...any) (json.RawMessage, error) {
	if err := m.connect(); err != nil {
		return nil, err
	}
	m.requestID++
	req := ipcRequest{Command: command, RequestID: m.requestID}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(replyTimeout)
	if err := m.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	if _, err := m.conn.Write(append(payload, '\n')); err != nil {
		m.drop()
		return nil, err
	}
	for {
		line, err := m.reader.ReadBytes('\n')
		if err != nil {
			m.drop()
			return nil, err
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" {
			m.handleEvent(resp)
			continue
		}
		if resp.RequestID != m.requestID {
			continue
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	}
}

func (m *MPV) handleEvent(resp ipcResponse) {
	if resp.Event != "property-change" || resp.Name != "pause" {
		return
	}
	var paused bool
	if err := json.Unmarshal(resp.Data, &paused); err != nil {
		return
	}
	m.pausePending = true
	m.pauseValue = paused
}

// drop discards a broken connection so the next call redials.
func (m *MPV) drop() {
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.conn = nil
	m.reader = nil
}
