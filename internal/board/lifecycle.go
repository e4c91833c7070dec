package board

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"
)

// ServerState is what `up` leaves in .projectboard/server.json so that a
// later `up`, `down` or `doctor` can find the running server.
type ServerState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	Feed      string    `json:"feed,omitempty"`
	Watching  bool      `json:"watching,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Live reports whether the recorded process still exists.
func (s *ServerState) Live() bool {
	return s != nil && processExists(s.PID)
}

func (s *ServerState) URL() string { return "http://" + s.Addr }

// ReadServerState returns the recorded server, or an fs.ErrNotExist error
// when none was recorded.
func ReadServerState(root string) (*ServerState, error) {
	var st ServerState
	if err := readJSONFile(serverStatePath(root), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// liveServer is the recorded server if its process is still around. A state
// file left behind by a dead process is removed.
func liveServer(root string) (*ServerState, bool) {
	st, err := ReadServerState(root)
	if err != nil {
		return nil, false
	}
	if !st.Live() {
		_ = clearServerState(root)
		return nil, false
	}
	return st, true
}

func writeServerState(root string, st *ServerState) error {
	return writeJSONFile(serverStatePath(root), st)
}

func clearServerState(root string) error {
	if err := os.Remove(serverStatePath(root)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func processExists(pid int) bool {
	return pid > 0 && syscall.Kill(pid, 0) == nil
}

type DownOptions struct {
	Force bool
}

type DownResult struct {
	WasRunning bool
	PID        int
}

const (
	stopGrace = 3 * time.Second
	killGrace = 500 * time.Millisecond
)

// Down stops the recorded server: SIGTERM, then SIGKILL if it is still up
// after stopGrace. Force skips straight to SIGKILL. The state file is kept
// only when the process could not be signalled.
func Down(root string, opt DownOptions) (*DownResult, error) {
	st, ok := liveServer(root)
	if !ok {
		return &DownResult{}, nil
	}
	res := &DownResult{WasRunning: true, PID: st.PID}

	steps := []struct {
		sig  syscall.Signal
		wait time.Duration
	}{
		{syscall.SIGTERM, stopGrace},
		{syscall.SIGKILL, killGrace},
	}
	if opt.Force {
		steps = steps[1:]
	}
	for _, s := range steps {
		stopped, err := signalAndWait(st.PID, s.sig, s.wait)
		if err != nil {
			return nil, err
		}
		if stopped {
			break
		}
	}
	return res, clearServerState(root)
}

// signalAndWait sends sig to pid and polls until the process is gone or
// wait elapses.
func signalAndWait(pid int, sig syscall.Signal, wait time.Duration) (bool, error) {
	if err := syscall.Kill(pid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return true, nil
		}
		return false, fmt.Errorf("signal %d (%s): %w", pid, sig, err)
	}
	for deadline := time.Now().Add(wait); time.Now().Before(deadline); {
		if !processExists(pid) {
			return true, nil
		}
		time.Sleep(25 * time.Millisecond)
	}
	return !processExists(pid), nil
}
