package board

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"
)

type SpawnOptions struct {
	ConfigPath   string
	PortOverride int
	Watch        bool
	Verbose      bool
}

const spawnTimeout = 3 * time.Second

// upArgs is the command line of the detached `up --foreground` child.
func (o SpawnOptions) upArgs(root string) []string {
	var args []string
	if o.Verbose {
		args = append(args, "--verbose")
	}
	if o.ConfigPath != "" {
		args = append(args, "--config", o.ConfigPath)
	}
	args = append(args, "--root", root, "up", "--foreground")
	if o.PortOverride != 0 {
		args = append(args, "--port", strconv.Itoa(o.PortOverride))
	}
	if o.Watch {
		args = append(args, "--watch")
	}
	return args
}

// SpawnBackgroundServer re-executes this binary as `up --foreground` in a
// new session, logging to .projectboard/server.log, and waits for the child
// to record itself in server.json. A server that is already running is
// returned as is.
func SpawnBackgroundServer(app *App, opt SpawnOptions) (pid int, addr string, err error) {
	root := app.Root
	if st, ok := liveServer(root); ok {
		return st.PID, st.Addr, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, "", err
	}
	if err := ensureDir(boardDir(root)); err != nil {
		return 0, "", err
	}
	logPath := serverLogPath(root)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, "", err
	}
	defer logFile.Close()

	cmd := exec.Command(exe, opt.upArgs(root)...)
	cmd.Dir = root
	cmd.Env = os.Environ()
	cmd.Stdout, cmd.Stderr = logFile, logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, "", fmt.Errorf("start server: %w", err)
	}
	child := cmd.Process.Pid
	// The child outlives us; reap it in the background if it dies early.
	go func() { _ = cmd.Wait() }()

	st, err := waitForState(root, child, spawnTimeout)
	if err == nil {
		return st.PID, st.Addr, nil
	}

	port := app.Config.Port
	if opt.PortOverride != 0 {
		port = opt.PortOverride
	}
	return child, "", spawnFailure(err, port, root)
}

var errChildExited = errors.New("server exited")

func waitForState(root string, pid int, timeout time.Duration) (*ServerState, error) {
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); {
		if st, err := ReadServerState(root); err == nil && st.PID == pid && st.Addr != "" {
			return st, nil
		}
		if !processExists(pid) {
			return nil, errChildExited
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, errors.New("server did not start (no state file written)")
}

// spawnFailure explains a child that never recorded itself: a taken port is
// the usual cause, otherwise the tail of its log is attached.
func spawnFailure(cause error, port int, root string) error {
	logPath := serverLogPath(root)
	if portInUse(port) {
		return fmt.Errorf("port %d already in use; stop the other server or change port in %s (see %s)", port, configPath(root), logPath)
	}
	if last, _ := TailLines(logPath, 6); strings.TrimSpace(last) != "" {
		return fmt.Errorf("%w; last log lines:\n%s", cause, last)
	}
	return fmt.Errorf("%w; see %s", cause, logPath)
}

func portInUse(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return errors.Is(err, syscall.EADDRINUSE)
	}
	_ = ln.Close()
	return false
}
