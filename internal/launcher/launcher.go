package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
	"github.com/SmallVagetable/nanobot-hyc/internal/logger"
)

// Spec describes how to start a fresh gateway instance.
type Spec struct {
	Name    string        `json:"name"`
	Command string        `json:"command"`  // launch command (shell syntax accepted)
	WorkDir string        `json:"work_dir"` // optional working dir
	Env     []string      `json:"env"`      // optional extra env (KEY=VALUE)
	Log     logger.Config `json:"log"`      // gateway output capture
}

// Launch starts the gateway as a detached background process whose stdout
// and stderr are appended to the configured log file. The child is placed
// in its own session so it survives this process exiting. A start failure
// is reported as an error; whether the child stays up is not verified here
// (see WaitListening for the opt-in health check).
func (s *Spec) Launch() (int, error) {
	cmd := s.BuildCommand()
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	configureSysProcAttr(cmd)

	// The child must hold the log descriptor itself: anything that is not
	// an *os.File makes os/exec interpose a pipe serviced by this process,
	// and the child would lose its output (and die on SIGPIPE) once we
	// exit. Log.Open hands out a plain append-mode fd and rotates the old
	// file beforehand.
	w, err := s.Log.Open()
	if err != nil {
		return 0, fmt.Errorf("open log %s: %w", s.Log.Path, err)
	}
	if w != nil {
		defer func() { _ = w.Close() }()
		cmd.Stdout = w
		cmd.Stderr = w
	} else {
		null, _ := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		defer func() { _ = null.Close() }()
		cmd.Stdout = null
		cmd.Stderr = null
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", s.Name, err)
	}
	pid := cmd.Process.Pid
	// The child is never waited on; drop the handle so it is not tied to us.
	_ = cmd.Process.Release()
	return pid, nil
}

// BuildCommand constructs an *exec.Cmd for the spec's Command.
// It avoids invoking a shell when not necessary, and it also respects an
// explicit shell invocation already present in the command string
// (e.g., "sh -c 'python run.py gateway'"), avoiding double-wrapping.
func (s *Spec) BuildCommand() *exec.Cmd {
	cmdStr := strings.TrimSpace(s.Command)
	if cmdStr == "" {
		return getTrueCommand()
	}
	if afterC, ok := parseExplicitShell(cmdStr); ok {
		return getShellCommand(afterC)
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return getShellCommand(cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// #nosec G204
	return exec.Command(name, args...)
}

// parseExplicitShell detects patterns like "sh -c <ARG>" or "/bin/sh -c <ARG>"
// at the beginning of cmdStr and returns the argument after "-c" verbatim,
// stripping one pair of surrounding quotes when present.
func parseExplicitShell(cmdStr string) (string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	for _, p := range []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "} {
		if strings.HasPrefix(trim, p) {
			after := trim[len(p):]
			if n := len(after); n >= 2 {
				if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
					after = after[1 : n-1]
				}
			}
			return after, true
		}
	}
	return "", false
}

// WaitListening polls until some process owns a LISTEN socket on port or
// the window elapses. Opt-in post-launch health check; sleep is injectable
// for tests.
func WaitListening(insp inspector.Inspector, port int, window time.Duration, sleep func(time.Duration)) error {
	if window <= 0 {
		return nil
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	const step = 100 * time.Millisecond
	for waited := time.Duration(0); waited < window; waited += step {
		if _, ok, _ := insp.FindByPort(port); ok {
			return nil
		}
		sleep(step)
	}
	return fmt.Errorf("no listener on port %d after %s", port, window)
}
