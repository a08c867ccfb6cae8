//go:build windows

package inspector

import (
	"fmt"
	"syscall"
)

// Process lookup by command line or port is not implemented on Windows;
// the lookup chain treats these as probe failures, not as misses.

func (OS) FindByCommandPattern(pattern string) (int, bool, error) {
	return 0, false, fmt.Errorf("command-line lookup not supported on windows")
}

func (OS) FindByPort(port int) (int, bool, error) {
	return 0, false, fmt.Errorf("port lookup not supported on windows")
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() { _ = syscall.CloseHandle(h) }()
	return true
}

func (OS) Alive(pid int) bool { return pidAlive(pid) }

// Signal terminates the process. Windows has no TERM/KILL distinction, so
// both signals map to TerminateProcess.
func (OS) Signal(pid int, sig Signal) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	h, err := syscall.OpenProcess(syscall.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		// Process already gone.
		return nil
	}
	defer func() { _ = syscall.CloseHandle(h) }()
	return syscall.TerminateProcess(h, 1)
}
