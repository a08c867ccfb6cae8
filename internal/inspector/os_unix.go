//go:build !windows

package inspector

import (
	"errors"
	"syscall"
)

// pidAlive returns true if a process with given pid exists (or EPERM).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (OS) Alive(pid int) bool { return pidAlive(pid) }

func (OS) Signal(pid int, sig Signal) error {
	s := syscall.SIGTERM
	if sig == SigKill {
		s = syscall.SIGKILL
	}
	return syscall.Kill(pid, s)
}
