package inspector

// Signal is the termination request kind sent to a resolved process.
type Signal int

const (
	// SigTerm asks the process to exit; it may be caught or ignored.
	SigTerm Signal = iota
	// SigKill terminates the process and cannot be intercepted.
	SigKill
)

func (s Signal) String() string {
	if s == SigKill {
		return "KILL"
	}
	return "TERM"
}

// OS inspects the real process and port tables of the host. The lookup
// implementations live in the platform files.
type OS struct{}

// Inspector abstracts the OS process and port tables so lookup and stop
// logic can be tested against a fake instead of live processes.
// Implementations must read fresh state on every call; nothing is cached.
type Inspector interface {
	// FindByCommandPattern returns the pid of a process whose command line
	// contains pattern as a substring. The calling process and its parent
	// are never matched. ok is false when nothing matches.
	FindByCommandPattern(pattern string) (pid int, ok bool, err error)
	// FindByPort returns the pid owning a listening socket on the given
	// TCP port. ok is false when no listener exists.
	FindByPort(port int) (pid int, ok bool, err error)
	// Alive reports whether a process with the given pid exists.
	Alive(pid int) bool
	// Signal delivers a termination request to pid.
	Signal(pid int, sig Signal) error
}
