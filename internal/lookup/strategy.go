package lookup

import (
	"errors"
	"fmt"

	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
)

// Strategy is one technique for resolving the target process pid.
// Implementations read ambient OS state freshly on every call.
type Strategy interface {
	// Resolve returns the target pid. ok is false when the strategy found
	// nothing; err reports a probe failure, which is not the same thing.
	Resolve() (pid int, ok bool, err error)
	// Describe returns a human-readable description of the technique.
	Describe() string
}

// CommandPattern matches the target by a substring of its command line.
type CommandPattern struct {
	Inspector inspector.Inspector
	Pattern   string
}

func (s CommandPattern) Resolve() (int, bool, error) {
	return s.Inspector.FindByCommandPattern(s.Pattern)
}

func (s CommandPattern) Describe() string { return "cmdline:" + s.Pattern }

// PortOwner matches the target by ownership of a listening TCP port.
type PortOwner struct {
	Inspector inspector.Inspector
	Port      int
}

func (s PortOwner) Resolve() (int, bool, error) {
	return s.Inspector.FindByPort(s.Port)
}

func (s PortOwner) Describe() string { return fmt.Sprintf("port:%d", s.Port) }

// Result is a successful resolution: the pid and the strategy that won.
type Result struct {
	PID        int
	DetectedBy string
}

// First evaluates strategies in order and returns the first hit. Later
// strategies are not evaluated once one yields a pid. A strategy error
// does not abort the chain; if nothing is found, the collected probe
// errors (if any) are returned joined.
func First(strategies []Strategy) (Result, bool, error) {
	var errs []error
	for _, s := range strategies {
		pid, ok, err := s.Resolve()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Describe(), err))
			continue
		}
		if ok {
			return Result{PID: pid, DetectedBy: s.Describe()}, true, nil
		}
	}
	return Result{}, false, errors.Join(errs...)
}
