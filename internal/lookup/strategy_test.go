package lookup

import (
	"errors"
	"strings"
	"testing"

	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
)

// fakeInspector maps patterns and ports to pids and counts probe calls.
type fakeInspector struct {
	byPattern    map[string]int
	byPort       map[int]int
	patternErr   error
	portErr      error
	patternCalls int
	portCalls    int
}

func (f *fakeInspector) FindByCommandPattern(pattern string) (int, bool, error) {
	f.patternCalls++
	if f.patternErr != nil {
		return 0, false, f.patternErr
	}
	pid, ok := f.byPattern[pattern]
	return pid, ok, nil
}

func (f *fakeInspector) FindByPort(port int) (int, bool, error) {
	f.portCalls++
	if f.portErr != nil {
		return 0, false, f.portErr
	}
	pid, ok := f.byPort[port]
	return pid, ok, nil
}

func (f *fakeInspector) Alive(pid int) bool                       { return false }
func (f *fakeInspector) Signal(pid int, s inspector.Signal) error { return nil }

func chain(f *fakeInspector) []Strategy {
	return []Strategy{
		CommandPattern{Inspector: f, Pattern: "run.py gateway"},
		PortOwner{Inspector: f, Port: 18790},
		CommandPattern{Inspector: f, Pattern: "gateway"},
	}
}

func TestFirstShortCircuits(t *testing.T) {
	f := &fakeInspector{
		byPattern: map[string]int{"run.py gateway": 111},
		byPort:    map[int]int{18790: 222},
	}
	res, ok, err := First(chain(f))
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if res.PID != 111 {
		t.Fatalf("strategy 1 should win, got pid %d", res.PID)
	}
	if res.DetectedBy != "cmdline:run.py gateway" {
		t.Fatalf("unexpected DetectedBy %q", res.DetectedBy)
	}
	if f.portCalls != 0 {
		t.Fatalf("later strategies must not be evaluated, port probed %d times", f.portCalls)
	}
	if f.patternCalls != 1 {
		t.Fatalf("expected one pattern probe, got %d", f.patternCalls)
	}
}

func TestFirstFallsThroughToPort(t *testing.T) {
	f := &fakeInspector{byPort: map[int]int{18790: 222}}
	res, ok, err := First(chain(f))
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if res.PID != 222 || res.DetectedBy != "port:18790" {
		t.Fatalf("expected port owner 222, got %+v", res)
	}
	// strategy 3 never evaluated
	if f.patternCalls != 1 {
		t.Fatalf("expected exactly one pattern probe before the port hit, got %d", f.patternCalls)
	}
}

func TestFirstErrorDoesNotAbortChain(t *testing.T) {
	f := &fakeInspector{
		patternErr: errors.New("proc unreadable"),
		byPort:     map[int]int{18790: 333},
	}
	res, ok, err := First(chain(f))
	if !ok || err != nil {
		t.Fatalf("port strategy should still win, got ok=%v err=%v", ok, err)
	}
	if res.PID != 333 {
		t.Fatalf("expected pid 333, got %d", res.PID)
	}
}

func TestFirstNothingFoundJoinsErrors(t *testing.T) {
	f := &fakeInspector{patternErr: errors.New("proc unreadable")}
	_, ok, err := First(chain(f))
	if ok {
		t.Fatalf("expected no hit")
	}
	if err == nil || !strings.Contains(err.Error(), "proc unreadable") {
		t.Fatalf("expected joined probe errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "cmdline:run.py gateway") {
		t.Fatalf("expected strategy description in error, got %v", err)
	}
}

func TestFirstEmptyChain(t *testing.T) {
	_, ok, err := First(nil)
	if ok || err != nil {
		t.Fatalf("empty chain should find nothing without error, got ok=%v err=%v", ok, err)
	}
}
