//go:build darwin

package inspector

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FindByCommandPattern lists processes via ps and matches pattern against
// the full argument vector. The lowest matching pid wins.
func (OS) FindByCommandPattern(pattern string) (int, bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return 0, false, fmt.Errorf("empty command pattern")
	}
	out, err := exec.Command("ps", "-axo", "pid=,args=").Output()
	if err != nil {
		return 0, false, fmt.Errorf("failed to list processes: %w", err)
	}
	self := os.Getpid()
	parent := os.Getppid()

	minPID := 0
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid == self || pid == parent {
			continue
		}
		args := strings.Join(fields[1:], " ")
		if strings.Contains(args, pattern) {
			if minPID == 0 || pid < minPID {
				minPID = pid
			}
		}
	}
	if minPID == 0 {
		return 0, false, nil
	}
	return minPID, true, nil
}

// FindByPort asks lsof for the pid of the LISTEN socket on port.
func (OS) FindByPort(port int) (int, bool, error) {
	// -t terse pid output, -n/-P skip name resolution
	out, err := exec.Command("lsof", "-i", fmt.Sprintf("TCP:%d", port), "-s", "TCP:LISTEN", "-n", "-P", "-t").Output()
	if err != nil {
		// lsof exits non-zero when nothing matches
		return 0, false, nil
	}
	minPID := 0
	for _, s := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || pid <= 0 {
			continue
		}
		if minPID == 0 || pid < minPID {
			minPID = pid
		}
	}
	if minPID == 0 {
		return 0, false, nil
	}
	return minPID, true, nil
}
