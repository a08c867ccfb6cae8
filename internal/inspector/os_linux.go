//go:build linux

package inspector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FindByCommandPattern scans /proc/<pid>/cmdline for processes whose
// command line contains pattern. The lowest matching pid wins so a master
// process is preferred over forked workers.
func (OS) FindByCommandPattern(pattern string) (int, bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return 0, false, fmt.Errorf("empty command pattern")
	}
	self := os.Getpid()
	parent := os.Getppid()

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, false, err
	}
	var matches []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if pid == self || pid == parent {
			continue
		}
		raw, err := os.ReadFile("/proc/" + e.Name() + "/cmdline")
		if err != nil {
			continue
		}
		// cmdline is NUL-separated
		cmd := strings.ReplaceAll(string(raw), "\x00", " ")
		if strings.Contains(cmd, pattern) {
			matches = append(matches, pid)
		}
	}
	if len(matches) == 0 {
		return 0, false, nil
	}
	sort.Ints(matches)
	return matches[0], true, nil
}

// FindByPort resolves the pid owning a LISTEN socket on port by collecting
// socket inodes from /proc/net/tcp[6] and walking /proc/<pid>/fd links.
func (OS) FindByPort(port int) (int, bool, error) {
	inodes := make(map[string]bool)
	for _, file := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		for inode := range listenerInodes(string(data), port) {
			inodes[inode] = true
		}
	}
	if len(inodes) == 0 {
		return 0, false, nil
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, false, err
	}
	minPID := 0
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		fdDir := filepath.Join("/proc", e.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if !strings.HasPrefix(link, "socket:[") {
				continue
			}
			inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
			if inodes[inode] {
				// lowest pid is the main listener, not a forked child
				if minPID == 0 || pid < minPID {
					minPID = pid
				}
			}
		}
	}
	if minPID == 0 {
		return 0, false, fmt.Errorf("socket on port %d found but owning process not visible", port)
	}
	return minPID, true, nil
}

const tcpStateListen = "0A"

// listenerInodes extracts socket inodes in LISTEN state bound to port from
// the content of a /proc/net/tcp style table.
func listenerInodes(table string, port int) map[string]bool {
	targetHex := fmt.Sprintf("%04X", port)
	inodes := make(map[string]bool)
	lines := strings.Split(table, "\n")
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		local := strings.Split(fields[1], ":")
		if len(local) != 2 || local[1] != targetHex {
			continue
		}
		if fields[3] != tcpStateListen {
			continue
		}
		inodes[fields[9]] = true
	}
	return inodes
}
