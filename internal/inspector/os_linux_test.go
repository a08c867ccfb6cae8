//go:build linux

package inspector

import (
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"
)

// Trimmed /proc/net/tcp content: one LISTEN socket on 18790 (0x4966, inode
// 7777), one established connection on the same port (inode 8888), and one
// LISTEN socket on another port (inode 9999).
const tcpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000:4966 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 7777 1 0000000000000000 100 0 0 10 0
   1: 0100007F:4966 0100007F:A3E2 01 00000000:00000000 00:00000000 00000000  1000        0 8888 1 0000000000000000 100 0 0 10 0
   2: 00000000:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 9999 1 0000000000000000 100 0 0 10 0
`

func TestListenerInodes(t *testing.T) {
	inodes := listenerInodes(tcpFixture, 18790)
	if len(inodes) != 1 || !inodes["7777"] {
		t.Fatalf("expected only the LISTEN inode 7777, got %v", inodes)
	}
}

func TestListenerInodesOtherPort(t *testing.T) {
	inodes := listenerInodes(tcpFixture, 8080)
	if len(inodes) != 1 || !inodes["9999"] {
		t.Fatalf("expected inode 9999 for port 8080, got %v", inodes)
	}
}

func TestListenerInodesNoMatch(t *testing.T) {
	if inodes := listenerInodes(tcpFixture, 1234); len(inodes) != 0 {
		t.Fatalf("expected no inodes, got %v", inodes)
	}
}

func TestFindByCommandPatternSelf(t *testing.T) {
	// Spawn a sleeper with a recognizable argument and find it.
	marker := fmt.Sprintf("gatewayctl-test-%d", os.Getpid())
	// Compound command so the shell does not exec-replace itself and the
	// marker stays visible in its cmdline.
	cmd := exec.Command("sh", "-c", "sleep 30; sleep 30 # "+marker)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleeper: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()
	// /proc needs a moment on some kernels
	time.Sleep(50 * time.Millisecond)

	pid, ok, err := OS{}.FindByCommandPattern(marker)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok || pid != cmd.Process.Pid {
		t.Fatalf("expected pid %d, got pid=%d ok=%v", cmd.Process.Pid, pid, ok)
	}
}

func TestFindByCommandPatternMiss(t *testing.T) {
	pid, ok, err := OS{}.FindByCommandPattern("no-process-would-ever-have-this-cmdline")
	if err != nil || ok || pid != 0 {
		t.Fatalf("expected clean miss, got pid=%d ok=%v err=%v", pid, ok, err)
	}
}

func TestFindByCommandPatternEmpty(t *testing.T) {
	if _, _, err := (OS{}).FindByCommandPattern("  "); err == nil {
		t.Fatalf("empty pattern must be rejected")
	}
}

func TestAliveSelf(t *testing.T) {
	if !(OS{}).Alive(os.Getpid()) {
		t.Fatalf("own pid must be alive")
	}
	if (OS{}).Alive(0) || (OS{}).Alive(-1) {
		t.Fatalf("non-positive pids are never alive")
	}
}
