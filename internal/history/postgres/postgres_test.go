package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SmallVagetable/nanobot-hyc/internal/history"
)

func TestNewRejectsEmptyDSN(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

// TestPostgresSink_Integration needs a reachable database; set
// GATEWAYCTL_TEST_PG_DSN to run it.
func TestPostgresSink_Integration(t *testing.T) {
	dsn := os.Getenv("GATEWAYCTL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GATEWAYCTL_TEST_PG_DSN not set")
	}
	sink, err := New(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = sink.Close() }()

	e := history.Event{Type: history.EventLaunch, OccurredAt: time.Now(), Name: "gateway", PID: 9}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}
}
