package factory

import (
	"context"
	"testing"
	"time"

	"github.com/SmallVagetable/nanobot-hyc/internal/history"
)

func TestNewSinkFromDSNEmpty(t *testing.T) {
	if _, err := NewSinkFromDSN(""); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestNewSinkFromDSNUnsupported(t *testing.T) {
	if _, err := NewSinkFromDSN("redis://localhost:6379"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestNewSinkFromDSNSQLite(t *testing.T) {
	sink, err := NewSinkFromDSN("sqlite://:memory:")
	if err != nil {
		t.Fatalf("sqlite sink: %v", err)
	}
	defer func() { _ = sink.Close() }()
	e := history.Event{Type: history.EventLaunch, OccurredAt: time.Now(), Name: "gateway", PID: 7}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestNewSinkFromDSNBarePathIsSQLite(t *testing.T) {
	path := t.TempDir() + "/h.db"
	sink, err := NewSinkFromDSN(path)
	if err != nil {
		t.Fatalf("bare path should default to sqlite: %v", err)
	}
	_ = sink.Close()
}
