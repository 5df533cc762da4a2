package audit_test

import (
	"os"
	"testing"
	"time"

	"github.com/elabx-org/identify/internal/audit"
)

func newLogger(t *testing.T) *audit.Logger {
	t.Helper()
	f, _ := os.CreateTemp("", "identify-audit-*.log")
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	logger, err := audit.New(f.Name())
	if err != nil {
		t.Fatalf("audit.New() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestAuditLog(t *testing.T) {
	logger := newLogger(t)

	logger.Log(audit.Entry{
		LookupID:    "3f0c2a4e",
		EmailHash:   "b58996c504c5638798eb6b511e6f49af",
		Source:      "Gravatar",
		Result:      "found",
		DurationMs:  87,
		TriggeredBy: "identifyctl",
	})
	logger.Log(audit.Entry{LookupID: "77ab", Result: "no_result", DurationMs: 412})

	entries, err := logger.Query(audit.QueryOptions{Source: "gravatar"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].LookupID != "3f0c2a4e" {
		t.Errorf("LookupID = %q, want 3f0c2a4e", entries[0].LookupID)
	}

	entries, _ = logger.Query(audit.QueryOptions{Result: "no_result", Hours: 1})
	if len(entries) != 1 {
		t.Errorf("got %d no_result entries, want 1", len(entries))
	}
}

func TestAuditPrune(t *testing.T) {
	logger := newLogger(t)

	logger.Log(audit.Entry{LookupID: "old", Result: "found", Timestamp: time.Now().AddDate(0, 0, -45)})
	logger.Log(audit.Entry{LookupID: "new", Result: "found"})

	removed, err := logger.Prune(30)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// the append handle still works after the rewrite
	logger.Log(audit.Entry{LookupID: "after", Result: "found"})

	entries, err := logger.Query(audit.QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 2 || entries[0].LookupID != "new" || entries[1].LookupID != "after" {
		t.Errorf("entries after prune = %+v, want [new after]", entries)
	}
}
