package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerbird/companion-cli/internal/events"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second) // SQLite stores with second precision

	entries := []Entry{
		{ID: "e1", RecordedAt: base, WorkspaceID: "ws_1", Kind: KindApplied, EventID: "ev_1", ClusterKey: "bank-match"},
		{ID: "e2", RecordedAt: base.Add(time.Second), WorkspaceID: "ws_1", Kind: KindRejected, EventID: "ev_2", Detail: "duplicate"},
		{ID: "e3", RecordedAt: base.Add(2 * time.Second), WorkspaceID: "ws_2", Kind: KindApplied, EventID: "ev_3"},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s) error = %v", e.ID, err)
		}
	}

	got, err := j.Recent(ctx, "ws_1", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(ws_1) returned %d entries, want 2", len(got))
	}
	if got[0].ID != "e2" || got[1].ID != "e1" {
		t.Errorf("order = [%s %s], want newest first [e2 e1]", got[0].ID, got[1].ID)
	}
	if got[1].ClusterKey != "bank-match" {
		t.Errorf("ClusterKey = %q", got[1].ClusterKey)
	}
	if got[0].Detail != "duplicate" {
		t.Errorf("Detail = %q", got[0].Detail)
	}

	all, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Recent(all) returned %d entries, want 3", len(all))
	}
}

func TestJournal_FillsDefaults(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	err := j.Record(ctx, Entry{WorkspaceID: "ws_1", Kind: KindApplied, EventID: "ev_1"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := j.Recent(ctx, "ws_1", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	e := got[0]
	if e.ID == "" {
		t.Error("ID should be generated")
	}
	if e.RecordedAt.IsZero() {
		t.Error("RecordedAt should be stamped")
	}
	if e.Actor != DefaultActor {
		t.Errorf("Actor = %q, want %q", e.Actor, DefaultActor)
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		e := Entry{
			RecordedAt:  base.Add(time.Duration(i) * time.Second),
			WorkspaceID: "ws_1",
			Kind:        KindApplied,
		}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := j.Recent(ctx, "ws_1", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if !got[0].RecordedAt.After(got[1].RecordedAt) {
		t.Error("entries should be newest first")
	}
}

func TestJournal_Summarize(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	kinds := []Kind{KindApplied, KindApplied, KindRejected, KindModeChanged}
	for _, k := range kinds {
		if err := j.Record(ctx, Entry{WorkspaceID: "ws_1", Kind: k}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := j.Record(ctx, Entry{WorkspaceID: "ws_2", Kind: KindApplied}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	counts, err := j.Summarize(ctx, "ws_1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if counts[KindApplied] != 2 || counts[KindRejected] != 1 || counts[KindModeChanged] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts[KindApplyFailed]; ok {
		t.Error("unseen kinds should be absent, not zero")
	}
}

func TestJournal_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := j.Record(ctx, Entry{WorkspaceID: "ws_1", Kind: KindApplied, EventID: "ev_1"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening must not re-run the initial migration.
	j2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer j2.Close()

	got, err := j2.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].EventID != "ev_1" {
		t.Errorf("entries after reopen = %+v", got)
	}
}

func TestRecorder_WritesDecisions(t *testing.T) {
	j := openTestJournal(t)
	bus := events.New(16)
	defer bus.Close()

	rec := NewRecorder(j, bus, nil)
	rec.Start()

	bus.Publish(events.NewProposalAppliedEvent("ws_1", "ev_1", "bank-match", "Invoice #1042"))
	bus.Publish(events.NewProposalRejectedEvent("ws_1", "ev_2", "bank-match", "wrong account"))
	bus.Publish(events.NewClusterApprovedEvent("ws_1", "bank-match", 2, 1, nil))
	bus.Publish(events.NewQueueRefreshedEvent("ws_1", 4, 2)) // not a decision
	rec.Stop()

	got, err := j.Recent(context.Background(), "ws_1", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3 (refreshes are not journaled)", len(got))
	}

	byKind := make(map[Kind]Entry)
	for _, e := range got {
		byKind[e.Kind] = e
	}
	if e, ok := byKind[KindApplied]; !ok || e.EventID != "ev_1" || e.Detail != "Invoice #1042" {
		t.Errorf("applied entry = %+v", e)
	}
	if e, ok := byKind[KindRejected]; !ok || e.Detail != "wrong account" {
		t.Errorf("rejected entry = %+v", e)
	}
	if e, ok := byKind[KindClusterApproved]; !ok || e.ClusterKey != "bank-match" || e.Detail != "applied 2 of 3" {
		t.Errorf("cluster entry = %+v", e)
	}
}

func TestRecorder_StopDrainsBacklog(t *testing.T) {
	j := openTestJournal(t)
	bus := events.New(64)
	defer bus.Close()

	rec := NewRecorder(j, bus, nil)
	rec.Start()

	for i := 0; i < 20; i++ {
		bus.Publish(events.NewProposalAppliedEvent("ws_1", "ev", "g", ""))
	}
	rec.Stop()

	counts, err := j.Summarize(context.Background(), "ws_1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if counts[KindApplied] != 20 {
		t.Errorf("applied count = %d, want 20", counts[KindApplied])
	}
}
