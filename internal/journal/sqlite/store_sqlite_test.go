package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/exhuman777/claude-trader/internal/journal"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBatchRoundtrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := &journal.BatchRecord{
		BatchID:       "batch-1",
		Name:          "ladder BUY 5×10",
		MarketID:      "m-1",
		Question:      "Will it rain?",
		Side:          "BUY",
		Status:        "completed",
		TotalShares:   50,
		TotalNotional: "18.75",
		Orders: []journal.OrderRecord{
			{OrderID: "o-1", TokenID: "tok", Side: "BUY", Price: "0.40", Size: 10, Status: "live", Attempts: 1},
			{TokenID: "tok", Side: "BUY", Price: "0.35", Size: 10, Status: "rejected", Attempts: 3, Kind: "rate_limited", Reason: "rate limit"},
		},
	}
	if err := store.AppendBatch(ctx, rec); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Kind != journal.KindBatch || got.Batch == nil {
		t.Fatalf("entry = %+v", got)
	}
	if got.Batch.BatchID != "batch-1" || got.Batch.TotalNotional != "18.75" {
		t.Errorf("batch = %+v", got.Batch)
	}
	if len(got.Batch.Orders) != 2 || got.Batch.Orders[1].Kind != "rate_limited" {
		t.Errorf("orders = %+v", got.Batch.Orders)
	}
}

func TestDecisionRoundtripAndOrdering(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	first := &journal.DecisionRecord{Strategy: "whale-follow", MarketID: "m-1", Side: "BUY", Price: "0.40", Size: 12, DryRun: true}
	second := &journal.DecisionRecord{Strategy: "top-volume", MarketID: "m-2", Side: "BUY", Price: "0.50", Size: 20}
	if err := store.AppendDecision(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendDecision(ctx, second); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Decision == nil || entries[0].Decision.Strategy != "top-volume" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if !entries[1].Decision.DryRun {
		t.Error("dry-run flag lost in roundtrip")
	}
}

func TestRecentLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.AppendDecision(ctx, &journal.DecisionRecord{Strategy: "s", Size: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}
