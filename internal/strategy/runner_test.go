package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/exhuman777/claude-trader/internal/journal"
	"github.com/exhuman777/claude-trader/internal/order"
)

type fixedStrategy struct {
	decisions []Decision
}

func (f *fixedStrategy) Name() string { return "fixed" }

func (f *fixedStrategy) Decide(ctx context.Context) ([]Decision, error) {
	_ = ctx
	return f.decisions, nil
}

type fakeProposer struct {
	batches []*order.Batch
}

func (f *fakeProposer) Propose(b *order.Batch) {
	f.batches = append(f.batches, b)
}

type fakeRecorder struct {
	records []*journal.DecisionRecord
}

func (f *fakeRecorder) AppendDecision(ctx context.Context, rec *journal.DecisionRecord) error {
	_ = ctx
	f.records = append(f.records, rec)
	return nil
}

func sampleDecision() Decision {
	return Decision{
		Strategy: "fixed",
		MarketID: "m-1",
		Question: "Will it rain?",
		TokenID:  "tok-1",
		Side:     order.SideBuy,
		Outcome:  "yes",
		Price:    d("0.40"),
		SizeUSD:  d("5"),
		Reason:   "test",
	}
}

func TestDryRunNeverProposes(t *testing.T) {
	proposer := &fakeProposer{}
	recorder := &fakeRecorder{}
	s := &fixedStrategy{decisions: []Decision{sampleDecision()}}
	r := NewRunner([]Strategy{s}, proposer, recorder, true, time.Hour, 1, nil, nil)
	r.RunOnce(context.Background())

	if len(proposer.batches) != 0 {
		t.Errorf("dry-run proposed %d batches, want 0", len(proposer.batches))
	}
	if len(recorder.records) != 1 {
		t.Fatalf("journal records = %d, want 1", len(recorder.records))
	}
	if !recorder.records[0].DryRun {
		t.Error("record not flagged dry-run")
	}
}

func TestLiveRunProposesGatedBatch(t *testing.T) {
	proposer := &fakeProposer{}
	recorder := &fakeRecorder{}
	s := &fixedStrategy{decisions: []Decision{sampleDecision()}}
	r := NewRunner([]Strategy{s}, proposer, recorder, false, time.Hour, 1, nil, nil)
	r.RunOnce(context.Background())

	if len(proposer.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(proposer.batches))
	}
	b := proposer.batches[0]
	if b.Status != order.BatchPendingConfirmation {
		t.Errorf("batch status = %s, want pending-confirmation", b.Status)
	}
	if len(b.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(b.Orders))
	}
	o := b.Orders[0]
	if o.Size != 12 { // floor(5 / 0.40)
		t.Errorf("size = %d, want 12", o.Size)
	}
	if o.Status != order.StatusPlanned {
		t.Errorf("order status = %s", o.Status)
	}
}

func TestAdvisoryDecisionNeverReachesGate(t *testing.T) {
	proposer := &fakeProposer{}
	recorder := &fakeRecorder{}
	dec := sampleDecision()
	dec.Advisory = true
	r := NewRunner([]Strategy{&fixedStrategy{decisions: []Decision{dec}}}, proposer, recorder, false, time.Hour, 1, nil, nil)
	r.RunOnce(context.Background())
	if len(proposer.batches) != 0 {
		t.Error("advisory decision was proposed for execution")
	}
	if len(recorder.records) != 1 {
		t.Errorf("journal records = %d, want 1", len(recorder.records))
	}
}

func TestSubShareStakeIsDropped(t *testing.T) {
	proposer := &fakeProposer{}
	recorder := &fakeRecorder{}
	dec := sampleDecision()
	dec.Price = d("0.90")
	dec.SizeUSD = d("0.50")
	r := NewRunner([]Strategy{&fixedStrategy{decisions: []Decision{dec}}}, proposer, recorder, false, time.Hour, 1, nil, nil)
	r.RunOnce(context.Background())
	if len(proposer.batches) != 0 || len(recorder.records) != 0 {
		t.Error("sub-share decision should be dropped before the gate")
	}
}
