package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/gateway"
	"github.com/exhuman777/claude-trader/internal/order"
)

// scriptedGateway returns one scripted result per submit call, in order.
type scriptedGateway struct {
	results []gateway.SubmitResult
	calls   int
}

func (g *scriptedGateway) Submit(ctx context.Context, o *order.Order, negRisk bool) gateway.SubmitResult {
	_ = ctx
	_ = negRisk
	if g.calls >= len(g.results) {
		return gateway.SubmitResult{OrderID: "overflow", Status: order.StatusLive}
	}
	res := g.results[g.calls]
	g.calls++
	return res
}

type memoryJournal struct {
	batches []*order.Batch
	err     error
}

func (j *memoryJournal) RecordBatch(ctx context.Context, b *order.Batch) error {
	_ = ctx
	j.batches = append(j.batches, b)
	return j.err
}

func newTestSequencer(gw Submitter, j Journal) *Sequencer {
	s := New(gw, j, Config{InterOrderDelay: time.Millisecond, MaxAttempts: 3, RetryBackoff: time.Millisecond}, nil, nil)
	s.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return s
}

func makeBatch(n int) *order.Batch {
	orders := make([]*order.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, &order.Order{
			TokenID: "tok",
			Side:    order.SideBuy,
			Price:   decimal.RequireFromString("0.35"),
			Size:    10,
			Status:  order.StatusPlanned,
		})
	}
	return order.NewBatch("test", "mkt", "q", order.SideBuy, orders, time.Now())
}

func live(id string) gateway.SubmitResult {
	return gateway.SubmitResult{OrderID: id, Status: order.StatusLive}
}

func fail(kind order.Kind) gateway.SubmitResult {
	return gateway.SubmitResult{Kind: kind, Err: errors.New(kind.String())}
}

func TestAllOrdersSucceed(t *testing.T) {
	gw := &scriptedGateway{results: []gateway.SubmitResult{live("a"), live("b"), live("c")}}
	j := &memoryJournal{}
	b := makeBatch(3)
	result := newTestSequencer(gw, j).Execute(context.Background(), b)
	if b.Status != order.BatchCompleted {
		t.Fatalf("status = %s, want completed", b.Status)
	}
	if result.Succeeded != 3 || result.Rejected != 0 {
		t.Errorf("succeeded %d rejected %d", result.Succeeded, result.Rejected)
	}
	if len(j.batches) != 1 {
		t.Errorf("journal writes = %d", len(j.batches))
	}
	for _, o := range b.Orders {
		if o.Status != order.StatusLive || o.ID == "" {
			t.Errorf("order %+v not live", o)
		}
	}
}

func TestFatalRejectionContinues(t *testing.T) {
	// One order out of five fails on balance; the batch never aborts.
	gw := &scriptedGateway{results: []gateway.SubmitResult{
		live("a"),
		fail(order.KindInsufficientBalance),
		live("c"),
		live("d"),
		live("e"),
	}}
	b := makeBatch(5)
	result := newTestSequencer(gw, &memoryJournal{}).Execute(context.Background(), b)
	if b.Status != order.BatchPartiallyFailed {
		t.Fatalf("status = %s, want partially-failed", b.Status)
	}
	if result.Succeeded != 4 || result.Rejected != 1 {
		t.Errorf("succeeded %d rejected %d", result.Succeeded, result.Rejected)
	}
	if gw.calls != 5 {
		t.Errorf("gateway calls = %d, want 5 (no retry on fatal kinds)", gw.calls)
	}
	rejected := b.Orders[1]
	if rejected.Status != order.StatusRejected || rejected.FailureKind != order.KindInsufficientBalance {
		t.Errorf("rejected order %+v", rejected)
	}
}

func TestRetryableKindRetriesThenSucceeds(t *testing.T) {
	gw := &scriptedGateway{results: []gateway.SubmitResult{
		fail(order.KindRateLimited),
		fail(order.KindTransient),
		live("a"),
	}}
	b := makeBatch(1)
	result := newTestSequencer(gw, &memoryJournal{}).Execute(context.Background(), b)
	if b.Status != order.BatchCompleted {
		t.Fatalf("status = %s, want completed", b.Status)
	}
	if gw.calls != 3 {
		t.Errorf("gateway calls = %d, want 3", gw.calls)
	}
	if result.PerOrder[0].Retries != 2 {
		t.Errorf("retries = %d, want 2", result.PerOrder[0].Retries)
	}
	if b.Orders[0].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", b.Orders[0].Attempts)
	}
}

func TestRetryableKindExhaustsAttempts(t *testing.T) {
	gw := &scriptedGateway{results: []gateway.SubmitResult{
		fail(order.KindRateLimited),
		fail(order.KindRateLimited),
		fail(order.KindRateLimited),
	}}
	b := makeBatch(1)
	newTestSequencer(gw, &memoryJournal{}).Execute(context.Background(), b)
	if b.Status != order.BatchPartiallyFailed {
		t.Fatalf("status = %s, want partially-failed", b.Status)
	}
	if gw.calls != 3 {
		t.Errorf("gateway calls = %d, want exactly max attempts", gw.calls)
	}
	if b.Orders[0].Status != order.StatusRejected {
		t.Errorf("order status = %s", b.Orders[0].Status)
	}
}

func TestCancelStopsRemainingOrders(t *testing.T) {
	b := makeBatch(3)
	gw := &scriptedGateway{results: []gateway.SubmitResult{live("a"), live("b"), live("c")}}
	s := newTestSequencer(gw, &memoryJournal{})
	// Cancel lands during the inter-order pause after the first submit.
	s.sleep = func(ctx context.Context, d time.Duration) error {
		b.RequestCancel()
		return nil
	}
	result := s.Execute(context.Background(), b)
	if b.Status != order.BatchCancelledByUser {
		t.Fatalf("status = %s, want cancelled-by-user", b.Status)
	}
	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.calls)
	}
	if result.Succeeded != 1 || result.Skipped != 2 {
		t.Errorf("succeeded %d skipped %d", result.Succeeded, result.Skipped)
	}
	// Unsubmitted orders keep their planned state.
	for _, o := range b.Orders[1:] {
		if o.Status != order.StatusPlanned {
			t.Errorf("skipped order status = %s", o.Status)
		}
	}
}

func TestJournalFailureIsNotFatal(t *testing.T) {
	gw := &scriptedGateway{results: []gateway.SubmitResult{live("a")}}
	j := &memoryJournal{err: errors.New("disk full")}
	b := makeBatch(1)
	result := newTestSequencer(gw, j).Execute(context.Background(), b)
	if b.Status != order.BatchCompleted || result.Succeeded != 1 {
		t.Errorf("journal error leaked into execution: %s", b.Status)
	}
}
