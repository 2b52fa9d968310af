package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusMatched, StatusCancelled, StatusRejected}
	open := []Status{StatusPlanned, StatusSubmitted, StatusLive}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestKindRetryable(t *testing.T) {
	if !KindRateLimited.Retryable() || !KindTransient.Retryable() {
		t.Error("rate_limited and transient must be retryable")
	}
	for _, k := range []Kind{KindValidation, KindInsufficientBalance, KindMarketClosed, KindUnknown} {
		if k.Retryable() {
			t.Errorf("%s must not be retryable", k)
		}
	}
}

func TestParseSide(t *testing.T) {
	if _, err := ParseSide("BUY"); err != nil {
		t.Error(err)
	}
	if _, err := ParseSide("HOLD"); err == nil {
		t.Error("invalid side accepted")
	}
}

func TestBatchTotals(t *testing.T) {
	orders := []*Order{
		{Price: decimal.RequireFromString("0.40"), Size: 10},
		{Price: decimal.RequireFromString("0.35"), Size: 10},
	}
	b := NewBatch("test", "m-1", "q", SideBuy, orders, time.Now())
	if b.TotalShares() != 20 {
		t.Errorf("shares = %d", b.TotalShares())
	}
	if b.TotalNotional().String() != "7.5" {
		t.Errorf("notional = %s", b.TotalNotional())
	}
	if b.Status != BatchPendingConfirmation {
		t.Errorf("new batch status = %s", b.Status)
	}
}

func TestBatchIDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewBatch("a", "m", "q", SideBuy, nil, now)
	b := NewBatch("b", "m", "q", SideBuy, nil, now)
	if a.ID == b.ID {
		t.Errorf("duplicate batch ids %s", a.ID)
	}
}

func TestCancelFlag(t *testing.T) {
	b := NewBatch("a", "m", "q", SideBuy, nil, time.Now())
	if b.CancelRequested() {
		t.Error("fresh batch already cancelled")
	}
	b.RequestCancel()
	if !b.CancelRequested() {
		t.Error("cancel request lost")
	}
}
