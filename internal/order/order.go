package order

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// Status is the order lifecycle state. Valid transitions:
// planned -> submitted -> {live, matched, rejected}; live -> {matched, cancelled}.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusSubmitted Status = "submitted"
	StatusLive      Status = "live"
	StatusMatched   Status = "matched"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusMatched, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Kind classifies an order failure. It decides retry-vs-reject in the sequencer.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindRateLimited
	KindTransient
	KindInsufficientBalance
	KindMarketClosed
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindMarketClosed:
		return "market_closed"
	}
	return "unknown"
}

func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindTransient
}

// Order is a single limit order owned by exactly one batch.
type Order struct {
	ID       string
	MarketID string
	Question string
	TokenID  string
	Side     Side
	Price    decimal.Decimal
	Size     int64
	Status   Status

	Attempts    int
	FailureKind Kind
	Reason      string
}

// Notional is price*size in USD.
func (o *Order) Notional() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Size))
}

type BatchStatus string

const (
	BatchPendingConfirmation BatchStatus = "pending-confirmation"
	BatchExecuting           BatchStatus = "executing"
	BatchCompleted           BatchStatus = "completed"
	BatchPartiallyFailed     BatchStatus = "partially-failed"
	BatchCancelledByUser     BatchStatus = "cancelled-by-user"
)

// Batch is a named collection of orders produced by a direct request or a
// ladder plan. The batch owns its orders for their whole lifetime; only the
// sequencer mutates them after confirmation.
type Batch struct {
	ID        string
	Name      string
	MarketID  string
	Question  string
	Side      Side
	NegRisk   bool
	Orders    []*Order
	Status    BatchStatus
	CreatedAt time.Time

	cancel atomic.Bool
}

var batchSeq atomic.Uint64

func NewBatch(name, marketID, question string, side Side, orders []*Order, now time.Time) *Batch {
	id := fmt.Sprintf("batch-%s-%d", now.UTC().Format("20060102T150405Z"), batchSeq.Add(1))
	return &Batch{
		ID:        id,
		Name:      name,
		MarketID:  marketID,
		Question:  question,
		Side:      side,
		Orders:    orders,
		Status:    BatchPendingConfirmation,
		CreatedAt: now,
	}
}

// RequestCancel asks the sequencer to stop submitting the remaining planned
// orders. Already-submitted orders are left alone.
func (b *Batch) RequestCancel() {
	b.cancel.Store(true)
}

func (b *Batch) CancelRequested() bool {
	return b.cancel.Load()
}

// TotalNotional sums price*size over all member orders.
func (b *Batch) TotalNotional() decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.Orders {
		total = total.Add(o.Notional())
	}
	return total
}

func (b *Batch) TotalShares() int64 {
	var n int64
	for _, o := range b.Orders {
		n += o.Size
	}
	return n
}
