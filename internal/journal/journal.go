// Package journal is the append-only trade log. Batch outcomes and strategy
// decisions are recorded so a later session can answer "what did the bot do
// and why". Journal writes are best effort; callers log failures and move on.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/order"
)

// EntryKind tags what a journal row describes.
type EntryKind string

const (
	KindBatch    EntryKind = "batch"
	KindDecision EntryKind = "decision"
)

// Entry is one journal row with its decoded payload. Exactly one of Batch or
// Decision is set, matching Kind.
type Entry struct {
	ID       int64
	At       time.Time
	Kind     EntryKind
	Batch    *BatchRecord
	Decision *DecisionRecord
}

// BatchRecord is the persisted shape of an executed (or cancelled) batch.
type BatchRecord struct {
	BatchID       string        `msgpack:"batch_id"`
	Name          string        `msgpack:"name"`
	MarketID      string        `msgpack:"market_id"`
	Question      string        `msgpack:"question"`
	Side          string        `msgpack:"side"`
	Status        string        `msgpack:"status"`
	TotalShares   int64         `msgpack:"total_shares"`
	TotalNotional string        `msgpack:"total_notional"`
	Orders        []OrderRecord `msgpack:"orders"`
}

type OrderRecord struct {
	OrderID  string `msgpack:"order_id,omitempty"`
	TokenID  string `msgpack:"token_id"`
	Side     string `msgpack:"side"`
	Price    string `msgpack:"price"`
	Size     int64  `msgpack:"size"`
	Status   string `msgpack:"status"`
	Attempts int    `msgpack:"attempts"`
	Kind     string `msgpack:"kind,omitempty"`
	Reason   string `msgpack:"reason,omitempty"`
}

// DecisionRecord is a strategy decision, including ones discarded in dry-run.
type DecisionRecord struct {
	Strategy string `msgpack:"strategy"`
	MarketID string `msgpack:"market_id"`
	Question string `msgpack:"question"`
	Side     string `msgpack:"side"`
	Price    string `msgpack:"price"`
	Size     int64  `msgpack:"size"`
	Reason   string `msgpack:"reason"`
	DryRun   bool   `msgpack:"dry_run"`
}

// Store persists journal entries.
type Store interface {
	AppendBatch(ctx context.Context, rec *BatchRecord) error
	AppendDecision(ctx context.Context, rec *DecisionRecord) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// RecordFromBatch flattens a batch into its journal shape.
func RecordFromBatch(b *order.Batch) *BatchRecord {
	rec := &BatchRecord{
		BatchID:       b.ID,
		Name:          b.Name,
		MarketID:      b.MarketID,
		Question:      b.Question,
		Side:          string(b.Side),
		Status:        string(b.Status),
		TotalShares:   b.TotalShares(),
		TotalNotional: b.TotalNotional().StringFixed(2),
	}
	for _, o := range b.Orders {
		or := OrderRecord{
			OrderID:  o.ID,
			TokenID:  o.TokenID,
			Side:     string(o.Side),
			Price:    o.Price.String(),
			Size:     o.Size,
			Status:   string(o.Status),
			Attempts: o.Attempts,
			Reason:   o.Reason,
		}
		if o.FailureKind != order.KindNone {
			or.Kind = o.FailureKind.String()
		}
		rec.Orders = append(rec.Orders, or)
	}
	return rec
}

// PriceOf parses a record price back to decimal, zero on garbage. Journal
// payloads are our own writes so garbage means a schema bug, not bad input.
func PriceOf(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
