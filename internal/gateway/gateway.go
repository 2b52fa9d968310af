// Package gateway is the single path between order state and the exchange.
// It validates locally before any network call, draws from the process-wide
// rate budget, and normalizes every failure into the order failure taxonomy
// so callers can decide continue-vs-abort without parsing exchange errors.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/metrics"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/clob"
	"github.com/exhuman777/claude-trader/internal/price"
)

// Exchange is the remote order API surface the gateway needs.
type Exchange interface {
	PostOrder(ctx context.Context, args clob.OrderArgs) (clob.PostResult, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Budget gates every network call.
type Budget interface {
	Acquire(ctx context.Context) error
}

type SubmitResult struct {
	OrderID string
	Status  order.Status
	Kind    order.Kind
	Err     error
}

func (r SubmitResult) OK() bool {
	return r.Kind == order.KindNone
}

type CancelResult struct {
	AlreadyDone bool
	Kind        order.Kind
	Err         error
}

type Gateway struct {
	exchange Exchange
	budget   Budget
	timeout  time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func New(exchange Exchange, budget Budget, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Gateway {
	if m == nil {
		m = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{exchange: exchange, budget: budget, timeout: timeout, log: log, metrics: m}
}

// Submit validates, waits on the rate budget, and posts the order. The
// order's NegRisk tick handling is the caller's job; by this point the price
// is final.
func (g *Gateway) Submit(ctx context.Context, o *order.Order, negRisk bool) SubmitResult {
	if err := validateOrder(o); err != nil {
		return SubmitResult{Kind: order.KindValidation, Err: err}
	}
	if err := g.budget.Acquire(ctx); err != nil {
		return SubmitResult{Kind: order.KindTransient, Err: err}
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	result, err := g.exchange.PostOrder(callCtx, clob.OrderArgs{
		TokenID: o.TokenID,
		Side:    string(o.Side),
		Price:   o.Price,
		Size:    o.Size,
		NegRisk: negRisk,
	})
	if err != nil {
		kind := clob.Classify(err)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			kind = order.KindTransient
		}
		g.log.Warn("order submit failed",
			zap.String("token_id", o.TokenID),
			zap.String("side", string(o.Side)),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return SubmitResult{Kind: kind, Err: err}
	}
	status := order.StatusLive
	if result.Status == "matched" {
		status = order.StatusMatched
	}
	g.metrics.OrdersSubmitted.Inc()
	g.log.Info("order submitted",
		zap.String("order_id", result.OrderID),
		zap.String("side", string(o.Side)),
		zap.String("price", price.Display(o.Price)),
		zap.Int64("size", o.Size),
		zap.String("status", string(status)),
	)
	return SubmitResult{OrderID: result.OrderID, Status: status}
}

// Cancel is idempotent: cancelling an order the exchange no longer knows
// about reports success with AlreadyDone set.
func (g *Gateway) Cancel(ctx context.Context, orderID string) CancelResult {
	if orderID == "" {
		return CancelResult{Kind: order.KindValidation, Err: errors.New("order id is required")}
	}
	if err := g.budget.Acquire(ctx); err != nil {
		return CancelResult{Kind: order.KindTransient, Err: err}
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	err := g.exchange.CancelOrder(callCtx, orderID)
	if err != nil {
		if errors.Is(err, clob.ErrOrderNotFound) {
			return CancelResult{AlreadyDone: true}
		}
		return CancelResult{Kind: clob.Classify(err), Err: err}
	}
	g.metrics.OrdersCancelled.Inc()
	return CancelResult{}
}

func validateOrder(o *order.Order) error {
	if o == nil {
		return errors.New("order is required")
	}
	if o.TokenID == "" {
		return errors.New("token id is required")
	}
	if o.Side != order.SideBuy && o.Side != order.SideSell {
		return fmt.Errorf("invalid side %q", o.Side)
	}
	if err := price.Validate(o.Price); err != nil {
		return err
	}
	if o.Size <= 0 {
		return errors.New("size must be > 0")
	}
	return nil
}
