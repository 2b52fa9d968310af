// Package sequencer walks a confirmed batch through the order gateway,
// strictly one order at a time. Retryable failures get bounded backoff;
// fatal ones reject that order and the walk continues, so the user always
// sees exactly which legs went through.
package sequencer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/gateway"
	"github.com/exhuman777/claude-trader/internal/metrics"
	"github.com/exhuman777/claude-trader/internal/order"
)

// Submitter is the gateway surface the sequencer drives.
type Submitter interface {
	Submit(ctx context.Context, o *order.Order, negRisk bool) gateway.SubmitResult
}

// Journal records batch outcomes for future sessions. Failures are logged
// and swallowed; persistence must never fail a trade.
type Journal interface {
	RecordBatch(ctx context.Context, b *order.Batch) error
}

type Config struct {
	InterOrderDelay time.Duration
	MaxAttempts     int
	RetryBackoff    time.Duration
}

type Sequencer struct {
	gw      Submitter
	journal Journal
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(gw Submitter, journal Journal, cfg Config, m *metrics.Metrics, log *zap.Logger) *Sequencer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{gw: gw, journal: journal, cfg: cfg, metrics: m, log: log, sleep: sleepCtx}
}

// OrderOutcome is the per-order breakdown surfaced to the user.
type OrderOutcome struct {
	Order   *order.Order
	Retries int
}

type BatchResult struct {
	Batch     *order.Batch
	Succeeded int
	Rejected  int
	Skipped   int
	PerOrder  []OrderOutcome
}

// Execute submits the batch's orders in sequence. A user cancel request stops
// further submissions but never aborts a call already in flight; the result
// always accounts for every order.
func (s *Sequencer) Execute(ctx context.Context, b *order.Batch) *BatchResult {
	b.Status = order.BatchExecuting
	result := &BatchResult{Batch: b}
	cancelled := false

	for i, o := range b.Orders {
		if b.CancelRequested() || ctx.Err() != nil {
			cancelled = true
			result.Skipped = len(b.Orders) - i
			break
		}
		retries := s.submitWithRetry(ctx, b, o)
		result.PerOrder = append(result.PerOrder, OrderOutcome{Order: o, Retries: retries})
		if o.Status == order.StatusRejected {
			result.Rejected++
		} else {
			result.Succeeded++
		}
		// Exchange pacing: pause after every submission, success included.
		if i < len(b.Orders)-1 {
			if err := s.sleep(ctx, s.cfg.InterOrderDelay); err != nil {
				cancelled = true
				result.Skipped = len(b.Orders) - i - 1
				break
			}
		}
	}

	switch {
	case cancelled:
		b.Status = order.BatchCancelledByUser
		s.metrics.BatchesCancelled.Inc()
	case result.Rejected > 0:
		b.Status = order.BatchPartiallyFailed
		s.metrics.BatchesPartiallyFailed.Inc()
	default:
		b.Status = order.BatchCompleted
		s.metrics.BatchesCompleted.Inc()
	}
	s.log.Info("batch executed",
		zap.String("batch_id", b.ID),
		zap.String("status", string(b.Status)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("rejected", result.Rejected),
		zap.Int("skipped", result.Skipped),
	)
	if s.journal != nil {
		if err := s.journal.RecordBatch(ctx, b); err != nil {
			s.log.Warn("journal write failed", zap.Error(err))
		}
	}
	return result
}

// submitWithRetry drives a single order to a post-submission state and
// returns the number of retries spent.
func (s *Sequencer) submitWithRetry(ctx context.Context, b *order.Batch, o *order.Order) int {
	retries := 0
	backoff := s.cfg.RetryBackoff
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		o.Status = order.StatusSubmitted
		o.Attempts = attempt
		res := s.gw.Submit(ctx, o, b.NegRisk)
		if res.OK() {
			o.ID = res.OrderID
			o.Status = res.Status
			o.FailureKind = order.KindNone
			o.Reason = ""
			return retries
		}
		o.FailureKind = res.Kind
		if res.Err != nil {
			o.Reason = res.Err.Error()
		}
		if !res.Kind.Retryable() || attempt == s.cfg.MaxAttempts {
			break
		}
		retries++
		s.metrics.OrderRetries.Inc()
		s.log.Warn("order submit retrying",
			zap.String("batch_id", b.ID),
			zap.String("kind", res.Kind.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)
		if err := s.sleep(ctx, backoff); err != nil {
			break
		}
		backoff *= 2
	}
	o.Status = order.StatusRejected
	s.metrics.OrdersRejected.Inc()
	return retries
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
