package strategy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/journal"
	"github.com/exhuman777/claude-trader/internal/metrics"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/price"
)

// Proposer stages a batch for user confirmation.
type Proposer interface {
	Propose(b *order.Batch)
}

// Recorder journals strategy decisions.
type Recorder interface {
	AppendDecision(ctx context.Context, rec *journal.DecisionRecord) error
}

// Runner drives the enabled strategies on a schedule and is the single place
// where dry-run is enforced: in dry-run a decision is logged, journaled and
// counted, and nothing else happens. Live decisions become one-order batches
// that still wait at the confirmation gate.
type Runner struct {
	strategies []Strategy
	gate       Proposer
	journal    Recorder
	dryRun     bool
	interval   time.Duration
	maxRuns    int
	log        *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewRunner(strategies []Strategy, gate Proposer, rec Recorder, dryRun bool, interval time.Duration, maxRuns int, m *metrics.Metrics, log *zap.Logger) *Runner {
	if m == nil {
		m = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{
		strategies: strategies,
		gate:       gate,
		journal:    rec,
		dryRun:     dryRun,
		interval:   interval,
		maxRuns:    maxRuns,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// RunOnce executes every strategy a single time.
func (r *Runner) RunOnce(ctx context.Context) {
	for _, s := range r.strategies {
		decisions, err := s.Decide(ctx)
		if err != nil {
			r.log.Warn("strategy run failed", zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}
		for _, d := range decisions {
			r.handle(ctx, d)
		}
	}
}

// Schedule runs the strategies every interval until the context ends or the
// run limit is reached. maxRuns <= 0 means run forever.
func (r *Runner) Schedule(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	runs := 0
	for {
		r.RunOnce(ctx)
		runs++
		if r.maxRuns > 0 && runs >= r.maxRuns {
			r.log.Info("strategy schedule finished", zap.Int("runs", runs))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) handle(ctx context.Context, d Decision) {
	r.metrics.StrategyDecisions.Inc()
	shares := d.Shares()
	if shares <= 0 {
		r.log.Debug("decision stake below one share",
			zap.String("strategy", d.Strategy),
			zap.String("price", price.Display(d.Price)),
		)
		return
	}
	r.log.Info("strategy decision",
		zap.String("strategy", d.Strategy),
		zap.String("question", d.Question),
		zap.String("side", string(d.Side)),
		zap.String("price", price.Display(d.Price)),
		zap.Int64("shares", shares),
		zap.String("reason", d.Reason),
		zap.Bool("dry_run", r.dryRun),
	)
	if r.journal != nil {
		rec := &journal.DecisionRecord{
			Strategy: d.Strategy,
			MarketID: d.MarketID,
			Question: d.Question,
			Side:     string(d.Side),
			Price:    d.Price.String(),
			Size:     shares,
			Reason:   d.Reason,
			DryRun:   r.dryRun,
		}
		if err := r.journal.AppendDecision(ctx, rec); err != nil {
			r.log.Warn("decision journal write failed", zap.Error(err))
		}
	}
	if r.dryRun {
		r.metrics.DryRunDecisions.Inc()
		return
	}
	if d.Advisory {
		return
	}
	px := price.Quantize(d.Price, price.Tick(d.NegRisk))
	o := &order.Order{
		MarketID: d.MarketID,
		Question: d.Question,
		TokenID:  d.TokenID,
		Side:     d.Side,
		Price:    px,
		Size:     shares,
		Status:   order.StatusPlanned,
	}
	name := fmt.Sprintf("%s: %s", d.Strategy, d.Reason)
	b := order.NewBatch(name, d.MarketID, d.Question, d.Side, []*order.Order{o}, r.now())
	b.NegRisk = d.NegRisk
	r.gate.Propose(b)
}
