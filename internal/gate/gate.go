// Package gate holds planned batches behind an explicit user confirmation.
// At most one draft is pending at a time; proposing a new one supersedes the
// old, and a pending draft expires after a TTL. Nothing reaches the exchange
// without passing through here first.
package gate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/metrics"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/price"
)

// DraftState tracks a proposed batch through its confirmation lifecycle.
type DraftState string

const (
	StateAwaiting   DraftState = "awaiting-confirmation"
	StateConfirmed  DraftState = "confirmed"
	StateExpired    DraftState = "expired"
	StateRejected   DraftState = "rejected-by-user"
	StateSuperseded DraftState = "superseded"
)

var (
	ErrNoPending = errors.New("no batch is awaiting confirmation")

	confirmTokens = map[string]bool{
		"yes": true, "confirm": true, "go": true, "y": true, "do it": true,
	}
	rejectTokens = map[string]bool{
		"no": true, "cancel": true, "stop": true, "n": true,
	}
)

// Draft is a batch waiting on the user's word.
type Draft struct {
	Batch     *order.Batch
	State     DraftState
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Gate struct {
	mu      sync.Mutex
	pending *Draft
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *Gate {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{ttl: ttl, now: time.Now, log: log, metrics: m}
}

// Propose stages a batch for confirmation and returns its preview text. Any
// draft already pending is superseded; the newest request always wins.
func (g *Gate) Propose(b *order.Batch) (*Draft, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old := g.livePendingLocked(); old != nil {
		old.State = StateSuperseded
		g.metrics.DraftsSuperseded.Inc()
		g.log.Info("pending draft superseded",
			zap.String("old_batch_id", old.Batch.ID),
			zap.String("new_batch_id", b.ID),
		)
	}
	now := g.now()
	d := &Draft{
		Batch:     b,
		State:     StateAwaiting,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}
	g.pending = d
	return d, RenderSummary(b)
}

// Pending returns the live draft, expiring it first if its TTL has passed.
func (g *Gate) Pending() *Draft {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.livePendingLocked()
}

// HandleUtterance matches the user's reply against the closed confirm and
// reject token sets. Confirmed drafts are handed back for execution; anything
// outside both sets leaves the draft untouched and returns (nil, nil) so the
// caller can treat the line as an ordinary command.
func (g *Gate) HandleUtterance(text string) (*Draft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.livePendingLocked()
	if d == nil {
		return nil, ErrNoPending
	}
	switch {
	case confirmTokens[normalize(text)]:
		d.State = StateConfirmed
		g.pending = nil
		return d, nil
	case rejectTokens[normalize(text)]:
		d.State = StateRejected
		d.Batch.Status = order.BatchCancelledByUser
		g.pending = nil
		g.log.Info("draft rejected by user", zap.String("batch_id", d.Batch.ID))
		return d, nil
	}
	return nil, nil
}

func (g *Gate) livePendingLocked() *Draft {
	d := g.pending
	if d == nil {
		return nil
	}
	if g.now().After(d.ExpiresAt) {
		d.State = StateExpired
		g.pending = nil
		g.metrics.DraftsExpired.Inc()
		g.log.Info("pending draft expired", zap.String("batch_id", d.Batch.ID))
		return nil
	}
	return d
}

// normalize lowercases and strips surrounding whitespace and punctuation so
// "Yes!" and " yes " both confirm. Matching is whole-utterance only; "yes
// please but smaller" is not a confirmation.
func normalize(text string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), ".,!?")
}

// RenderSummary produces the deterministic preview shown before confirmation.
// Prices render as cents, never percentages.
func RenderSummary(b *order.Batch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", b.Name, b.Question)
	for _, o := range b.Orders {
		fmt.Fprintf(&sb, "  %s %d @ %s\n", o.Side, o.Size, price.Display(o.Price))
	}
	fmt.Fprintf(&sb, "total: %d shares, $%s\n", b.TotalShares(), b.TotalNotional().StringFixed(2))
	sb.WriteString("confirm? (yes/no)")
	return sb.String()
}
