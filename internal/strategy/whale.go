package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/rest"
)

// Whale follows large trades off the public tape: find buys above the
// notional threshold, optionally keep only those from profitable traders, and
// mirror them with a small fixed stake.
type Whale struct {
	cfg      config.WhaleConfig
	trades   TradeFeed
	markets  MarketFeed
	profiles ProfileFeed
	log      *zap.Logger

	// profitability lookups are expensive, cache per process
	profileCache map[string]rest.Profile
}

func NewWhale(cfg config.WhaleConfig, trades TradeFeed, markets MarketFeed, profiles ProfileFeed, log *zap.Logger) *Whale {
	if log == nil {
		log = zap.NewNop()
	}
	return &Whale{
		cfg:          cfg,
		trades:       trades,
		markets:      markets,
		profiles:     profiles,
		log:          log,
		profileCache: make(map[string]rest.Profile),
	}
}

func (w *Whale) Name() string { return "whale-follow" }

func (w *Whale) Decide(ctx context.Context) ([]Decision, error) {
	tape, err := w.trades.RecentTrades(ctx, 500)
	if err != nil {
		return nil, err
	}
	minUSD := decimal.NewFromFloat(w.cfg.MinUSD)
	bet := decimal.NewFromFloat(w.cfg.BetUSD)
	seen := make(map[string]bool)
	var decisions []Decision

	for _, t := range tape {
		if len(decisions) >= w.cfg.MaxTrades {
			break
		}
		// Skip records the tape could not fully describe.
		if t.ConditionID == "" || t.Wallet == "" || t.Outcome == "" {
			continue
		}
		if !strings.EqualFold(t.Side, "BUY") {
			continue
		}
		if t.NotionalUSD().Cmp(minUSD) < 0 {
			continue
		}
		if !inBand(t.Price) {
			continue
		}
		if seen[t.ConditionID] {
			continue
		}
		if w.cfg.OnlyProfitable && !w.isProfitable(ctx, t.Wallet) {
			continue
		}
		m, err := w.markets.MarketByCondition(ctx, t.ConditionID)
		if err != nil {
			w.log.Debug("whale market lookup failed",
				zap.String("condition_id", t.ConditionID), zap.Error(err))
			continue
		}
		if m.Closed || !m.Active {
			continue
		}
		outcome := strings.ToLower(t.Outcome)
		price := m.YesPrice
		if outcome == "no" {
			price = m.NoPrice
		}
		if !inBand(price) {
			continue
		}
		seen[t.ConditionID] = true
		who := t.TraderName
		if who == "" {
			who = shortAddr(t.Wallet)
		}
		decisions = append(decisions, Decision{
			Strategy: w.Name(),
			MarketID: m.ID,
			Question: m.Question,
			TokenID:  m.TokenID(outcome),
			NegRisk:  m.NegRisk,
			Side:     order.SideBuy,
			Outcome:  outcome,
			Price:    price,
			SizeUSD:  bet,
			Reason:   fmt.Sprintf("%s bought $%s of %s", who, t.NotionalUSD().StringFixed(0), outcome),
		})
	}
	return decisions, nil
}

func (w *Whale) isProfitable(ctx context.Context, wallet string) bool {
	p, ok := w.profileCache[wallet]
	if !ok {
		var err error
		p, err = w.profiles.TraderProfile(ctx, wallet)
		if err != nil {
			w.log.Debug("whale profile lookup failed",
				zap.String("wallet", wallet), zap.Error(err))
			return false
		}
		w.profileCache[wallet] = p
	}
	return p.ProfitUSD >= w.cfg.MinProfitUSD
}

func shortAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
