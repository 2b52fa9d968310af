// Package strategy contains the automation playbooks: follow large trades,
// ride top-volume markets, and scan for cheap high-volume opportunities.
// Strategies only ever produce decisions; turning a decision into orders is
// the runner's job, and even then every order still passes the confirmation
// gate unless dry-run discards it first.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/rest"
)

// Trading band shared by all strategies. Prices near 0 or 1 are either
// near-resolved markets or bad data, never worth following.
var (
	minTradable = decimal.RequireFromString("0.05")
	maxTradable = decimal.RequireFromString("0.95")
)

// Decision is a strategy's proposal: one market, one outcome, one stake.
// Advisory decisions are surfaced and journaled but never become orders.
type Decision struct {
	Strategy string
	MarketID string
	Question string
	TokenID  string
	NegRisk  bool
	Side     order.Side
	Outcome  string
	Price    decimal.Decimal
	SizeUSD  decimal.Decimal
	Reason   string
	Advisory bool
}

// Shares converts the USD stake into whole shares at the decision price.
func (d Decision) Shares() int64 {
	if d.Price.Cmp(decimal.Zero) <= 0 {
		return 0
	}
	return d.SizeUSD.Div(d.Price).IntPart()
}

// Strategy produces zero or more decisions per run.
type Strategy interface {
	Name() string
	Decide(ctx context.Context) ([]Decision, error)
}

// MarketFeed lists and resolves markets.
type MarketFeed interface {
	TopVolume(ctx context.Context, limit int) ([]rest.Market, error)
	MarketByCondition(ctx context.Context, conditionID string) (rest.Market, error)
}

// TradeFeed reads the public trade tape.
type TradeFeed interface {
	RecentTrades(ctx context.Context, limit int) ([]rest.Trade, error)
}

// ProfileFeed resolves trader leaderboard profiles.
type ProfileFeed interface {
	TraderProfile(ctx context.Context, address string) (rest.Profile, error)
}

func inBand(p decimal.Decimal) bool {
	return p.Cmp(minTradable) >= 0 && p.Cmp(maxTradable) <= 0
}
