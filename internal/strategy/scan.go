package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/order"
)

// Scan looks for asymmetric payoffs: heavily traded markets whose yes price
// sits below the cap. Candidates are ranked by upside ratio (1-p)/p, the
// payoff multiple if the market resolves yes.
type Scan struct {
	cfg     config.ScanConfig
	betUSD  decimal.Decimal
	markets MarketFeed
	log     *zap.Logger
}

func NewScan(cfg config.ScanConfig, betUSD float64, markets MarketFeed, log *zap.Logger) *Scan {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scan{
		cfg:     cfg,
		betUSD:  decimal.NewFromFloat(betUSD),
		markets: markets,
		log:     log,
	}
}

func (s *Scan) Name() string { return "opportunity-scan" }

func (s *Scan) Decide(ctx context.Context) ([]Decision, error) {
	maxPrice, err := decimal.NewFromString(s.cfg.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("scan max_price: %w", err)
	}
	markets, err := s.markets.TopVolume(ctx, 100)
	if err != nil {
		return nil, err
	}
	var decisions []Decision
	for _, m := range markets {
		if m.Closed || !m.Active || m.YesTokenID == "" {
			continue
		}
		if m.Volume24hUSD < s.cfg.MinVolumeUSD {
			continue
		}
		p := m.YesPrice
		if !inBand(p) || p.Cmp(maxPrice) > 0 {
			continue
		}
		upside := decimal.NewFromInt(1).Sub(p).Div(p)
		decisions = append(decisions, Decision{
			Strategy: s.Name(),
			MarketID: m.ID,
			Question: m.Question,
			TokenID:  m.YesTokenID,
			NegRisk:  m.NegRisk,
			Side:     order.SideBuy,
			Outcome:  "yes",
			Price:    p,
			SizeUSD:  s.betUSD,
			Reason:   fmt.Sprintf("upside %sx at $%.0f volume", upside.StringFixed(1), m.Volume24hUSD),
			Advisory: true,
		})
	}
	sort.SliceStable(decisions, func(i, j int) bool {
		return decisions[i].Price.Cmp(decisions[j].Price) < 0
	})
	return decisions, nil
}
