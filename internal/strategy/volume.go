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

// Volume buys the yes side of the busiest markets, optionally narrowed to
// questions containing one of the configured keywords.
type Volume struct {
	cfg     config.VolumeConfig
	markets MarketFeed
	log     *zap.Logger
}

func NewVolume(cfg config.VolumeConfig, markets MarketFeed, log *zap.Logger) *Volume {
	if log == nil {
		log = zap.NewNop()
	}
	return &Volume{cfg: cfg, markets: markets, log: log}
}

func (v *Volume) Name() string { return "top-volume" }

func (v *Volume) Decide(ctx context.Context) ([]Decision, error) {
	// Fetch extra so keyword filtering still fills the quota.
	markets, err := v.markets.TopVolume(ctx, v.cfg.Count*10)
	if err != nil {
		return nil, err
	}
	bet := decimal.NewFromFloat(v.cfg.BetUSD)
	var decisions []Decision
	for _, m := range markets {
		if len(decisions) >= v.cfg.Count {
			break
		}
		if m.Closed || !m.Active || m.YesTokenID == "" {
			continue
		}
		if !matchesKeywords(m, v.cfg.Keywords) {
			continue
		}
		if !inBand(m.YesPrice) {
			continue
		}
		decisions = append(decisions, Decision{
			Strategy: v.Name(),
			MarketID: m.ID,
			Question: m.Question,
			TokenID:  m.YesTokenID,
			NegRisk:  m.NegRisk,
			Side:     order.SideBuy,
			Outcome:  "yes",
			Price:    m.YesPrice,
			SizeUSD:  bet,
			Reason:   fmt.Sprintf("24h volume $%.0f", m.Volume24hUSD),
		})
	}
	return decisions, nil
}

// matchesKeywords is satisfied by any keyword as a case-insensitive substring
// of the question. An empty keyword list matches everything.
func matchesKeywords(m rest.Market, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	question := strings.ToLower(m.Question)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(question, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
