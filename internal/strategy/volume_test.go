package strategy

import (
	"context"
	"testing"

	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/poly/rest"
)

func topMarket(id, question string, volume float64) rest.Market {
	return rest.Market{
		ID:           id,
		Question:     question,
		Active:       true,
		Volume24hUSD: volume,
		YesPrice:     d("0.50"),
		NoPrice:      d("0.50"),
		YesTokenID:   "yes-" + id,
		NoTokenID:    "no-" + id,
	}
}

func TestVolumeTakesBusiestMarkets(t *testing.T) {
	markets := &fakeMarkets{top: []rest.Market{
		topMarket("1", "Will BTC hit 100k?", 900000),
		topMarket("2", "Will it rain in NYC?", 800000),
		topMarket("3", "Will ETH flip BTC?", 700000),
		topMarket("4", "Fourth market?", 600000),
	}}
	v := NewVolume(config.VolumeConfig{Enabled: true, BetUSD: 10, Count: 3}, markets, nil)
	decisions, err := v.Decide(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 3 {
		t.Fatalf("decisions = %d, want 3", len(decisions))
	}
	if decisions[0].MarketID != "1" || decisions[2].MarketID != "3" {
		t.Errorf("wrong order: %s ... %s", decisions[0].MarketID, decisions[2].MarketID)
	}
	if decisions[0].Shares() != 20 { // floor(10 / 0.50)
		t.Errorf("shares = %d, want 20", decisions[0].Shares())
	}
}

func TestVolumeKeywordFilter(t *testing.T) {
	markets := &fakeMarkets{top: []rest.Market{
		topMarket("1", "Will BTC hit 100k?", 900000),
		topMarket("2", "Will it rain in NYC?", 800000),
		topMarket("3", "Will ETH flip btc?", 700000),
	}}
	v := NewVolume(config.VolumeConfig{Enabled: true, BetUSD: 10, Count: 3, Keywords: []string{"BTC"}}, markets, nil)
	decisions, err := v.Decide(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 2 {
		t.Fatalf("decisions = %d, want 2 keyword matches", len(decisions))
	}
	for _, d := range decisions {
		if d.MarketID == "2" {
			t.Error("non-matching market selected")
		}
	}
}

func TestVolumeSkipsClosedAndExtremePrices(t *testing.T) {
	closed := topMarket("1", "Done deal?", 900000)
	closed.Closed = true
	extreme := topMarket("2", "Sure thing?", 800000)
	extreme.YesPrice = d("0.99")
	markets := &fakeMarkets{top: []rest.Market{closed, extreme, topMarket("3", "Fair odds?", 700000)}}
	v := NewVolume(config.VolumeConfig{Enabled: true, BetUSD: 10, Count: 3}, markets, nil)
	decisions, _ := v.Decide(context.Background())
	if len(decisions) != 1 || decisions[0].MarketID != "3" {
		t.Errorf("decisions = %+v, want only market 3", decisions)
	}
}
