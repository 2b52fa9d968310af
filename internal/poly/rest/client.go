// Package rest wraps the Gamma and Data APIs: market listings, events, the
// public trade tape, trader profiles and positions. Everything here is
// read-only and treated as possibly stale.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/config"
)

type Client struct {
	gammaURL string
	dataURL  string
	http     *http.Client
	log      *zap.Logger
}

func New(cfg config.GammaConfig, log *zap.Logger) *Client {
	return &Client{
		gammaURL: cfg.BaseURL,
		dataURL:  cfg.DataURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

func (c *Client) Market(ctx context.Context, marketID string) (Market, error) {
	var raw map[string]any
	if err := c.get(ctx, c.gammaURL+"/markets/"+url.PathEscape(marketID), &raw); err != nil {
		return Market{}, err
	}
	m := parseMarket(raw)
	if m.ID == "" {
		return Market{}, fmt.Errorf("market %s not found", marketID)
	}
	return m, nil
}

func (c *Client) MarketBySlug(ctx context.Context, slug string) (Market, error) {
	return c.firstMarket(ctx, c.gammaURL+"/markets?slug="+url.QueryEscape(slug))
}

func (c *Client) MarketByCondition(ctx context.Context, conditionID string) (Market, error) {
	return c.firstMarket(ctx, c.gammaURL+"/markets?condition_id="+url.QueryEscape(conditionID))
}

func (c *Client) firstMarket(ctx context.Context, url string) (Market, error) {
	var raws []map[string]any
	if err := c.get(ctx, url, &raws); err != nil {
		return Market{}, err
	}
	if len(raws) == 0 {
		return Market{}, fmt.Errorf("no market matched %s", url)
	}
	return parseMarket(raws[0]), nil
}

// TopVolume lists active markets ordered by 24h volume descending.
func (c *Client) TopVolume(ctx context.Context, limit int) ([]Market, error) {
	if limit <= 0 {
		limit = 20
	}
	url := fmt.Sprintf("%s/markets?limit=%d&order=volume24hr&ascending=false&active=true&closed=false", c.gammaURL, limit)
	var raws []map[string]any
	if err := c.get(ctx, url, &raws); err != nil {
		return nil, err
	}
	markets := make([]Market, 0, len(raws))
	for _, raw := range raws {
		m := parseMarket(raw)
		if m.ID == "" {
			continue
		}
		markets = append(markets, m)
	}
	return markets, nil
}

func (c *Client) Event(ctx context.Context, slug string) (Event, error) {
	var raw map[string]any
	if err := c.get(ctx, c.gammaURL+"/events/slug/"+url.PathEscape(slug), &raw); err != nil {
		return Event{}, err
	}
	event := Event{
		Title: stringFromAny(raw["title"]),
		Slug:  stringFromAny(raw["slug"]),
	}
	if entries, ok := raw["markets"].([]any); ok {
		for _, entry := range entries {
			if m, ok := entry.(map[string]any); ok {
				event.Markets = append(event.Markets, parseMarket(m))
			}
		}
	}
	return event, nil
}

// RecentTrades fetches the public trade tape, newest first. Records that fail
// to parse are skipped, never fatal.
func (c *Client) RecentTrades(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 200
	}
	var raws []map[string]any
	if err := c.get(ctx, c.dataURL+"/trades?limit="+strconv.Itoa(limit), &raws); err != nil {
		return nil, err
	}
	trades := make([]Trade, 0, len(raws))
	for _, raw := range raws {
		t := parseTrade(raw)
		if t.Side == "" || t.Price.IsZero() {
			continue
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func (c *Client) TraderProfile(ctx context.Context, address string) (Profile, error) {
	var raw map[string]any
	if err := c.get(ctx, c.dataURL+"/profile/"+url.PathEscape(address), &raw); err != nil {
		return Profile{}, err
	}
	profit := floatFromAny(raw["profit"])
	if profit == 0 {
		profit = floatFromAny(raw["pnl"])
	}
	name := stringFromAny(raw["name"])
	if name == "" {
		name = stringFromAny(raw["pseudonym"])
	}
	return Profile{
		Address:   address,
		Name:      name,
		ProfitUSD: profit,
		VolumeUSD: floatFromAny(raw["volume"]),
		Positions: int(floatFromAny(raw["positions"])),
	}, nil
}

// Positions returns the exchange's advisory view of open positions. May lag
// real fills by minutes; never a source of truth.
func (c *Client) Positions(ctx context.Context, address string) ([]Position, error) {
	var raws []map[string]any
	if err := c.get(ctx, c.dataURL+"/positions?user="+url.QueryEscape(address), &raws); err != nil {
		return nil, err
	}
	positions := make([]Position, 0, len(raws))
	for _, raw := range raws {
		positions = append(positions, Position{
			ConditionID: stringFromAny(raw["conditionId"]),
			Title:       stringFromAny(raw["title"]),
			Outcome:     stringFromAny(raw["outcome"]),
			Size:        decimalFromAny(raw["size"]),
			AvgPrice:    decimalFromAny(raw["avgPrice"]),
			ValueUSD:    floatFromAny(raw["currentValue"]),
		})
	}
	return positions, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "claude-trader/1.0")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
