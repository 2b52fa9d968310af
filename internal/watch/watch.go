// Package watch runs live rules against the market tape: whale prints above a
// notional floor and price threshold crossings. Hits go out as alerts and,
// when an archive is attached, into the tape table. The watcher is strictly
// observational and never places orders.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/archive"
	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/poly/ws"
	"github.com/exhuman777/claude-trader/internal/price"
)

// Notifier delivers a watch hit out of band.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Feed is the subscribed market channel.
type Feed interface {
	SubscribeMarket(ctx context.Context, tokenIDs []string) error
	Run(ctx context.Context, handler func(json.RawMessage)) error
}

type Watcher struct {
	cfg      config.WatchConfig
	feed     Feed
	notifier Notifier
	archive  *archive.Writer
	log      *zap.Logger

	whaleMin   decimal.Decimal
	priceAbove decimal.Decimal
	priceBelow decimal.Decimal

	// one alert per threshold per token until the price crosses back
	mu      sync.Mutex
	alerted map[string]string
}

func New(cfg config.WatchConfig, feed Feed, notifier Notifier, arch *archive.Writer, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		cfg:      cfg,
		feed:     feed,
		notifier: notifier,
		archive:  arch,
		log:      log,
		alerted:  make(map[string]string),
	}
	if cfg.WhaleMinUSD > 0 {
		w.whaleMin = decimal.NewFromFloat(cfg.WhaleMinUSD)
	}
	var err error
	if cfg.PriceAbove != "" {
		if w.priceAbove, err = decimal.NewFromString(cfg.PriceAbove); err != nil {
			return nil, fmt.Errorf("watch price_above: %w", err)
		}
	}
	if cfg.PriceBelow != "" {
		if w.priceBelow, err = decimal.NewFromString(cfg.PriceBelow); err != nil {
			return nil, fmt.Errorf("watch price_below: %w", err)
		}
	}
	return w, nil
}

// Run subscribes and blocks until the context ends.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.cfg.TokenIDs) == 0 {
		return fmt.Errorf("watch requires at least one token id")
	}
	if err := w.feed.SubscribeMarket(ctx, w.cfg.TokenIDs); err != nil {
		return err
	}
	return w.feed.Run(ctx, func(msg json.RawMessage) {
		for _, ev := range ws.ParseTape(msg) {
			w.handle(ctx, ev)
		}
	})
}

func (w *Watcher) handle(ctx context.Context, ev ws.TapeEvent) {
	if w.archive != nil {
		w.archive.EnqueueTape(archive.TapeRow{
			Time:    ev.Timestamp,
			TokenID: ev.TokenID,
			Side:    ev.Side,
			Price:   ev.Price,
			Size:    ev.Size,
		})
	}
	if !w.whaleMin.IsZero() && ev.NotionalUSD().Cmp(w.whaleMin) >= 0 {
		w.notify(ctx, fmt.Sprintf("whale: %s $%s at %s (token %s)",
			ev.Side, ev.NotionalUSD().StringFixed(0), price.Display(ev.Price), shortToken(ev.TokenID)))
	}
	w.checkThreshold(ctx, ev)
}

func (w *Watcher) checkThreshold(ctx context.Context, ev ws.TapeEvent) {
	var hit string
	switch {
	case !w.priceAbove.IsZero() && ev.Price.Cmp(w.priceAbove) >= 0:
		hit = "above"
	case !w.priceBelow.IsZero() && ev.Price.Cmp(w.priceBelow) <= 0:
		hit = "below"
	}
	w.mu.Lock()
	prev := w.alerted[ev.TokenID]
	w.alerted[ev.TokenID] = hit
	w.mu.Unlock()
	if hit == "" || hit == prev {
		return
	}
	threshold := w.priceAbove
	if hit == "below" {
		threshold = w.priceBelow
	}
	w.notify(ctx, fmt.Sprintf("price %s %s: last trade %s (token %s)",
		hit, price.Display(threshold), price.Display(ev.Price), shortToken(ev.TokenID)))
}

func (w *Watcher) notify(ctx context.Context, message string) {
	w.log.Info("watch hit", zap.String("message", message))
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Send(ctx, message); err != nil {
		w.log.Warn("watch alert send failed", zap.Error(err))
	}
}

func shortToken(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:8] + "…"
}
