// Package ladder expands a price-range request into a validated sequence of
// discrete orders. BUY ladders step high to low (waiting for dips), SELL
// ladders low to high (waiting for rises); the direction is a fixed rule,
// not a per-call option.
package ladder

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/price"
)

var (
	ErrLadderTooLarge = errors.New("ladder order count exceeds the configured maximum")
	ErrInvalidSize    = errors.New("size per order must be > 0")
)

// Plan is an ordered sequence of prices sharing a market and side. Collapsed
// counts planned prices that quantization merged into an earlier tick.
type Plan struct {
	Side      order.Side
	Prices    []decimal.Decimal
	SizePer   int64
	Requested int
	Collapsed int
	Tick      decimal.Decimal
}

func (p *Plan) Count() int {
	return len(p.Prices)
}

// New validates and expands the request. start/end are reordered to honor the
// side's fixed direction; both bounds are inclusive.
func New(side order.Side, start, end decimal.Decimal, count int, sizePer int64, tick decimal.Decimal, maxOrders int) (*Plan, error) {
	if maxOrders <= 0 {
		maxOrders = 200
	}
	if count < 1 || count > maxOrders {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrLadderTooLarge, count, maxOrders)
	}
	if sizePer <= 0 {
		return nil, ErrInvalidSize
	}
	if err := price.Validate(start); err != nil {
		return nil, fmt.Errorf("start price: %w", err)
	}
	if err := price.Validate(end); err != nil {
		return nil, fmt.Errorf("end price: %w", err)
	}

	// BUY walks downward, SELL upward.
	if side == order.SideBuy && start.Cmp(end) < 0 {
		start, end = end, start
	}
	if side == order.SideSell && start.Cmp(end) > 0 {
		start, end = end, start
	}

	plan := &Plan{Side: side, SizePer: sizePer, Requested: count, Tick: tick}
	if count == 1 {
		plan.Prices = []decimal.Decimal{price.Quantize(start, tick)}
		return plan, nil
	}

	step := end.Sub(start).Div(decimal.NewFromInt(int64(count - 1)))
	for i := 0; i < count; i++ {
		p := start.Add(step.Mul(decimal.NewFromInt(int64(i))))
		if i == count-1 {
			p = end
		}
		q := price.Quantize(p, tick)
		if n := len(plan.Prices); n > 0 && plan.Prices[n-1].Equal(q) {
			plan.Collapsed++
			continue
		}
		plan.Prices = append(plan.Prices, q)
	}
	return plan, nil
}

// Orders materializes the plan into batch-owned orders.
func (p *Plan) Orders(marketID, question, tokenID string) []*order.Order {
	orders := make([]*order.Order, 0, len(p.Prices))
	for _, px := range p.Prices {
		orders = append(orders, &order.Order{
			MarketID: marketID,
			Question: question,
			TokenID:  tokenID,
			Side:     p.Side,
			Price:    px,
			Size:     p.SizePer,
			Status:   order.StatusPlanned,
		})
	}
	return orders
}

// Batch wraps the plan's orders into a pending-confirmation batch.
func (p *Plan) Batch(marketID, question, tokenID string, now time.Time) *order.Batch {
	name := fmt.Sprintf("ladder %s %d×%d", p.Side, p.Count(), p.SizePer)
	return order.NewBatch(name, marketID, question, p.Side, p.Orders(marketID, question, tokenID), now)
}
