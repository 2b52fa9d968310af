// preview expands a ladder offline and prints the exact batch summary the
// trader would show at the confirmation gate. No network, no keys, no orders.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/gate"
	"github.com/exhuman777/claude-trader/internal/ladder"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/price"
)

func main() {
	side := flag.String("side", "BUY", "BUY or SELL")
	start := flag.String("start", "", "start price, cents or decimal")
	end := flag.String("end", "", "end price, cents or decimal")
	count := flag.Int("count", 1, "number of rungs")
	sizePer := flag.Int64("size", 1, "shares per rung")
	negRisk := flag.Bool("neg-risk", false, "use the 1¢ neg-risk tick")
	maxOrders := flag.Int("max-orders", 200, "ladder size cap")
	question := flag.String("question", "(preview)", "market question for the summary")
	flag.Parse()

	parsedSide, err := order.ParseSide(strings.ToUpper(*side))
	if err != nil {
		fatal(err)
	}
	startPx, err := parsePrice(*start)
	if err != nil {
		fatal(fmt.Errorf("start: %w", err))
	}
	endPx, err := parsePrice(*end)
	if err != nil {
		fatal(fmt.Errorf("end: %w", err))
	}
	plan, err := ladder.New(parsedSide, startPx, endPx, *count, *sizePer, price.Tick(*negRisk), *maxOrders)
	if err != nil {
		fatal(err)
	}
	if plan.Collapsed > 0 {
		fmt.Printf("%d rungs collapsed into neighbors by the tick size\n", plan.Collapsed)
	}
	b := plan.Batch("preview", *question, "preview-token", time.Now())
	fmt.Println(gate.RenderSummary(b))
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "¢")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("price is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("bad price %q", s)
	}
	if d.Cmp(decimal.NewFromInt(1)) >= 0 {
		d = d.Div(decimal.NewFromInt(100))
	}
	if err := price.Validate(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
