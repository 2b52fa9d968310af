package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/gate"
	"github.com/exhuman777/claude-trader/internal/journal"
	"github.com/exhuman777/claude-trader/internal/ladder"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/rest"
	"github.com/exhuman777/claude-trader/internal/price"
)

const staleStateWarning = "note: exchange position/balance data may lag recent fills by minutes"

// commandLoop reads user commands from stdin until EOF or shutdown.
// Confirmation replies for a pending draft are checked before command verbs,
// so "yes" confirms instead of erroring as an unknown command.
func (a *App) commandLoop(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Println(`ready; "help" lists commands`)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if a.tryConfirm(ctx, text) {
				continue
			}
			if err := a.dispatch(ctx, text); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Println("error:", err)
			}
		}
	}
}

// tryConfirm routes the line through the gate when a draft is pending.
// Returns true when the line was consumed as a confirmation reply; anything
// that is not a confirm or reject token falls through to normal dispatch.
func (a *App) tryConfirm(ctx context.Context, text string) bool {
	d, err := a.gate.HandleUtterance(text)
	if err != nil || d == nil {
		return false
	}
	switch d.State {
	case gate.StateConfirmed:
		a.executeDraft(ctx, d)
	case gate.StateRejected:
		fmt.Println("discarded", d.Batch.ID)
	}
	return true
}

var errQuit = errors.New("quit")

func (a *App) dispatch(ctx context.Context, text string) error {
	fields := strings.Fields(text)
	verb, args := strings.ToLower(fields[0]), fields[1:]
	switch verb {
	case "help":
		printHelp()
		return nil
	case "quit", "exit":
		return errQuit
	case "market":
		return a.cmdMarket(ctx, args)
	case "event":
		return a.cmdEvent(ctx, args)
	case "top":
		return a.cmdTop(ctx, args)
	case "price":
		return a.cmdPrice(ctx, args)
	case "buy":
		return a.cmdTrade(ctx, order.SideBuy, args)
	case "sell":
		return a.cmdTrade(ctx, order.SideSell, args)
	case "ladder":
		return a.cmdLadder(ctx, args)
	case "orders":
		return a.cmdOrders(ctx)
	case "cancel":
		return a.cmdCancel(ctx, args)
	case "positions":
		return a.cmdPositions(ctx, args)
	case "balance":
		return a.cmdBalance(ctx)
	case "journal":
		return a.cmdJournal(ctx, args)
	case "run":
		return a.cmdRun(ctx)
	}
	return fmt.Errorf("unknown command %q", verb)
}

func printHelp() {
	fmt.Print(`commands:
  market <slug|id|0xcondition>          show one market
  event <slug>                          show an event's markets
  top [n]                               top markets by 24h volume
  price <market> [yes|no]               book touch for an outcome
  buy <market> <yes|no> <price> <size>  stage a single order
  sell <market> <yes|no> <price> <size>
  ladder <market> <yes|no> <buy|sell> <start> <end> <count> <sizePer>
  orders                                list resting orders
  cancel <order-id|all|batch>           cancel an order, everything, or the running batch
  positions <address>                   advisory position view
  balance                               advisory collateral balance
  journal [n]                           recent journal entries
  run                                   run enabled strategies once
prices are cents ("35") or decimals ("0.35")
`)
}

func (a *App) cmdMarket(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: market <slug|id|0xcondition>")
	}
	m, err := a.resolveMarket(ctx, args[0])
	if err != nil {
		return err
	}
	printMarket(m)
	return nil
}

func (a *App) cmdEvent(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: event <slug>")
	}
	event, err := a.rest.Event(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(event.Title)
	for _, m := range event.Markets {
		fmt.Printf("  %s  yes %s / no %s  [%s]\n",
			m.Question, price.Display(m.YesPrice), price.Display(m.NoPrice), m.Slug)
	}
	return nil
}

func (a *App) cmdTop(ctx context.Context, args []string) error {
	limit := 10
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.New("usage: top [n]")
		}
		limit = n
	}
	markets, err := a.rest.TopVolume(ctx, limit)
	if err != nil {
		return err
	}
	for _, m := range markets {
		fmt.Printf("%-8s $%.0f  yes %s  %s\n", m.ID, m.Volume24hUSD, price.Display(m.YesPrice), m.Question)
	}
	return nil
}

func (a *App) cmdPrice(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: price <market> [yes|no]")
	}
	m, err := a.resolveMarket(ctx, args[0])
	if err != nil {
		return err
	}
	outcome := "yes"
	if len(args) == 2 {
		outcome = strings.ToLower(args[1])
	}
	book, err := a.clob.Book(ctx, m.TokenID(outcome))
	if err != nil {
		return err
	}
	best := book.Best()
	liquidity := "thin"
	if best.Liquid {
		liquidity = "liquid"
	}
	fmt.Printf("%s %s: bid %s / ask %s (spread %s, %s)\n",
		m.Question, outcome,
		price.Display(best.BestBid), price.Display(best.BestAsk),
		price.Display(best.Spread), liquidity)
	return nil
}

func (a *App) cmdTrade(ctx context.Context, side order.Side, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: %s <market> <yes|no> <price> <size>", strings.ToLower(string(side)))
	}
	m, outcome, err := a.resolveOutcome(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	px, err := parsePrice(args[2])
	if err != nil {
		return err
	}
	size, err := parseSize(args[3])
	if err != nil {
		return err
	}
	tick := price.Tick(m.NegRisk)
	px = price.Quantize(px, tick)
	if err := price.Validate(px); err != nil {
		return err
	}
	o := &order.Order{
		MarketID: m.ID,
		Question: m.Question,
		TokenID:  m.TokenID(outcome),
		Side:     side,
		Price:    px,
		Size:     size,
		Status:   order.StatusPlanned,
	}
	name := fmt.Sprintf("%s %s %d @ %s", side, outcome, size, price.Display(px))
	b := order.NewBatch(name, m.ID, m.Question, side, []*order.Order{o}, time.Now())
	b.NegRisk = m.NegRisk
	a.Propose(b)
	return nil
}

func (a *App) cmdLadder(ctx context.Context, args []string) error {
	if len(args) != 7 {
		return errors.New("usage: ladder <market> <yes|no> <buy|sell> <start> <end> <count> <sizePer>")
	}
	m, outcome, err := a.resolveOutcome(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	side, err := order.ParseSide(strings.ToUpper(args[2]))
	if err != nil {
		return err
	}
	start, err := parsePrice(args[3])
	if err != nil {
		return err
	}
	end, err := parsePrice(args[4])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[5])
	if err != nil {
		return errors.New("count must be an integer")
	}
	sizePer, err := parseSize(args[6])
	if err != nil {
		return err
	}
	plan, err := ladder.New(side, start, end, count, sizePer, price.Tick(m.NegRisk), a.cfg.Trading.MaxLadderOrders)
	if err != nil {
		return err
	}
	if plan.Collapsed > 0 {
		fmt.Printf("%d rungs collapsed into neighbors by the tick size\n", plan.Collapsed)
	}
	b := plan.Batch(m.ID, m.Question, m.TokenID(outcome), time.Now())
	b.NegRisk = m.NegRisk
	a.Propose(b)
	return nil
}

func (a *App) cmdOrders(ctx context.Context) error {
	orders, err := a.clob.OpenOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no resting orders")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%s  %s %s @ %s (matched %s)\n",
			o.ID, o.Side, o.OriginalSize.String(), price.Display(o.Price), o.SizeMatched.String())
	}
	return nil
}

func (a *App) cmdCancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cancel <order-id|all|batch>")
	}
	switch strings.ToLower(args[0]) {
	case "batch":
		if a.cancelExecuting() {
			fmt.Println("cancel requested; the batch stops before its next order")
		} else {
			fmt.Println("no batch is executing")
		}
		return nil
	case "all":
		cancelled, err := a.clob.CancelAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("cancelled %d orders\n", len(cancelled))
		return nil
	}
	result := a.gateway.Cancel(ctx, args[0])
	if result.Err != nil {
		return result.Err
	}
	if result.AlreadyDone {
		fmt.Println("order was already gone")
	} else {
		fmt.Println("cancelled", args[0])
	}
	return nil
}

func (a *App) cmdPositions(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: positions <address>")
	}
	positions, err := a.rest.Positions(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(staleStateWarning)
	for _, p := range positions {
		fmt.Printf("%s [%s]  %s @ avg %s  ($%.2f)\n",
			p.Title, p.Outcome, p.Size.String(), price.Display(p.AvgPrice), p.ValueUSD)
	}
	return nil
}

func (a *App) cmdBalance(ctx context.Context) error {
	balance, err := a.clob.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Println(staleStateWarning)
	fmt.Printf("balance $%s (allowance $%s)\n",
		balance.BalanceUSD.StringFixed(2), balance.AllowanceUSD.StringFixed(2))
	return nil
}

func (a *App) cmdJournal(ctx context.Context, args []string) error {
	limit := 20
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.New("usage: journal [n]")
		}
		limit = n
	}
	entries, err := a.journal.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		when := e.At.Format("01-02 15:04")
		switch {
		case e.Batch != nil:
			fmt.Printf("%s  batch %s %s (%d orders, $%s)\n",
				when, e.Batch.BatchID, e.Batch.Status, len(e.Batch.Orders), e.Batch.TotalNotional)
		case e.Decision != nil:
			mode := "live"
			if e.Decision.DryRun {
				mode = "dry-run"
			}
			fmt.Printf("%s  %s %s: %s %d @ %s (%s)\n",
				when, mode, e.Decision.Strategy, e.Decision.Side, e.Decision.Size,
				price.Display(journal.PriceOf(e.Decision.Price)), e.Decision.Reason)
		}
	}
	return nil
}

func (a *App) cmdRun(ctx context.Context) error {
	if a.runner == nil {
		return errors.New("no strategies are enabled")
	}
	a.runner.RunOnce(ctx)
	return nil
}

// resolveMarket accepts a slug, a numeric Gamma id, or a 0x condition id.
func (a *App) resolveMarket(ctx context.Context, ref string) (rest.Market, error) {
	switch {
	case strings.HasPrefix(ref, "0x"):
		return a.rest.MarketByCondition(ctx, ref)
	case isDigits(ref):
		return a.rest.Market(ctx, ref)
	}
	return a.rest.MarketBySlug(ctx, ref)
}

func (a *App) resolveOutcome(ctx context.Context, ref, outcome string) (rest.Market, string, error) {
	outcome = strings.ToLower(outcome)
	if outcome != "yes" && outcome != "no" {
		return rest.Market{}, "", fmt.Errorf("outcome must be yes or no, got %q", outcome)
	}
	m, err := a.resolveMarket(ctx, ref)
	if err != nil {
		return rest.Market{}, "", err
	}
	if m.Closed || !m.Active {
		return rest.Market{}, "", fmt.Errorf("market %q is closed", m.Question)
	}
	if m.TokenID(outcome) == "" {
		return rest.Market{}, "", fmt.Errorf("market %q has no %s token", m.Question, outcome)
	}
	return m, outcome, nil
}

func printMarket(m rest.Market) {
	kind := ""
	if m.NegRisk {
		kind = "  (neg-risk, 1¢ tick)"
	}
	fmt.Printf("%s%s\n  yes %s / no %s  24h volume $%.0f  [%s]\n",
		m.Question, kind, price.Display(m.YesPrice), price.Display(m.NoPrice), m.Volume24hUSD, m.Slug)
}

// parsePrice accepts cents ("35", "35¢") or a decimal probability ("0.35").
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "¢")
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

func parseSize(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad size %q", s)
	}
	return n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
