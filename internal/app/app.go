// Package app wires the trader together: market data clients, the signed
// CLOB client, the confirmation gate, the sequencer, strategies and the
// interactive command loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/alerts"
	"github.com/exhuman777/claude-trader/internal/archive"
	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/gate"
	"github.com/exhuman777/claude-trader/internal/gateway"
	"github.com/exhuman777/claude-trader/internal/journal"
	jsqlite "github.com/exhuman777/claude-trader/internal/journal/sqlite"
	"github.com/exhuman777/claude-trader/internal/metrics"
	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/clob"
	"github.com/exhuman777/claude-trader/internal/poly/rest"
	"github.com/exhuman777/claude-trader/internal/poly/ws"
	"github.com/exhuman777/claude-trader/internal/price"
	"github.com/exhuman777/claude-trader/internal/ratelimit"
	"github.com/exhuman777/claude-trader/internal/sequencer"
	"github.com/exhuman777/claude-trader/internal/strategy"
	"github.com/exhuman777/claude-trader/internal/watch"
)

type App struct {
	cfg       *config.Config
	log       *zap.Logger
	rest      *rest.Client
	clob      *clob.Client
	gateway   *gateway.Gateway
	sequencer *sequencer.Sequencer
	gate      *gate.Gate
	journal   journal.Store
	archive   *archive.Writer
	metrics   *metrics.Metrics
	prom      *metrics.Prometheus
	alerts    *alerts.Telegram
	runner    *strategy.Runner
	watcher   *watch.Watcher

	mu        sync.Mutex
	executing *order.Batch
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	privateKey := strings.TrimSpace(os.Getenv("POLY_PRIVATE_KEY"))
	if privateKey == "" {
		return nil, errors.New("POLY_PRIVATE_KEY is required")
	}
	funder := strings.TrimSpace(os.Getenv("POLY_FUNDER"))
	creds := clob.Creds{
		APIKey:     strings.TrimSpace(os.Getenv("POLY_API_KEY")),
		Secret:     strings.TrimSpace(os.Getenv("POLY_API_SECRET")),
		Passphrase: strings.TrimSpace(os.Getenv("POLY_PASSPHRASE")),
	}
	if !creds.Valid() {
		return nil, errors.New("POLY_API_KEY, POLY_API_SECRET and POLY_PASSPHRASE are required")
	}
	signer, err := clob.NewSigner(privateKey, funder)
	if err != nil {
		return nil, err
	}
	clobClient, err := clob.NewClient(cfg.Clob, signer, creds, log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Journal.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := jsqlite.New(cfg.Journal.SQLitePath)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	} else {
		m = metrics.NewNoop()
	}

	arch, err := archive.New(cfg.Archive, log)
	if err != nil {
		return nil, err
	}

	restClient := rest.New(cfg.Gamma, log)
	budget := ratelimit.New(cfg.Trading.RequestsPerMinute, cfg.Trading.RequestBurst)
	gw := gateway.New(clobClient, budget, cfg.Clob.Timeout, m, log)
	seq := sequencer.New(gw, batchJournal{store}, sequencer.Config{
		InterOrderDelay: cfg.Trading.InterOrderDelay,
		MaxAttempts:     cfg.Trading.MaxAttempts,
		RetryBackoff:    cfg.Trading.RetryBackoff,
	}, m, log)
	confirmGate := gate.New(cfg.Trading.ConfirmTTL, m, log)

	a := &App{
		cfg:       cfg,
		log:       log,
		rest:      restClient,
		clob:      clobClient,
		gateway:   gw,
		sequencer: seq,
		gate:      confirmGate,
		journal:   store,
		archive:   arch,
		metrics:   m,
		prom:      prom,
		alerts:    alerts.NewTelegram(cfg.Telegram, log),
	}

	var strategies []strategy.Strategy
	if cfg.Strategies.Whale.Enabled {
		strategies = append(strategies, strategy.NewWhale(cfg.Strategies.Whale, restClient, restClient, restClient, log))
	}
	if cfg.Strategies.Volume.Enabled {
		strategies = append(strategies, strategy.NewVolume(cfg.Strategies.Volume, restClient, log))
	}
	if cfg.Strategies.Scan.Enabled {
		strategies = append(strategies, strategy.NewScan(cfg.Strategies.Scan, cfg.Strategies.Volume.BetUSD, restClient, log))
	}
	if len(strategies) > 0 {
		a.runner = strategy.NewRunner(strategies, a, store, cfg.Strategies.DryRun,
			cfg.Strategies.Interval, cfg.Strategies.MaxRuns, m, log)
	}

	if cfg.Watch.Enabled {
		feed := ws.New(cfg.Clob.WSURL, cfg.Clob.ReconnectDelay, cfg.Clob.PingInterval, log)
		watcher, err := watch.New(cfg.Watch, feed, a.alerts, arch, log)
		if err != nil {
			return nil, err
		}
		a.watcher = watcher
	}
	return a, nil
}

// Propose stages a batch at the confirmation gate and shows its preview.
func (a *App) Propose(b *order.Batch) {
	_, summary := a.gate.Propose(b)
	fmt.Println(summary)
}

func (a *App) Run(ctx context.Context) error {
	defer a.journal.Close()
	defer a.archive.Close()

	a.archive.Start(ctx)
	if a.prom != nil {
		go a.serveMetrics(ctx)
	}
	if a.runner != nil {
		go a.runner.Schedule(ctx)
	}
	if a.watcher != nil {
		go func() {
			if err := a.watcher.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Warn("watcher stopped", zap.Error(err))
			}
		}()
	}
	return a.commandLoop(ctx)
}

func (a *App) serveMetrics(ctx context.Context) {
	server := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: a.prom.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	a.log.Info("metrics listening", zap.String("addr", a.cfg.Metrics.Listen))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Warn("metrics server stopped", zap.Error(err))
	}
}

// executeDraft runs a confirmed batch in the background so the command loop
// stays responsive for a mid-batch cancel.
func (a *App) executeDraft(ctx context.Context, d *gate.Draft) {
	a.mu.Lock()
	if a.executing != nil {
		a.mu.Unlock()
		fmt.Println("a batch is already executing; cancel it first")
		return
	}
	a.executing = d.Batch
	a.mu.Unlock()

	go func() {
		result := a.sequencer.Execute(ctx, d.Batch)
		a.mu.Lock()
		a.executing = nil
		a.mu.Unlock()
		a.archive.EnqueueBatch(d.Batch, time.Now())
		report := renderResult(result)
		fmt.Println(report)
		if err := a.alerts.Send(ctx, report); err != nil {
			a.log.Warn("alert send failed", zap.Error(err))
		}
	}()
}

// cancelExecuting flags the running batch to stop before its next order.
func (a *App) cancelExecuting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.executing == nil {
		return false
	}
	a.executing.RequestCancel()
	return true
}

// batchJournal adapts the journal store to the sequencer's interface.
type batchJournal struct {
	store journal.Store
}

func (j batchJournal) RecordBatch(ctx context.Context, b *order.Batch) error {
	return j.store.AppendBatch(ctx, journal.RecordFromBatch(b))
}

func renderResult(r *sequencer.BatchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "batch %s: %s (%d ok, %d rejected", r.Batch.ID, r.Batch.Status, r.Succeeded, r.Rejected)
	if r.Skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", r.Skipped)
	}
	sb.WriteString(")")
	for _, oc := range r.PerOrder {
		o := oc.Order
		if o.Status == order.StatusRejected {
			fmt.Fprintf(&sb, "\n  %s %d @ %s rejected: %s", o.Side, o.Size, price.Display(o.Price), o.Reason)
		}
	}
	return sb.String()
}
