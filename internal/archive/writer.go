// Package archive mirrors executed orders and observed tape trades into
// Postgres for offline analysis. It is strictly optional: a nil *Writer is a
// no-op, and a full queue drops rows rather than block the trading path.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/config"
	"github.com/exhuman777/claude-trader/internal/order"
)

const writeTimeout = 3 * time.Second

// OrderRow is one terminal order with its batch context.
type OrderRow struct {
	Time     time.Time
	BatchID  string
	OrderID  string
	MarketID string
	TokenID  string
	Side     string
	Price    decimal.Decimal
	Size     int64
	Status   string
	Attempts int
	Reason   string
}

// TapeRow is one public trade observed on the market channel.
type TapeRow struct {
	Time    time.Time
	TokenID string
	Side    string
	Price   decimal.Decimal
	Size    decimal.Decimal
}

type Writer struct {
	db        *sql.DB
	log       *zap.Logger
	schema    string
	orders    chan OrderRow
	tape      chan TapeRow
	started   atomic.Bool
	dropOrder atomic.Uint64
	dropTape  atomic.Uint64
}

func New(cfg config.ArchiveConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("archive dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	writer := &Writer{
		db:     db,
		log:    log,
		schema: schema,
		orders: make(chan OrderRow, queueSize),
		tape:   make(chan TapeRow, queueSize),
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// EnqueueBatch fans a finished batch out into per-order rows.
func (w *Writer) EnqueueBatch(b *order.Batch, now time.Time) {
	if w == nil {
		return
	}
	for _, o := range b.Orders {
		w.enqueueOrder(OrderRow{
			Time:     now,
			BatchID:  b.ID,
			OrderID:  o.ID,
			MarketID: b.MarketID,
			TokenID:  o.TokenID,
			Side:     string(o.Side),
			Price:    o.Price,
			Size:     o.Size,
			Status:   string(o.Status),
			Attempts: o.Attempts,
			Reason:   o.Reason,
		})
	}
}

func (w *Writer) enqueueOrder(row OrderRow) {
	select {
	case w.orders <- row:
		return
	default:
		if w.dropOrder.Add(1) == 1 && w.log != nil {
			w.log.Warn("archive order queue full")
		}
	}
}

func (w *Writer) EnqueueTape(row TapeRow) {
	if w == nil {
		return
	}
	select {
	case w.tape <- row:
		return
	default:
		if w.dropTape.Add(1) == 1 && w.log != nil {
			w.log.Warn("archive tape queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case row := <-w.orders:
			w.writeOrder(ctx, row)
		case row := <-w.tape:
			w.writeTape(ctx, row)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("archive db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		batch_id TEXT NOT NULL,
		order_id TEXT NOT NULL DEFAULT '',
		market_id TEXT NOT NULL,
		token_id TEXT NOT NULL,
		side TEXT NOT NULL,
		price NUMERIC(8,4) NOT NULL,
		size BIGINT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT ''
	)`, w.table("order_history"))); err != nil {
		return err
	}
	return w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		token_id TEXT NOT NULL,
		side TEXT NOT NULL,
		price NUMERIC(8,4) NOT NULL,
		size NUMERIC(18,6) NOT NULL
	)`, w.table("tape_trades")))
}

func (w *Writer) writeOrder(ctx context.Context, row OrderRow) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, batch_id, order_id, market_id, token_id, side, price, size, status, attempts, reason
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, w.table("order_history"))
	if _, err := w.db.ExecContext(ctx, query,
		row.Time,
		row.BatchID,
		row.OrderID,
		row.MarketID,
		row.TokenID,
		row.Side,
		row.Price.String(),
		row.Size,
		row.Status,
		row.Attempts,
		row.Reason,
	); err != nil && w.log != nil {
		w.log.Warn("archive order insert failed", zap.Error(err))
	}
}

func (w *Writer) writeTape(ctx context.Context, row TapeRow) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, token_id, side, price, size
	) VALUES ($1,$2,$3,$4,$5)`, w.table("tape_trades"))
	if _, err := w.db.ExecContext(ctx, query,
		row.Time,
		row.TokenID,
		row.Side,
		row.Price.String(),
		row.Size.String(),
	); err != nil && w.log != nil {
		w.log.Warn("archive tape insert failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
