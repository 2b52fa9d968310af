package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/exhuman777/claude-trader/internal/journal"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER NOT NULL,
		kind TEXT NOT NULL,
		payload BLOB NOT NULL
	)`)
	return err
}

func (s *Store) AppendBatch(ctx context.Context, rec *journal.BatchRecord) error {
	return s.append(ctx, journal.KindBatch, rec)
}

func (s *Store) AppendDecision(ctx context.Context, rec *journal.DecisionRecord) error {
	return s.append(ctx, journal.KindDecision, rec)
}

func (s *Store) append(ctx context.Context, kind journal.EntryKind, payload any) error {
	blob, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO journal (at, kind, payload) VALUES (?, ?, ?)`,
		s.now().UnixMilli(), string(kind), blob)
	return err
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, kind, payload FROM journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var (
			e    journal.Entry
			at   int64
			kind string
			blob []byte
		)
		if err := rows.Scan(&e.ID, &at, &kind, &blob); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(at).UTC()
		e.Kind = journal.EntryKind(kind)
		switch e.Kind {
		case journal.KindBatch:
			var rec journal.BatchRecord
			if err := msgpack.Unmarshal(blob, &rec); err != nil {
				return nil, err
			}
			e.Batch = &rec
		case journal.KindDecision:
			var rec journal.DecisionRecord
			if err := msgpack.Unmarshal(blob, &rec); err != nil {
				return nil, err
			}
			e.Decision = &rec
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
