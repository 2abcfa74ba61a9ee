package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deed-xyz/go-deed/registry"
)

// Store persists event records in a SQLite database for external indexers.
// The authoritative registry state stays in memory; the store holds only
// the observation stream.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) an event database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		seq          INTEGER PRIMARY KEY,
		id           TEXT NOT NULL,
		kind         TEXT NOT NULL,
		from_account TEXT NOT NULL,
		to_account   TEXT NOT NULL,
		token_id     TEXT NOT NULL,
		approved     INTEGER NOT NULL,
		uri          TEXT NOT NULL,
		timestamp    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_token ON events(token_id);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Append inserts events in order. All inserts run in one transaction, so a
// partial batch is never visible.
func (s *Store) Append(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (seq, id, kind, from_account, to_account, token_id, approved, uri, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.Seq, e.ID, string(e.Kind),
			string(e.From), string(e.To),
			tokenColumn(e), e.Approved, e.URI,
			e.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Read returns events with a sequence number greater than afterSeq, in
// sequence order. Pass 0 to read the whole stream.
func (s *Store) Read(ctx context.Context, afterSeq uint64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, kind, from_account, to_account, token_id, approved, uri, timestamp
		FROM events WHERE seq > ? ORDER BY seq`, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e        Event
			kind     string
			from, to string
			token    string
			ts       string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &kind, &from, &to, &token, &e.Approved, &e.URI, &ts); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		e.Kind = registry.EventKind(kind)
		e.From = registry.Account(from)
		e.To = registry.Account(to)
		if token != "" {
			id, err := registry.ParseID(token)
			if err != nil {
				return nil, fmt.Errorf("event %d: bad token id %q: %w", e.Seq, token, err)
			}
			e.TokenID = id
		}
		if e.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.Seq, err)
		}

		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
