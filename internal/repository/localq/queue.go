// Package localq is the embedded store-and-forward buffer backed by SQLite.
// Events land here when the remote store is unreachable and survive process
// restarts until drained.
package localq

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver (pure Go)

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
)

// Queue implements repository.LocalQueue on an embedded SQLite file.
type Queue struct {
	db *sql.DB
}

var _ repository.LocalQueue = (*Queue)(nil)

// Open opens (or creates) the buffer database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string) (*Queue, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open buffer db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping buffer db: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS event_buffer (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		point_id INTEGER NOT NULL,
		start_ts TEXT NOT NULL,
		end_ts TEXT,
		measure INTEGER NOT NULL,
		queued_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply buffer schema: %w", err)
	}
	return &Queue{db: db}, nil
}

// Close releases the underlying database handle.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Append stores one event at the tail of the buffer.
func (q *Queue) Append(ctx context.Context, ev domain.Event) error {
	var end any
	if ev.End != nil {
		end = ev.End.UTC().Format(time.RFC3339Nano)
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO event_buffer (kind, point_id, start_ts, end_ts, measure) VALUES (?, ?, ?, ?, ?)`,
		string(ev.Kind), ev.PointID, ev.Start.UTC().Format(time.RFC3339Nano), end, ev.Measure)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Oldest returns up to limit buffered events in insertion order.
func (q *Queue) Oldest(ctx context.Context, limit int) ([]domain.QueuedEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, kind, point_id, start_ts, end_ts, measure FROM event_buffer ORDER BY id ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("scan buffer: %w", err)
	}
	defer rows.Close()

	var out []domain.QueuedEvent
	for rows.Next() {
		var (
			rec   domain.QueuedEvent
			kind  string
			start string
			end   sql.NullString
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.PointID, &start, &end, &rec.Measure); err != nil {
			return nil, fmt.Errorf("scan buffer row: %w", err)
		}
		rec.Kind = domain.EventKind(kind)
		rec.Start, err = time.Parse(time.RFC3339Nano, start)
		if err != nil {
			return nil, fmt.Errorf("parse buffered start_ts: %w", err)
		}
		if end.Valid {
			t, err := time.Parse(time.RFC3339Nano, end.String)
			if err != nil {
				return nil, fmt.Errorf("parse buffered end_ts: %w", err)
			}
			rec.End = &t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter buffer: %w", err)
	}
	return out, nil
}

// Delete removes a buffered row after its remote write was confirmed.
func (q *Queue) Delete(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM event_buffer WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete buffered event %d: %w", id, err)
	}
	return nil
}

// Depth reports the number of buffered events.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	row := q.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM event_buffer`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count buffer: %w", err)
	}
	return n, nil
}
