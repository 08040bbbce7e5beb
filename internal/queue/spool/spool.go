// Package spool provides a local SQLite-backed command queue with the same
// receive/delete semantics as a hosted queue service.
package spool

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dokzlo13/huecmd/internal/queue"
)

const recheckInterval = 200 * time.Millisecond

// Spool is a queue stored in a SQLite database file
type Spool struct {
	db         *sql.DB
	path       string
	visibility time.Duration
	now        func() time.Time
}

// Open opens the spool database and initializes the schema.
// Received messages stay hidden from other receivers for visibility.
func Open(path string, visibility time.Duration) (*Spool, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open spool: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Spool{db: db, path: path, visibility: visibility, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	// receipt is rotated on every receive so stale handles cannot delete
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS queue_messages (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			body TEXT NOT NULL,
			receipt TEXT,
			visible_at INTEGER NOT NULL,
			receive_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_queue_visible ON queue_messages(visible_at, seq);
	`)
	if err != nil {
		return fmt.Errorf("failed to create queue_messages table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Spool) Close() error {
	return s.db.Close()
}

// URL identifies the spool in logs
func (s *Spool) URL() string {
	return "sqlite://" + s.path
}

// Send enqueues a message body
func (s *Spool) Send(ctx context.Context, body string) error {
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queue_messages (id, seq, body, visible_at, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM queue_messages), ?, ?, ?)
	`, uuid.NewString(), body, now, now)
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}
	return nil
}

// Receive returns up to max visible messages, waiting up to wait for at
// least one to arrive
func (s *Spool) Receive(ctx context.Context, max int, wait time.Duration) ([]queue.Message, error) {
	deadline := s.now().Add(wait)

	for {
		messages, err := s.receiveOnce(ctx, max)
		if err != nil {
			return nil, &queue.ReceiveError{Err: err}
		}
		if len(messages) > 0 || !s.now().Before(deadline) {
			return messages, nil
		}

		timer := time.NewTimer(min(recheckInterval, deadline.Sub(s.now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &queue.ReceiveError{Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (s *Spool) receiveOnce(ctx context.Context, max int) ([]queue.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := s.now()
	rows, err := tx.QueryContext(ctx, `
		SELECT id, body FROM queue_messages
		WHERE visible_at <= ?
		ORDER BY seq
		LIMIT ?
	`, now.UnixNano(), max)
	if err != nil {
		return nil, err
	}

	var messages []queue.Message
	for rows.Next() {
		var msg queue.Message
		if err := rows.Scan(&msg.ID, &msg.Body); err != nil {
			rows.Close()
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hiddenUntil := now.Add(s.visibility).UnixNano()
	for i := range messages {
		messages[i].ReceiptHandle = uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			UPDATE queue_messages
			SET receipt = ?, visible_at = ?, receive_count = receive_count + 1
			WHERE id = ?
		`, messages[i].ReceiptHandle, hiddenUntil, messages[i].ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete removes a received message. Deleting with a receipt that has
// been superseded by a later receive is a no-op.
func (s *Spool) Delete(ctx context.Context, msg queue.Message) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM queue_messages WHERE receipt = ?`, msg.ReceiptHandle)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Len returns the number of stored messages, visible or not
func (s *Spool) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_messages`).Scan(&n)
	return n, err
}
