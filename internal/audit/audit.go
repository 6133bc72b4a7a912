// Package audit keeps a local, append-only log of send attempts.
//
// Sending is the one non-idempotent operation the bridge performs, so
// every attempt is worth a durable trace: when an agent misbehaves, the
// log answers "what did this process actually try to send, and when".
// The log is write-only from the tool path and never read during a call.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/RealHotChiliPepe/tgbot/internal/bridge"
)

const schema = `
CREATE TABLE IF NOT EXISTS send_attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_ref    TEXT NOT NULL,
	peer_id     INTEGER NOT NULL,
	text_len    INTEGER NOT NULL,
	status      TEXT NOT NULL,
	error_kind  TEXT NOT NULL DEFAULT '',
	message_id  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_send_attempts_created ON send_attempts(created_at);
`

// Log is a SQLite-backed send-attempt log.
type Log struct {
	db *sql.DB
}

// Open creates (or opens) the log database at path.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return &Log{db: db}, nil
}

// RecordSend appends one attempt. Failures here never fail the send; the
// caller logs and moves on.
func (l *Log) RecordSend(ctx context.Context, a bridge.SendAttempt) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO send_attempts (chat_ref, peer_id, text_len, status, error_kind, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ChatRef, a.PeerID, a.TextLen, a.Status, a.ErrorKind, a.MessageID,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Attempt is one recorded row, as read back by Recent.
type Attempt struct {
	ID        int64
	ChatRef   string
	PeerID    int64
	TextLen   int
	Status    string
	ErrorKind string
	MessageID int
	CreatedAt time.Time
}

// Recent returns the latest attempts, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, chat_ref, peer_id, text_len, status, error_kind, message_id, created_at
		FROM send_attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query send attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var created string
		if err := rows.Scan(&a.ID, &a.ChatRef, &a.PeerID, &a.TextLen,
			&a.Status, &a.ErrorKind, &a.MessageID, &created); err != nil {
			return nil, fmt.Errorf("scan send attempt: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *Log) Close() error {
	return l.db.Close()
}
