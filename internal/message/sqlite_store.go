package message

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore implements Store on the messages table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append inserts msg with the next sequence number of its session.
func (s *SQLiteStore) Append(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	now := time.Now()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, session_id, seq, role, content, svg, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = ?), ?, ?, ?, ?)
		RETURNING seq`,
		msg.ID, msg.SessionID, msg.SessionID, string(msg.Role), msg.Content, msg.SVG, now.UnixMilli(),
	).Scan(&msg.Seq)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	msg.CreatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

// List returns a session's messages ordered by seq.
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, role, content, svg, created_at
		FROM messages WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var msgs []*Message
	for rows.Next() {
		var (
			m       Message
			role    string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &role, &m.Content, &m.SVG, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt = time.UnixMilli(created)
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// Count returns the number of messages in a session.
func (s *SQLiteStore) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE session_id = ?", sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}
