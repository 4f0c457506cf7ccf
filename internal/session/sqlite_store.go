package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// SQLiteStore implements Store on the sessions table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sessionColumns = "id, title, message_count, created_at, updated_at"

// Create inserts a session.
func (s *SQLiteStore) Create(ctx context.Context, id, title string) (*Session, error) {
	now := time.Now().UnixMilli()
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING "+sessionColumns,
		id, title, now, now)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get returns one session.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// List returns sessions in creation order.
func (s *SQLiteStore) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// UpdateTitle renames a session.
func (s *SQLiteStore) UpdateTitle(ctx context.Context, id, title string) error {
	return s.exec(ctx, "updating session title",
		"UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?", title, time.Now().UnixMilli(), id)
}

// IncrementMessageCount bumps message_count.
func (s *SQLiteStore) IncrementMessageCount(ctx context.Context, id string) error {
	return s.exec(ctx, "incrementing message count",
		"UPDATE sessions SET message_count = message_count + 1, updated_at = ? WHERE id = ?", time.Now().UnixMilli(), id)
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess             Session
		created, updated int64
	)
	if err := row.Scan(&sess.ID, &sess.Title, &sess.MessageCount, &created, &updated); err != nil {
		return nil, err
	}
	sess.CreatedAt = time.UnixMilli(created)
	sess.UpdatedAt = time.UnixMilli(updated)
	return &sess, nil
}
