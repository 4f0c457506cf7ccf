package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tableExists(t *testing.T, d *DB, name string) bool {
	t.Helper()
	var got string
	err := d.Conn().QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return true
}

func TestOpen(t *testing.T) {
	t.Run("creates file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "archlens.db")
		d, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = d.Close() }()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file missing: %v", err)
		}
		if d.Path() != path {
			t.Errorf("Path() = %q", d.Path())
		}
	})

	t.Run("reopen keeps migrations applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "archlens.db")
		for i := 0; i < 2; i++ {
			d, err := Open(path)
			if err != nil {
				t.Fatalf("Open() #%d error = %v", i, err)
			}
			if !tableExists(t, d, "sessions") {
				t.Error("sessions table missing")
			}
			_ = d.Close()
		}
	})
}

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer func() { _ = d.Close() }()

	if d.Path() != MemoryPath {
		t.Errorf("Path() = %q", d.Path())
	}
	for _, table := range []string{"sessions", "messages"} {
		if !tableExists(t, d, table) {
			t.Errorf("%s table missing", table)
		}
	}

	// Data must survive across pooled queries.
	ctx := context.Background()
	if _, err := d.Conn().ExecContext(ctx,
		"INSERT INTO sessions (id, title, created_at, updated_at) VALUES ('a', 't', 1, 1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var n int
	if err := d.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil || n != 1 {
		t.Errorf("count = %d, err = %v", n, err)
	}
}

func TestWithTx(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer func() { _ = d.Close() }()
	ctx := context.Background()

	boom := errors.New("boom")
	err = d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sessions (id, title, created_at, updated_at) VALUES ('a', 't', 1, 1)"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var n int
	if err := d.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rolled back insert is visible: count = %d", n)
	}
}
