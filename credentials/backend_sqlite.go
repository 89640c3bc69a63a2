package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	_ "modernc.org/sqlite"
)

const createSlotTable = `
CREATE TABLE IF NOT EXISTS credential_slot (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

var _ Backend = (*SQLiteBackend)(nil)

// SQLiteBackend keeps the slot as one row of a local SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens (or creates) the database at path.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(createSlotTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credential_slot: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the SQLite handle.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) Save(ctx context.Context, credential string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO credential_slot (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		SlotName, credential, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Load(ctx context.Context) (string, error) {
	var credential string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM credential_slot WHERE name = ?`, SlotName).Scan(&credential)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && credential == "") {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return credential, nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM credential_slot WHERE name = ?`, SlotName); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
