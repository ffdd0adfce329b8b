package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelbrown/codechat/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs
// migrations. Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordTurn(ctx context.Context, t *storage.Turn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	transcript, err := json.Marshal(t.Transcript)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns (id, message, output, error, tool_calls, transcript, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Message, t.Output, t.Error, t.ToolCalls, string(transcript),
		t.DurationMS, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTurn(ctx context.Context, id string) (*storage.Turn, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, message, output, error, tool_calls, transcript, duration_ms, created_at
		FROM turns WHERE id = ?`, id)

	var t storage.Turn
	var transcript, createdAt string
	err := row.Scan(&t.ID, &t.Message, &t.Output, &t.Error, &t.ToolCalls,
		&transcript, &t.DurationMS, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("turn not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying turn: %w", err)
	}

	if err := json.Unmarshal([]byte(transcript), &t.Transcript); err != nil {
		return nil, fmt.Errorf("unmarshaling transcript: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

func (s *SQLiteStore) ListTurns(ctx context.Context, opts storage.ListOptions) ([]storage.Turn, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, output, error, tool_calls, duration_ms, created_at
		FROM turns ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []storage.Turn
	for rows.Next() {
		var t storage.Turn
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Message, &t.Output, &t.Error, &t.ToolCalls,
			&t.DurationMS, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ storage.Store = (*SQLiteStore)(nil)
