package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"
)

const createSessionsTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY,
	evaluation_rh TEXT NOT NULL DEFAULT '',
	updated_at_utc TEXT NOT NULL DEFAULT ''
)`

// SQLiteStore implements Store on a local SQLite database. Busy/locked
// writes are retried with exponential backoff; retry policy lives here, in
// the collaborator, not in the engine.
type SQLiteStore struct {
	db              *sql.DB
	retryMaxElapsed time.Duration
}

// OpenSQLite opens (or creates) the database at path and ensures the
// sessions table exists.
func OpenSQLite(path string, retryMaxElapsed time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(createSessionsTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	if retryMaxElapsed <= 0 {
		retryMaxElapsed = 10 * time.Second
	}
	return &SQLiteStore{db: db, retryMaxElapsed: retryMaxElapsed}, nil
}

// EnsureSession creates the session row if it does not exist yet. The web
// application creates rows at session start; the CLI harness calls this
// before evaluating so the update contract holds locally too.
func (s *SQLiteStore) EnsureSession(ctx context.Context, sessionID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, sessionID)
	if err != nil {
		return fmt.Errorf("ensure session %d: %w", sessionID, err)
	}
	return nil
}

// SaveEvaluation updates the evaluation JSON for a session. The row must
// already exist; a missing row is an error, not an insert.
func (s *SQLiteStore) SaveEvaluation(ctx context.Context, sessionID int, evaluationJSON []byte) error {
	op := func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE sessions SET evaluation_rh = ?, updated_at_utc = ? WHERE id = ?`,
			string(evaluationJSON), time.Now().UTC().Format(time.RFC3339), sessionID)
		if err != nil {
			if isBusy(err) {
				return err // transient, retry
			}
			return backoff.Permanent(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return backoff.Permanent(err)
		}
		if n == 0 {
			return backoff.Permanent(fmt.Errorf("session %d not found", sessionID))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.retryMaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("save evaluation for session %d: %w", sessionID, err)
	}
	return nil
}

// LoadEvaluation reads the stored record for a session, for the CLI and
// tests. Returns sql.ErrNoRows when the session does not exist.
func (s *SQLiteStore) LoadEvaluation(ctx context.Context, sessionID int) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT evaluation_rh FROM sessions WHERE id = ?`, sessionID).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
