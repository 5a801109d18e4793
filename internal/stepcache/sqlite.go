package stepcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelcheck/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the cache database to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore persists workflow step results in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the step cache database.
func OpenSQLite(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "stepcache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get loads the cached record for key. Unknown keys yield an empty record.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Record, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	ctx = ensureContext(ctx)

	record := &Record{Key: key, Steps: make(map[string]StepResult)}
	row := s.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM workflows WHERE workflow_key = ?", key)
	var createdAt, updatedAt string
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, nil
		}
		return nil, fmt.Errorf("load workflow %s: %w", key, err)
	}
	record.CreatedAt = parseTime(createdAt)
	record.UpdatedAt = parseTime(updatedAt)

	rows, err := s.db.QueryContext(ctx,
		"SELECT step, status, payload, reason, updated_at FROM workflow_steps WHERE workflow_key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("load workflow steps %s: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step, status, payload, reason, stepUpdated string
		)
		if err := rows.Scan(&step, &status, &payload, &reason, &stepUpdated); err != nil {
			return nil, fmt.Errorf("scan workflow step: %w", err)
		}
		result := StepResult{
			Status:    Status(status),
			Reason:    reason,
			UpdatedAt: parseTime(stepUpdated),
		}
		if payload != "" {
			result.Payload = []byte(payload)
		}
		record.Steps[step] = result
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow steps: %w", err)
	}
	return record, nil
}

// PutStep durably upserts one step result. An existing ok result is never
// overwritten, which makes retried writes of the same success harmless.
func (s *SQLiteStore) PutStep(ctx context.Context, key, step string, result StepResult) error {
	if err := validateKeyStep(key, step); err != nil {
		return err
	}
	ctx = ensureContext(ctx)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	updatedAt := now
	if !result.UpdatedAt.IsZero() {
		updatedAt = result.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin put tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflows (workflow_key, created_at, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(workflow_key) DO UPDATE SET updated_at = excluded.updated_at`,
			key, now, now); err != nil {
			return fmt.Errorf("upsert workflow %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_steps (workflow_key, step, status, payload, reason, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(workflow_key, step) DO UPDATE SET
				status = excluded.status,
				payload = excluded.payload,
				reason = excluded.reason,
				updated_at = excluded.updated_at
			WHERE workflow_steps.status != ?`,
			key, step, string(result.Status), string(result.Payload), result.Reason, updatedAt,
			string(StatusOK)); err != nil {
			return fmt.Errorf("upsert step %s/%s: %w", key, step, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit step %s/%s: %w", key, step, err)
		}
		return nil
	})
}

// Delete removes one workflow and all of its step results.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM workflows WHERE workflow_key = ?", key)
		return err
	})
}

// Keys lists all cached workflow keys, most recently updated first.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT workflow_key FROM workflows ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan workflow key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
