package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			batch_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			file_count INTEGER NOT NULL DEFAULT 0,
			task_count INTEGER NOT NULL DEFAULT 0,
			no_match_count INTEGER NOT NULL DEFAULT 0,
			ok_count INTEGER NOT NULL DEFAULT 0,
			degraded_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started_at)`,
		`CREATE TABLE IF NOT EXISTS invocations (
			invocation_id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			status TEXT NOT NULL,
			status_reason TEXT,
			attempts INTEGER NOT NULL DEFAULT 1,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (batch_id) REFERENCES batches(batch_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_batch ON invocations(batch_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (batch_id) REFERENCES batches(batch_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_batch ON events(batch_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Add new columns for existing DBs (SQLite has limited ALTER TABLE support).
	if err := s.ensureColumn("invocations", "attempts", "ALTER TABLE invocations ADD COLUMN attempts INTEGER NOT NULL DEFAULT 1"); err != nil {
		return err
	}
	if err := s.ensureColumn("invocations", "duration_ms", "ALTER TABLE invocations ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBatch creates a new batch row.
func (s *SQLiteStore) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (batch_id, status, file_count, task_count, no_match_count, ok_count, degraded_count, failed_count, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.BatchID, batch.Status, batch.FileCount, batch.TaskCount, batch.NoMatchCount, batch.OkCount, batch.DegradedCount, batch.FailedCount, batch.StartedAt)
	return err
}

// GetBatch retrieves a batch by ID.
func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	var batch domain.Batch
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT batch_id, status, file_count, task_count, no_match_count, ok_count, degraded_count, failed_count, started_at, completed_at FROM batches WHERE batch_id = ?`,
		batchID).Scan(&batch.BatchID, &batch.Status, &batch.FileCount, &batch.TaskCount, &batch.NoMatchCount, &batch.OkCount, &batch.DegradedCount, &batch.FailedCount, &batch.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		batch.CompletedAt = &completedAt.Time
	}
	return &batch, nil
}

// ListBatches lists the most recent batches.
func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]domain.Batch, error) {
	query := `SELECT batch_id, status, file_count, task_count, no_match_count, ok_count, degraded_count, failed_count, started_at, completed_at FROM batches ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		var batch domain.Batch
		var completedAt sql.NullTime
		if err := rows.Scan(&batch.BatchID, &batch.Status, &batch.FileCount, &batch.TaskCount, &batch.NoMatchCount, &batch.OkCount, &batch.DegradedCount, &batch.FailedCount, &batch.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			batch.CompletedAt = &completedAt.Time
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// UpdateBatchCompleted marks a batch as completed and records its summary counts.
func (s *SQLiteStore) UpdateBatchCompleted(ctx context.Context, batchID string, status domain.BatchStatus, summary domain.BatchSummary) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`UPDATE batches SET status = ?, no_match_count = ?, ok_count = ?, degraded_count = ?, failed_count = ?, completed_at = ? WHERE batch_id = ?`,
		status, summary.NoMatchCount, summary.OkCount, summary.DegradedCount, summary.FailedCount, now, batchID)
	return err
}

// CreateInvocation creates a new invocation row.
func (s *SQLiteStore) CreateInvocation(ctx context.Context, inv *domain.Invocation) error {
	var reason sql.NullString
	if inv.StatusReason != "" {
		reason = sql.NullString{String: inv.StatusReason, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (invocation_id, batch_id, file_name, agent_name, status, status_reason, attempts, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvocationID, inv.BatchID, inv.FileName, inv.AgentName, inv.Status, reason, inv.Attempts, inv.DurationMs, inv.CreatedAt)
	return err
}

// GetInvocations retrieves the invocation rows for a batch.
func (s *SQLiteStore) GetInvocations(ctx context.Context, batchID string) ([]domain.Invocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT invocation_id, batch_id, file_name, agent_name, status, status_reason, attempts, duration_ms, created_at FROM invocations WHERE batch_id = ? ORDER BY created_at ASC`,
		batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invocations []domain.Invocation
	for rows.Next() {
		var inv domain.Invocation
		var reason sql.NullString
		if err := rows.Scan(&inv.InvocationID, &inv.BatchID, &inv.FileName, &inv.AgentName, &inv.Status, &reason, &inv.Attempts, &inv.DurationMs, &inv.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			inv.StatusReason = reason.String
		}
		invocations = append(invocations, inv)
	}
	return invocations, rows.Err()
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, batch_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.BatchID, event.Ts, event.Type, payload)
	return err
}

// GetEvents retrieves events for a batch.
func (s *SQLiteStore) GetEvents(ctx context.Context, batchID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	query := `SELECT event_id, batch_id, ts, type, payload FROM events WHERE batch_id = ?`
	args := []interface{}{batchID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ts ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.BatchID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
