package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/resolve"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based decision store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, derrors.AuditError("open", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, derrors.AuditError("open", fmt.Errorf("open sqlite database: %w", err))
	}
	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, derrors.AuditError("initialize", fmt.Errorf("initialize schema: %w", err))
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		project TEXT NOT NULL,
		target TEXT NOT NULL,
		jvm_target TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		allow_list_version TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_project ON decisions(project);
	CREATE INDEX IF NOT EXISTS idx_decisions_run_id ON decisions(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordPlan appends every project decision in plan within one transaction.
func (s *SQLiteStore) RecordPlan(ctx context.Context, plan *resolve.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return derrors.AuditError("record", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO decisions (run_id, project, target, jvm_target, output_dir, allow_list_version, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return derrors.AuditError("record", fmt.Errorf("prepare insert: %w", err))
	}
	defer func() { _ = stmt.Close() }()

	ts := plan.CreatedAt.UnixNano()
	for _, r := range plan.Projects {
		if _, err := stmt.ExecContext(ctx,
			plan.RunID, r.Name, r.Target.String(), r.JVMTarget, r.OutputDir, plan.AllowListVersion, ts,
		); err != nil {
			return derrors.AuditError("record", fmt.Errorf("insert decision for %s: %w", r.Name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return derrors.AuditError("record", fmt.Errorf("commit: %w", err))
	}
	return nil
}

// History returns recorded decisions, newest first.
func (s *SQLiteStore) History(ctx context.Context, project string, limit int) ([]Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, run_id, project, target, jvm_target, output_dir, allow_list_version, timestamp FROM decisions"
	var args []any
	if project != "" {
		query += " WHERE project = ?"
		args = append(args, project)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, derrors.AuditError("history", fmt.Errorf("query decisions: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var out []Decision
	for rows.Next() {
		var d Decision
		var ts int64
		if err := rows.Scan(&d.ID, &d.RunID, &d.Project, &d.Target, &d.JVMTarget, &d.OutputDir, &d.AllowListVersion, &ts); err != nil {
			return nil, derrors.AuditError("history", fmt.Errorf("scan decision: %w", err))
		}
		d.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.AuditError("history", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
