package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonesrussell/spinneret/internal/engine"
)

// defaultRecentLimit caps Recent when the caller passes no limit.
const defaultRecentLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS crawl_runs (
	id             TEXT PRIMARY KEY,
	agent          TEXT NOT NULL,
	status         TEXT NOT NULL,
	started_at     TIMESTAMP NOT NULL,
	completed_at   TIMESTAMP,
	pages_visited  INTEGER NOT NULL DEFAULT 0,
	links_matched  INTEGER NOT NULL DEFAULT 0,
	links_followed INTEGER NOT NULL DEFAULT 0,
	failures       INTEGER NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_crawl_runs_started_at ON crawl_runs (started_at DESC);
`

// SQLStore journals runs in a SQLite database.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore opens the journal database at path, creating it and its
// schema as needed. Use ":memory:" for an ephemeral journal.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	// A single connection serializes writers and keeps an in-memory
	// journal on one database across calls.
	db.SetMaxOpenConns(1)

	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create run journal schema: %w", execErr)
	}

	return &SQLStore{db: db}, nil
}

// RecordStart journals a run in the running state.
func (s *SQLStore) RecordStart(ctx context.Context, runID, agentName string, startedAt time.Time) error {
	query := `
		INSERT INTO crawl_runs (id, agent, status, started_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, runID, agentName, StatusRunning, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	return nil
}

// RecordResult finalizes a run as completed with its counters.
func (s *SQLStore) RecordResult(ctx context.Context, result *engine.Result) error {
	if result == nil {
		return ErrNilResult
	}

	return s.finalize(ctx, result.RunID, StatusCompleted, result, result.FirstError)
}

// RecordFailure finalizes a run as failed. When the run produced a partial
// result its counters are journaled alongside the error.
func (s *SQLStore) RecordFailure(ctx context.Context, runID string, result *engine.Result, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}

	return s.finalize(ctx, runID, StatusFailed, result, message)
}

func (s *SQLStore) finalize(ctx context.Context, runID, status string, result *engine.Result, message string) error {
	completedAt := time.Now()
	var pagesVisited, linksMatched, linksFollowed, failures int64
	if result != nil {
		if !result.CompletedAt.IsZero() {
			completedAt = result.CompletedAt
		}
		pagesVisited = result.PagesVisited
		linksMatched = result.LinksMatched
		linksFollowed = result.LinksFollowed
		failures = result.Failures
	}

	query := `
		UPDATE crawl_runs
		SET status = ?,
		    completed_at = ?,
		    pages_visited = ?,
		    links_matched = ?,
		    links_followed = ?,
		    failures = ?,
		    error = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		status,
		completedAt.UTC(),
		pagesVisited,
		linksMatched,
		linksFollowed,
		failures,
		message,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	return nil
}

// Recent returns the most recently started runs, newest first. A
// non-positive limit falls back to defaultRecentLimit.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var runs []Run
	query := `
		SELECT id, agent, status, started_at, completed_at,
		       pages_visited, links_matched, links_followed,
		       failures, error
		FROM crawl_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`

	err := s.db.SelectContext(ctx, &runs, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
