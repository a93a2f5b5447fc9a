// Package history journals crawl runs in a local SQLite database. Every
// submitted run is recorded when it starts and finalized exactly once when
// it finishes, including runs whose blocking waiter already timed out.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/jonesrussell/spinneret/internal/engine"
)

// Run statuses recorded in the journal.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one journaled crawl run.
type Run struct {
	// ID is the run id stamped by the bridge.
	ID string `db:"id"`
	// Agent is the name of the agent class that performed the run.
	Agent string `db:"agent"`
	// Status is one of StatusRunning, StatusCompleted or StatusFailed.
	Status string `db:"status"`
	// StartedAt is when the run was submitted.
	StartedAt time.Time `db:"started_at"`
	// CompletedAt is when the run finished; unset while running.
	CompletedAt sql.NullTime `db:"completed_at"`
	// PagesVisited is the number of pages fetched and dispatched.
	PagesVisited int64 `db:"pages_visited"`
	// LinksMatched is the number of links that matched a rule.
	LinksMatched int64 `db:"links_matched"`
	// LinksFollowed is the number of matched links that were enqueued.
	LinksFollowed int64 `db:"links_followed"`
	// Failures is the number of request or handler failures.
	Failures int64 `db:"failures"`
	// Error holds the first failure observed, empty when none.
	Error string `db:"error"`
}

// Store journals crawl runs.
type Store interface {
	// RecordStart journals a run in the running state.
	RecordStart(ctx context.Context, runID, agentName string, startedAt time.Time) error
	// RecordResult finalizes a run as completed with its counters.
	RecordResult(ctx context.Context, result *engine.Result) error
	// RecordFailure finalizes a run as failed. The result may be nil when
	// the run never produced one.
	RecordFailure(ctx context.Context, runID string, result *engine.Result, runErr error) error
	// Recent returns the most recently started runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
	// Close releases the underlying database handle.
	Close() error
}
