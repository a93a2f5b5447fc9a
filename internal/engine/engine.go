// Package engine provides the crawl engine that executes agent classes. The
// core contract is the Runner interface: given an agent class and forwarded
// run arguments it performs one crawl and reports a Result. The Coordinator
// launches independent runs on a shared Runner and hands back completion
// handles; the shipped CollyRunner implements Runner on a colly collector.
package engine

import (
	"context"
	"time"

	"github.com/jonesrussell/spinneret/internal/agent"
)

// RunArgs carries the forwarded construction arguments for one crawl run.
type RunArgs struct {
	// StartURLs are the entry points of the crawl.
	StartURLs []string
	// Settings are per-run overrides merged over the class settings, the
	// overrides winning on key collisions.
	Settings agent.Settings
}

// Result is the outcome of one crawl run.
type Result struct {
	// RunID identifies the run; stamped by the Coordinator.
	RunID string
	// Agent is the name of the agent class that performed the run.
	Agent string
	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time
	CompletedAt time.Time
	// PagesVisited is the number of responses received.
	PagesVisited int64
	// LinksMatched is the number of links accepted by a rule extractor.
	LinksMatched int64
	// LinksFollowed is the number of matched links that were visited.
	LinksFollowed int64
	// Failures is the number of request and handler errors.
	Failures int64
	// FirstError holds the first failure observed, empty when none.
	FirstError string
}

// Duration returns the wall-clock duration of the run.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Failed reports whether the run recorded any failures.
func (r *Result) Failed() bool {
	return r.Failures > 0
}

// Runner executes one crawl run for an agent class. A nil error implies a
// non-nil Result. Implementations must be safe for concurrent use; the
// Coordinator launches runs from multiple goroutines against one Runner.
type Runner interface {
	Run(ctx context.Context, class *agent.Class, args RunArgs) (*Result, error)
}
