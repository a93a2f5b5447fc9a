package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/engine"
)

// CrawlJob is one run submission: the selected agent class plus the
// forwarded run arguments, identified by the run id the journal and the
// logs share.
type CrawlJob struct {
	RunID string
	Class *agent.Class
	Args  engine.RunArgs
}

// submit records the start of the job, hands it to the execution loop and
// returns the future its waiter blocks on. The launch happens on the loop
// goroutine under the loop's context, so a caller-side timeout never
// cancels the run.
func (b *Bridge) submit(job *CrawlJob) (*Pending, error) {
	b.recordStart(job)

	pending := newPending()
	performErr := b.loop.Perform(func() {
		handle := b.coordinator.Launch(b.loop.Context(), job.RunID, job.Class, job.Args)
		go b.bind(job, handle, pending)
	})
	if performErr != nil {
		submitErr := fmt.Errorf("submit run %s: %w", job.RunID, performErr)
		b.finalize(job, nil, submitErr)
		return nil, submitErr
	}

	b.logger.Debug("Submitted crawl job",
		"run_id", job.RunID,
		"agent", job.Class.Name(),
	)
	return pending, nil
}

// bind watches the run handle and finalizes bookkeeping before releasing
// the waiter. It outlives a caller-side timeout, so orphaned runs are still
// counted and journaled when they eventually finish.
func (b *Bridge) bind(job *CrawlJob, handle *engine.Handle, pending *Pending) {
	<-handle.Done()
	result, err := handle.Result()
	b.finalize(job, result, err)
	pending.resolve(result, err)
}

func (b *Bridge) recordStart(job *CrawlJob) {
	if b.metrics != nil {
		b.metrics.RunStarted()
	}
	if b.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := b.history.RecordStart(ctx, job.RunID, job.Class.Name(), time.Now()); err != nil {
		b.logger.Warn("Failed to journal run start",
			"run_id", job.RunID,
			"error", err,
		)
	}
}

func (b *Bridge) finalize(job *CrawlJob, result *engine.Result, runErr error) {
	if b.metrics != nil {
		if runErr != nil {
			b.metrics.RunFailed()
		} else {
			var pages int64
			if result != nil {
				pages = result.PagesVisited
			}
			b.metrics.RunCompleted(pages)
		}
	}
	if b.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if runErr != nil {
		if err := b.history.RecordFailure(ctx, job.RunID, result, runErr); err != nil {
			b.logger.Warn("Failed to journal run failure",
				"run_id", job.RunID,
				"error", err,
			)
		}
		return
	}
	if err := b.history.RecordResult(ctx, result); err != nil {
		b.logger.Warn("Failed to journal run result",
			"run_id", job.RunID,
			"error", err,
		)
	}
}
