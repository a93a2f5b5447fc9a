package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/logger"
)

// Handle is the completion handle for one launched run. Result is valid
// once the Done channel is closed.
type Handle struct {
	done     chan struct{}
	doneOnce sync.Once
	result   *Result
	err      error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Done returns a channel that is closed when the run completes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the run outcome. It must only be called after Done is
// closed.
func (h *Handle) Result() (*Result, error) {
	return h.result, h.err
}

// resolve records the outcome and closes the done channel. Only the first
// call has effect.
func (h *Handle) resolve(result *Result, err error) {
	h.doneOnce.Do(func() {
		h.result = result
		h.err = err
		close(h.done)
	})
}

// Coordinator launches independent crawl runs on a shared Runner. It is
// built once from process-wide settings and reused for every run; each
// Launch starts one run goroutine and returns immediately.
type Coordinator struct {
	runner     Runner
	logger     logger.Interface
	activeRuns atomic.Int32
}

// NewCoordinator creates a coordinator around the given runner.
func NewCoordinator(runner Runner, log logger.Interface) (*Coordinator, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Coordinator{
		runner: runner,
		logger: log.WithComponent("coordinator"),
	}, nil
}

// Launch starts one crawl run for the class and returns its completion
// handle. The run inherits ctx; the coordinator never cancels it. The
// returned result carries runID.
func (c *Coordinator) Launch(ctx context.Context, runID string, class *agent.Class, args RunArgs) *Handle {
	handle := newHandle()

	c.activeRuns.Add(1)
	go func() {
		defer c.activeRuns.Add(-1)

		agentName := ""
		if class != nil {
			agentName = class.Name()
		}
		c.logger.Debug("Run launched", "run_id", runID, "agent", agentName)

		result, err := c.run(ctx, class, args)
		if result != nil {
			result.RunID = runID
		}
		if err != nil {
			c.logger.Error("Run failed", "run_id", runID, "agent", agentName, "error", err)
		} else {
			c.logger.Info("Run completed",
				"run_id", runID,
				"agent", agentName,
				"pages", result.PagesVisited,
				"failures", result.Failures,
				"duration", result.Duration(),
			)
		}
		handle.resolve(result, err)
	}()

	return handle
}

// run guards the runner call against a nil class before handing off.
func (c *Coordinator) run(ctx context.Context, class *agent.Class, args RunArgs) (*Result, error) {
	if class == nil {
		return nil, ErrNilClass
	}
	return c.runner.Run(ctx, class, args)
}

// ActiveRuns returns the number of runs currently in flight.
func (c *Coordinator) ActiveRuns() int {
	return int(c.activeRuns.Load())
}
