package bridge

import (
	"sync"
	"time"

	"github.com/jonesrussell/spinneret/internal/engine"
)

// Pending is the completion future for one submitted crawl job. It is
// resolved exactly once, by the binder goroutine that watches the engine
// handle; callers block on Wait.
type Pending struct {
	done   chan struct{}
	once   sync.Once
	result *engine.Result
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// resolve records the outcome and releases waiters. Only the first call has
// effect.
func (p *Pending) resolve(result *engine.Result, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// Done returns a channel closed once the job has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the job completes or the timeout expires. On completion
// it returns the engine outcome unchanged; on expiry it returns
// ErrRunTimeout while the background job keeps running.
func (p *Pending) Wait(timeout time.Duration) (*engine.Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.result, p.err
	case <-timer.C:
		return nil, ErrRunTimeout
	}
}
