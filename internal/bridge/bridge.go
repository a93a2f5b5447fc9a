// Package bridge exposes blocking crawl runs over a persistent background
// execution loop. A Bridge submits each run as a job to the loop, where the
// run coordinator launches it, and blocks the caller on a completion future
// with an explicit timeout. Sequential calls from one goroutine therefore
// complete in call order against the same long-lived loop. A bridge can
// specialize its template class freshly for every call through an agent
// class factory.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/engine"
	"github.com/jonesrussell/spinneret/internal/history"
	"github.com/jonesrussell/spinneret/internal/logger"
	"github.com/jonesrussell/spinneret/internal/metrics"
)

const (
	// DefaultRunTimeout bounds the blocking wait of RunCrawl when neither
	// the bridge nor the call supplies a timeout.
	DefaultRunTimeout = 5 * time.Minute
	// storeTimeout bounds history writes so a slow journal cannot stall a
	// run or its binder.
	storeTimeout = 5 * time.Second
)

// Bridge runs crawl jobs synchronously on behalf of blocking callers. The
// zero value is not usable; construct with New. A Bridge is safe for
// concurrent use, but it serializes nothing across callers: sequencing is
// only guaranteed per calling goroutine, each call blocking until its run
// finishes or times out.
type Bridge struct {
	loop        *Loop
	coordinator *engine.Coordinator
	template    *agent.Class
	factory     *agent.ClassFactory
	generate    bool
	timeout     time.Duration
	logger      logger.Interface
	metrics     *metrics.Metrics
	history     history.Store
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLoop sets the execution loop. By default the bridge shares the
// process-scoped Default loop.
func WithLoop(loop *Loop) Option {
	return func(b *Bridge) {
		if loop != nil {
			b.loop = loop
		}
	}
}

// WithTemplate sets the template class instantiated (or specialized) per run.
func WithTemplate(template *agent.Class) Option {
	return func(b *Bridge) {
		b.template = template
	}
}

// WithFactory sets the class factory used to specialize the template when
// generation is enabled.
func WithFactory(factory *agent.ClassFactory) Option {
	return func(b *Bridge) {
		b.factory = factory
	}
}

// WithGenerate controls per-call class generation, enabled by default. When
// disabled the template class is instantiated directly.
func WithGenerate(generate bool) Option {
	return func(b *Bridge) {
		b.generate = generate
	}
}

// WithTimeout sets the default blocking-wait bound for RunCrawl.
func WithTimeout(timeout time.Duration) Option {
	return func(b *Bridge) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(log logger.Interface) Option {
	return func(b *Bridge) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithMetrics sets the run counters updated as jobs start and finish.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithHistory sets the run journal. Journaling failures are logged, never
// surfaced to callers.
func WithHistory(store history.Store) Option {
	return func(b *Bridge) {
		b.history = store
	}
}

// New creates a bridge around the given coordinator. A missing factory or
// template under enabled generation is deliberately not a construction
// error; it surfaces from the first RunCrawl call instead.
func New(coordinator *engine.Coordinator, opts ...Option) (*Bridge, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}

	b := &Bridge{
		coordinator: coordinator,
		generate:    true,
		timeout:     DefaultRunTimeout,
		logger:      logger.NewNoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.loop == nil {
		b.loop = Default()
	}
	b.logger = b.logger.WithComponent("bridge")
	return b, nil
}

// Loop returns the execution loop the bridge submits to.
func (b *Bridge) Loop() *Loop {
	return b.loop
}

// RunOption adjusts a single RunCrawl call.
type RunOption func(*runOptions)

type runOptions struct {
	timeout time.Duration
}

// WithRunTimeout overrides the bridge's blocking-wait bound for one call.
func WithRunTimeout(timeout time.Duration) RunOption {
	return func(o *runOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// RunCrawl runs one crawl job and blocks until it completes or the wait
// times out. The agent class is selected per call: a fresh specialization of
// the template when generation is enabled, the template itself otherwise.
// Engine errors are returned unchanged; the bridge never retries. On timeout
// RunCrawl returns ErrRunTimeout while the background run keeps executing,
// with no cancellation propagated into the loop, and its outcome is still
// journaled when it eventually finishes.
func (b *Bridge) RunCrawl(args engine.RunArgs, opts ...RunOption) (*engine.Result, error) {
	options := runOptions{timeout: b.timeout}
	for _, opt := range opts {
		opt(&options)
	}

	class, err := b.selectClass()
	if err != nil {
		return nil, err
	}

	job := &CrawlJob{
		RunID: uuid.NewString(),
		Class: class,
		Args:  args,
	}

	pending, err := b.submit(job)
	if err != nil {
		return nil, err
	}

	result, waitErr := pending.Wait(options.timeout)
	if errors.Is(waitErr, ErrRunTimeout) {
		if b.metrics != nil {
			b.metrics.RunTimedOut()
		}
		b.logger.Warn("Run wait timed out, background job keeps running",
			"run_id", job.RunID,
			"agent", class.Name(),
			"timeout", options.timeout,
		)
		return nil, fmt.Errorf("run %s: %w", job.RunID, waitErr)
	}
	return result, waitErr
}

// selectClass picks the agent class for one run. Configuration errors
// surface here, synchronously, before anything is submitted to the loop.
func (b *Bridge) selectClass() (*agent.Class, error) {
	if !b.generate {
		if b.template == nil {
			return nil, ErrTemplateRequired
		}
		return b.template, nil
	}

	if b.factory == nil {
		return nil, ErrFactoryRequired
	}
	if b.template == nil {
		return nil, ErrTemplateRequired
	}
	class, err := b.factory.Construct(b.template)
	if err != nil {
		return nil, fmt.Errorf("construct agent class: %w", err)
	}
	return class, nil
}
