package bridge_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/bridge"
	"github.com/jonesrussell/spinneret/internal/engine"
	"github.com/jonesrussell/spinneret/internal/history"
	"github.com/jonesrussell/spinneret/internal/logger"
	"github.com/jonesrussell/spinneret/internal/metrics"
)

// recordingRunner returns a canned outcome after an optional delay and
// records the classes and start URLs it was called with.
type recordingRunner struct {
	mu     sync.Mutex
	agents []string
	urls   []string
	delay  time.Duration
	result *engine.Result
	err    error
}

func (r *recordingRunner) Run(ctx context.Context, class *agent.Class, args engine.RunArgs) (*engine.Result, error) {
	r.mu.Lock()
	r.agents = append(r.agents, class.Name())
	if len(args.StartURLs) > 0 {
		r.urls = append(r.urls, args.StartURLs[0])
	}
	delay := r.delay
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if r.result != nil {
		res := *r.result
		res.Agent = class.Name()
		return &res, r.err
	}
	return nil, r.err
}

func (r *recordingRunner) calledAgents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.agents...)
}

func (r *recordingRunner) calledURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func newTemplateClass(t *testing.T) *agent.Class {
	t.Helper()

	class, err := agent.NewClass(agent.ClassParams{Name: "news"})
	require.NoError(t, err)
	return class
}

func newTestBridge(t *testing.T, runner engine.Runner, opts ...bridge.Option) *bridge.Bridge {
	t.Helper()

	coord, err := engine.NewCoordinator(runner, logger.NewNoOp())
	require.NoError(t, err)

	loop := bridge.NewLoop(4)
	t.Cleanup(loop.Close)

	b, err := bridge.New(coord, append([]bridge.Option{bridge.WithLoop(loop)}, opts...)...)
	require.NoError(t, err)
	return b
}

func TestNewBridge(t *testing.T) {
	t.Parallel()

	t.Run("requires a coordinator", func(t *testing.T) {
		t.Parallel()

		_, err := bridge.New(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrCoordinatorRequired)
	})

	t.Run("shares the process-scoped loop by default", func(t *testing.T) {
		t.Parallel()

		coord, err := engine.NewCoordinator(&recordingRunner{}, logger.NewNoOp())
		require.NoError(t, err)

		b, err := bridge.New(coord)
		require.NoError(t, err)
		assert.Same(t, bridge.Default(), b.Loop())
	})

	t.Run("accepts a missing factory without error", func(t *testing.T) {
		t.Parallel()

		coord, err := engine.NewCoordinator(&recordingRunner{}, logger.NewNoOp())
		require.NoError(t, err)

		// Generation is on by default; the misconfiguration surfaces from
		// RunCrawl, not from construction.
		b, err := bridge.New(coord)
		require.NoError(t, err)
		assert.NotNil(t, b)
	})
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	t.Run("instantiates the template directly when generation is disabled", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{result: &engine.Result{PagesVisited: 5}}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
		)

		result, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, "news", result.Agent)
		assert.Equal(t, int64(5), result.PagesVisited)
		assert.Equal(t, []string{"news"}, runner.calledAgents())
	})

	t.Run("completes sequential calls in call order", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{result: &engine.Result{}}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
		)

		urls := []string{"https://a.test", "https://b.test", "https://c.test"}
		for _, u := range urls {
			_, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{u}})
			require.NoError(t, err)
		}

		assert.Equal(t, urls, runner.calledURLs())
	})

	t.Run("specializes a fresh class for every call", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{result: &engine.Result{}}
		factory := agent.NewClassFactory(agent.Settings{}, false)
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithFactory(factory),
		)

		for range 2 {
			_, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
			require.NoError(t, err)
		}

		agents := runner.calledAgents()
		require.Len(t, agents, 2)
		assert.True(t, strings.HasPrefix(agents[0], "news-"))
		assert.True(t, strings.HasPrefix(agents[1], "news-"))
		assert.NotEqual(t, agents[0], agents[1])
	})

	t.Run("requires a factory when generation is enabled", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{result: &engine.Result{}}
		b := newTestBridge(t, runner, bridge.WithTemplate(newTemplateClass(t)))

		_, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrFactoryRequired)
		assert.Empty(t, runner.calledAgents())
	})

	t.Run("requires a template", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{result: &engine.Result{}}
		factory := agent.NewClassFactory(agent.Settings{}, false)

		b := newTestBridge(t, runner, bridge.WithFactory(factory))
		_, err := b.RunCrawl(engine.RunArgs{})
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrTemplateRequired)

		b = newTestBridge(t, runner, bridge.WithGenerate(false))
		_, err = b.RunCrawl(engine.RunArgs{})
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrTemplateRequired)
	})

	t.Run("passes engine errors through unchanged", func(t *testing.T) {
		t.Parallel()

		engineErr := errors.New("fetch exploded")
		runner := &recordingRunner{err: engineErr}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
		)

		_, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, engineErr)
	})

	t.Run("journals completed runs and counts them", func(t *testing.T) {
		t.Parallel()

		store, err := history.NewSQLStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, store.Close()) })
		m := metrics.NewMetrics()

		runner := &recordingRunner{result: &engine.Result{PagesVisited: 7, LinksFollowed: 3}}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
			bridge.WithMetrics(m),
			bridge.WithHistory(store),
		)

		result, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.NoError(t, err)

		// The binder journals the outcome before the waiter is released,
		// so the record is final here.
		runs, err := store.Recent(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, result.RunID, runs[0].ID)
		assert.Equal(t, "news", runs[0].Agent)
		assert.Equal(t, history.StatusCompleted, runs[0].Status)
		assert.Equal(t, int64(7), runs[0].PagesVisited)
		assert.Equal(t, int64(3), runs[0].LinksFollowed)

		assert.Equal(t, int64(1), m.GetRunsStarted())
		assert.Equal(t, int64(1), m.GetRunsCompleted())
		assert.Equal(t, int64(7), m.GetPagesVisited())
	})

	t.Run("journals failed runs", func(t *testing.T) {
		t.Parallel()

		store, err := history.NewSQLStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, store.Close()) })
		m := metrics.NewMetrics()

		runner := &recordingRunner{err: errors.New("connect: refused")}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
			bridge.WithMetrics(m),
			bridge.WithHistory(store),
		)

		_, err = b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.Error(t, err)

		runs, err := store.Recent(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, history.StatusFailed, runs[0].Status)
		assert.Contains(t, runs[0].Error, "connect: refused")
		assert.Equal(t, int64(1), m.GetRunsFailed())
	})

	t.Run("times out while the background run keeps going", func(t *testing.T) {
		t.Parallel()

		store, err := history.NewSQLStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, store.Close()) })
		m := metrics.NewMetrics()

		runner := &recordingRunner{
			delay:  250 * time.Millisecond,
			result: &engine.Result{PagesVisited: 2},
		}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
			bridge.WithTimeout(25*time.Millisecond),
			bridge.WithMetrics(m),
			bridge.WithHistory(store),
		)

		result, err := b.RunCrawl(engine.RunArgs{StartURLs: []string{"https://example.com"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrRunTimeout)
		assert.Nil(t, result)
		assert.Equal(t, int64(1), m.GetRunsTimedOut())

		// The orphaned run is not cancelled: it finishes on its own and is
		// still journaled as completed.
		assert.Eventually(t, func() bool {
			runs, recentErr := store.Recent(context.Background(), 5)
			return recentErr == nil && len(runs) == 1 && runs[0].Status == history.StatusCompleted
		}, 2*time.Second, 20*time.Millisecond, "orphaned run was never finalized")
		assert.Equal(t, int64(1), m.GetRunsCompleted())
		assert.Equal(t, int64(0), m.GetRunsFailed())
	})

	t.Run("per-call timeout overrides the bridge default", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{
			delay:  250 * time.Millisecond,
			result: &engine.Result{},
		}
		b := newTestBridge(t, runner,
			bridge.WithTemplate(newTemplateClass(t)),
			bridge.WithGenerate(false),
		)

		_, err := b.RunCrawl(
			engine.RunArgs{StartURLs: []string{"https://example.com"}},
			bridge.WithRunTimeout(25*time.Millisecond),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, bridge.ErrRunTimeout)
	})
}
