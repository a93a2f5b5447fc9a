package engine_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/engine"
	"github.com/jonesrussell/spinneret/internal/logger"
	"github.com/jonesrussell/spinneret/internal/rules"
)

// pageSink records handler invocations by handler name.
type pageSink struct {
	mu    sync.Mutex
	pages map[string][]*agent.Page
	err   error
}

func newPageSink() *pageSink {
	return &pageSink{pages: make(map[string][]*agent.Page)}
}

func (s *pageSink) handler(name string) agent.Handler {
	return func(_ context.Context, page *agent.Page) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pages[name] = append(s.pages[name], page)
		return s.err
	}
}

func (s *pageSink) urls(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, len(s.pages[name]))
	for _, page := range s.pages[name] {
		urls = append(urls, page.URL)
	}
	sort.Strings(urls)
	return urls
}

func (s *pageSink) ruleNames(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.pages[name]))
	for _, page := range s.pages[name] {
		names = append(names, page.Rule)
	}
	return names
}

// newTestSite serves a small site: the root links to two sections, the
// articles section links one hop deeper.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/": `<html><body>
			<a href="/articles/1">first</a>
			<a href="/about">about</a>
			<a href="#top">top</a>
			<a href="mailto:news@example.com">mail</a>
		</body></html>`,
		"/articles/1": `<html><body><h1>one</h1><a href="/articles/2">second</a></body></html>`,
		"/articles/2": `<html><body><h1>two</h1></body></html>`,
		"/about":      `<html><body><p>about</p></body></html>`,
	}

	mux := http.NewServeMux()
	for path, body := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(body))
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newArticleClass builds a rule-capable class with one article rule and a
// page-level handler, both landing in sink.
func newArticleClass(t *testing.T, ruleSpec rules.RuleSpec, sink *pageSink) *agent.Class {
	t.Helper()

	ruleList, err := rules.Build(nil,
		[]rules.ExtractorSpec{{"allow": []string{`/articles/`}}},
		[]rules.RuleSpec{ruleSpec},
		false,
	)
	require.NoError(t, err)

	class, err := agent.NewClass(agent.ClassParams{
		Name:        "news",
		RuleCapable: true,
		Rules:       ruleList,
		Handlers: map[string]agent.Handler{
			"article": sink.handler("article"),
			"page":    sink.handler("page"),
		},
	})
	require.NoError(t, err)
	return class
}

func testSettings() agent.Settings {
	return agent.Settings{
		"respect_robots_txt": false,
		"rate_limit":         "1ms",
		"parallelism":        4,
		"request_timeout":    "5s",
	}
}

func newTestRunner() *engine.CollyRunner {
	return engine.NewCollyRunner(logger.NewNoOp(), engine.WithDefaultSettings(testSettings()))
}

func TestCollyRunnerRun(t *testing.T) {
	t.Run("dispatches matched links to the rule callback", func(t *testing.T) {
		server := newTestSite(t)
		sink := newPageSink()
		class := newArticleClass(t, rules.RuleSpec{"callback": "article", "follow": true}, sink)

		res, err := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL + "/"},
		})
		require.NoError(t, err)

		assert.Equal(t,
			[]string{server.URL + "/articles/1", server.URL + "/articles/2"},
			sink.urls("article"),
		)
		assert.Equal(t, []string{server.URL + "/"}, sink.urls("page"))
		assert.Equal(t, []string{"article", "article"}, sink.ruleNames("article"))
		assert.Equal(t, []string{""}, sink.ruleNames("page"))

		assert.Equal(t, "news", res.Agent)
		assert.Equal(t, int64(3), res.PagesVisited)
		assert.Equal(t, int64(2), res.LinksMatched)
		assert.Equal(t, int64(2), res.LinksFollowed)
		assert.Equal(t, int64(0), res.Failures)
		assert.False(t, res.Failed())
	})

	t.Run("follow disabled suppresses extraction on routed pages", func(t *testing.T) {
		server := newTestSite(t)
		sink := newPageSink()
		class := newArticleClass(t, rules.RuleSpec{
			"callback": "article",
			"follow":   false,
			"tag":      "story",
		}, sink)

		res, err := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL + "/"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{server.URL + "/articles/1"}, sink.urls("article"))
		assert.Equal(t, []string{"story"}, sink.ruleNames("article"))
		assert.Equal(t, int64(2), res.PagesVisited)
		assert.Equal(t, int64(1), res.LinksMatched)
		assert.Equal(t, int64(1), res.LinksFollowed)
	})

	t.Run("per-run settings override class settings", func(t *testing.T) {
		server := newTestSite(t)
		sink := newPageSink()
		class := newArticleClass(t, rules.RuleSpec{"callback": "article", "follow": true}, sink)

		res, err := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL + "/"},
			Settings:  agent.Settings{"max_depth": 1},
		})
		require.NoError(t, err)

		assert.Empty(t, sink.urls("article"))
		assert.Equal(t, int64(1), res.PagesVisited)
		assert.Equal(t, int64(1), res.LinksMatched)
		assert.Equal(t, int64(0), res.LinksFollowed)
	})

	t.Run("rejects unknown rule callbacks before crawling", func(t *testing.T) {
		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
		}))
		t.Cleanup(server.Close)

		ruleList, err := rules.Build(nil,
			[]rules.ExtractorSpec{{}},
			[]rules.RuleSpec{{"callback": "missing"}},
			false,
		)
		require.NoError(t, err)
		class, err := agent.NewClass(agent.ClassParams{
			Name:        "news",
			RuleCapable: true,
			Rules:       ruleList,
		})
		require.NoError(t, err)

		_, runErr := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL},
		})
		require.Error(t, runErr)
		assert.ErrorIs(t, runErr, engine.ErrUnknownCallback)
		assert.Equal(t, int64(0), requests.Load())
	})

	t.Run("requires a class and start URLs", func(t *testing.T) {
		runner := newTestRunner()

		_, err := runner.Run(context.Background(), nil, engine.RunArgs{
			StartURLs: []string{"https://example.com"},
		})
		assert.ErrorIs(t, err, engine.ErrNilClass)

		sink := newPageSink()
		class := newArticleClass(t, rules.RuleSpec{"callback": "article"}, sink)
		_, err = runner.Run(context.Background(), class, engine.RunArgs{})
		assert.ErrorIs(t, err, engine.ErrNoStartURLs)
	})

	t.Run("reports a failed run when nothing is visited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		sink := newPageSink()
		class := newArticleClass(t, rules.RuleSpec{"callback": "article", "follow": true}, sink)

		res, err := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrRunFailed)
		require.NotNil(t, res)
		assert.Equal(t, int64(0), res.PagesVisited)
		assert.Equal(t, int64(1), res.Failures)
		assert.NotEmpty(t, res.FirstError)
	})

	t.Run("handler errors count as failures without stopping the run", func(t *testing.T) {
		server := newTestSite(t)
		sink := newPageSink()
		sink.err = errors.New("handler rejected page")
		class := newArticleClass(t, rules.RuleSpec{"callback": "article", "follow": true}, sink)

		res, err := newTestRunner().Run(context.Background(), class, engine.RunArgs{
			StartURLs: []string{server.URL + "/"},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(3), res.PagesVisited)
		assert.Equal(t, int64(3), res.Failures)
		assert.True(t, res.Failed())
		assert.Equal(t, "handler rejected page", res.FirstError)
	})
}
