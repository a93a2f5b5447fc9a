package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/logger"
)

// skipPrefixes are link forms never worth resolving.
var skipPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

// CollyRunner is the shipped Runner. Each Run builds one colly collector
// from the merged settings, wires the class rules and handlers into its
// callbacks and blocks until the crawl drains.
type CollyRunner struct {
	defaults agent.Settings
	logger   logger.Interface
}

// CollyOption configures a CollyRunner.
type CollyOption func(*CollyRunner)

// WithDefaultSettings sets runner-wide settings merged under every class's
// own settings. Class settings and per-run overrides win on conflict.
func WithDefaultSettings(defaults agent.Settings) CollyOption {
	return func(r *CollyRunner) {
		r.defaults = defaults
	}
}

// NewCollyRunner creates a colly-backed runner.
func NewCollyRunner(log logger.Interface, opts ...CollyOption) *CollyRunner {
	if log == nil {
		log = logger.NewNoOp()
	}
	r := &CollyRunner{logger: log.WithComponent("engine")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one crawl for the class. The merged settings are, from
// weakest to strongest: runner defaults, class settings, per-run overrides.
// Run returns a Result even when it returns an error, so callers can record
// partial counters.
func (r *CollyRunner) Run(ctx context.Context, class *agent.Class, args RunArgs) (*Result, error) {
	if class == nil {
		return nil, ErrNilClass
	}
	if len(args.StartURLs) == 0 {
		return nil, ErrNoStartURLs
	}

	merged := agent.MergeSettings(r.defaults, class.Settings(), false)
	merged = agent.MergeSettings(merged, args.Settings, false)
	cfg, err := DecodeSettings(merged)
	if err != nil {
		return nil, err
	}

	dispatch, err := newDispatcher(class, cfg.PageCallback)
	if err != nil {
		return nil, err
	}

	collector := r.buildCollector(ctx, cfg)
	if limitErr := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       cfg.RateLimit,
		RandomDelay: cfg.RandomDelay,
		Parallelism: cfg.Parallelism,
	}); limitErr != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", limitErr)
	}
	collector.SetRequestTimeout(cfg.RequestTimeout)

	state := newRunState(len(dispatch.rules))
	r.registerCallbacks(ctx, collector, dispatch, state)

	r.logger.Debug("Collector configured",
		"agent", class.Name(),
		"max_depth", cfg.MaxDepth,
		"rate_limit", cfg.RateLimit,
		"parallelism", cfg.Parallelism,
	)

	result := &Result{
		Agent:     class.Name(),
		StartedAt: time.Now(),
	}

	for _, startURL := range args.StartURLs {
		if visitErr := collector.Visit(startURL); visitErr != nil && !isAlreadyVisited(visitErr) {
			state.recordFailure(visitErr)
			r.logger.Warn("Failed to visit start URL", "url", startURL, "error", visitErr)
		}
	}

	collector.Wait()

	result.CompletedAt = time.Now()
	result.PagesVisited = state.pagesVisited.Load()
	result.LinksMatched = state.linksMatched.Load()
	result.LinksFollowed = state.linksFollowed.Load()
	result.Failures = state.failures.Load()
	result.FirstError = state.firstError()

	if result.PagesVisited == 0 && result.Failures > 0 {
		return result, fmt.Errorf("%w: %s", ErrRunFailed, result.FirstError)
	}
	return result, nil
}

// buildCollector assembles the collector options from the decoded settings.
func (r *CollyRunner) buildCollector(ctx context.Context, cfg Settings) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.MaxDepth(cfg.MaxDepth),
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	}

	if !cfg.RespectRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(cfg.MaxBodySize))
	}
	if cfg.AllowURLRevisit {
		opts = append(opts, colly.AllowURLRevisit())
	}
	if len(cfg.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(cfg.AllowedDomains...))
	}

	return colly.NewCollector(opts...)
}

// registerCallbacks wires the collector callbacks for one run.
func (r *CollyRunner) registerCallbacks(
	ctx context.Context, collector *colly.Collector, dispatch *dispatcher, state *runState,
) {
	collector.OnRequest(func(req *colly.Request) {
		select {
		case <-ctx.Done():
			req.Abort()
		default:
			r.logger.Debug("Visiting URL", "url", req.URL.String())
		}
	})

	collector.OnResponse(func(resp *colly.Response) {
		state.pagesVisited.Add(1)
		r.dispatchPage(ctx, resp, dispatch, state)
	})

	for attr, candidates := range dispatch.attrRules {
		selector := "a[" + attr + "]"
		collector.OnHTML(selector, func(e *colly.HTMLElement) {
			select {
			case <-ctx.Done():
				return
			default:
			}
			r.handleLink(e, attr, candidates, dispatch, state)
		})
	}

	collector.OnError(func(resp *colly.Response, visitErr error) {
		if isExpectedVisitError(visitErr) {
			return
		}
		state.recordFailure(visitErr)

		requestURL := ""
		status := 0
		if resp != nil {
			status = resp.StatusCode
			if resp.Request != nil {
				requestURL = resp.Request.URL.String()
			}
		}
		r.logger.Warn("Request failed", "url", requestURL, "status", status, "error", visitErr)
	})
}

// dispatchPage hands a fetched page to the handler its route selects.
// Handler errors count as failures but never stop the run.
func (r *CollyRunner) dispatchPage(
	ctx context.Context, resp *colly.Response, dispatch *dispatcher, state *runState,
) {
	pageURL := resp.Request.URL.String()
	handler, ruleName := dispatch.handlerFor(pageURL, state)
	if handler == nil {
		return
	}

	page := &agent.Page{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Depth:      resp.Request.Depth,
		Body:       resp.Body,
		Rule:       ruleName,
	}
	if resp.Headers != nil {
		page.Headers = *resp.Headers
	}

	if handlerErr := handler(ctx, page); handlerErr != nil {
		state.recordFailure(handlerErr)
		r.logger.Warn("Page handler failed",
			"url", pageURL,
			"rule", ruleName,
			"error", handlerErr,
		)
	}
}

// handleLink tests one extracted link against the candidate rules, in rule
// order. The first matching rule routes the link; matched links are visited
// when the rule carries a callback or has follow set.
func (r *CollyRunner) handleLink(
	e *colly.HTMLElement, attr string, candidates []int, dispatch *dispatcher, state *runState,
) {
	if dispatch.followSuppressed(e.Request.URL.String(), state) {
		return
	}

	link := e.Attr(attr)
	if link == "" || shouldSkipLink(link) {
		return
	}
	abs := e.Request.AbsoluteURL(link)
	if abs == "" {
		r.logger.Debug("Failed to make absolute URL", "url", link)
		return
	}
	absURL, err := url.Parse(abs)
	if err != nil {
		return
	}

	for _, index := range candidates {
		rule := &dispatch.rules[index]
		if !rule.Extractor.MatchURL(absURL) {
			continue
		}
		if !state.route(absURL.String(), index, rule.Extractor.Unique()) {
			return
		}
		state.linksMatched.Add(1)

		if !rule.Action.Follow && rule.Action.Callback == "" {
			return
		}
		if visitErr := e.Request.Visit(abs); visitErr != nil {
			if !isExpectedVisitError(visitErr) {
				r.logger.Debug("Failed to visit link", "url", abs, "error", visitErr)
			}
			return
		}
		state.linksFollowed.Add(1)
		return
	}
}

// shouldSkipLink reports whether a raw link value is a fragment or a
// non-HTTP scheme.
func shouldSkipLink(link string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(link, prefix) {
			return true
		}
	}
	return false
}

// isExpectedVisitError reports whether the error is ordinary crawl flow
// control rather than a failure.
func isExpectedVisitError(err error) bool {
	if err == nil {
		return true
	}
	if isAlreadyVisited(err) {
		return true
	}
	if errors.Is(err, colly.ErrMaxDepth) ||
		errors.Is(err, colly.ErrForbiddenDomain) ||
		errors.Is(err, colly.ErrRobotsTxtBlocked) ||
		errors.Is(err, colly.ErrNoURLFiltersMatch) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already visited") ||
		strings.Contains(msg, "max depth") ||
		strings.Contains(msg, "forbidden domain")
}

// isAlreadyVisited reports whether the error is the revisit guard.
func isAlreadyVisited(err error) bool {
	var alreadyVisited *colly.AlreadyVisitedError
	return errors.As(err, &alreadyVisited)
}
