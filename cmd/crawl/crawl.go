// Package crawl implements the crawl command for running agent templates
// through the execution bridge. Agents run strictly one after another: each
// run blocks until it completes or its wait times out before the next starts.
package crawl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/spinneret/cmd/common"
	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/bridge"
	"github.com/jonesrussell/spinneret/internal/engine"
	"github.com/jonesrussell/spinneret/internal/history"
	"github.com/jonesrussell/spinneret/internal/metrics"
	"github.com/jonesrussell/spinneret/internal/templates"
)

// Options selects the agents and run parameters of one crawl sequence.
type Options struct {
	// AgentNames are the templates to run, in order.
	AgentNames []string
	// StartURLs overrides every template's start_urls when non-empty.
	StartURLs []string
	// Timeout overrides the configured blocking-wait bound when positive.
	Timeout time.Duration
	// Generate specializes a fresh class per run; off runs the template
	// class directly.
	Generate bool
	// AgentsFile overrides the configured template registry path when set.
	AgentsFile string
}

// Sequence runs agent templates one after another over a single bridge
// stack: the shared execution loop, one coordinator, shared metrics and one
// run journal.
type Sequence struct {
	deps        cmdcommon.CommandDeps
	opts        Options
	manager     *templates.Manager
	coordinator *engine.Coordinator
	metrics     *metrics.Metrics
	store       history.Store
}

// NewSequence creates a sequence from loaded dependencies and options.
func NewSequence(deps cmdcommon.CommandDeps, opts Options) (*Sequence, error) {
	if len(opts.AgentNames) == 0 {
		return nil, ErrNoAgents
	}

	registryPath := opts.AgentsFile
	if registryPath == "" {
		registryPath = deps.Config.AgentsFile
	}
	manager, err := templates.NewManagerFromFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("load agent templates: %w", err)
	}

	runner := engine.NewCollyRunner(deps.Logger,
		engine.WithDefaultSettings(agent.Settings(deps.Config.Engine.Settings())))
	coordinator, err := engine.NewCoordinator(runner, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create run coordinator: %w", err)
	}

	seq := &Sequence{
		deps:        deps,
		opts:        opts,
		manager:     manager,
		coordinator: coordinator,
		metrics:     metrics.NewMetrics(),
	}

	if deps.Config.History.Enabled {
		store, storeErr := history.NewSQLStore(deps.Config.History.Path)
		if storeErr != nil {
			return nil, fmt.Errorf("open history store: %w", storeErr)
		}
		seq.store = store
	}

	return seq, nil
}

// Close releases the sequence's run journal. The execution loop itself is
// process-scoped and stays up.
func (s *Sequence) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Metrics exposes the counters shared by every run of the sequence.
func (s *Sequence) Metrics() *metrics.Metrics {
	return s.metrics
}

// Run executes every selected agent in order. A failing agent does not stop
// the ones after it; the failures are reported together once the sequence
// finishes. The context is only consulted between runs; a run already
// submitted blocks until it completes or its wait times out.
func (s *Sequence) Run(ctx context.Context) error {
	var failed []string
	for _, name := range s.opts.AgentNames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runAgent(name); err != nil {
			failed = append(failed, name)
			s.deps.Logger.Error("Agent run failed", "agent", name, "error", err)
		}
	}

	s.deps.Logger.Info("Crawl sequence finished",
		"agents", len(s.opts.AgentNames),
		"runs_completed", s.metrics.GetRunsCompleted(),
		"runs_failed", s.metrics.GetRunsFailed(),
		"runs_timed_out", s.metrics.GetRunsTimedOut(),
		"pages_visited", s.metrics.GetPagesVisited(),
	)

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrRunsFailed, strings.Join(failed, ", "))
	}
	return nil
}

// runAgent materializes one template and blocks on its run.
func (s *Sequence) runAgent(name string) error {
	def, err := s.manager.FindByName(name)
	if err != nil {
		return err
	}

	class, err := def.Class(defaultHandlers(s.deps.Logger))
	if err != nil {
		return err
	}
	factory, err := def.Factory()
	if err != nil {
		return err
	}

	opts := []bridge.Option{
		bridge.WithTemplate(class),
		bridge.WithFactory(factory),
		bridge.WithGenerate(s.opts.Generate),
		bridge.WithTimeout(s.deps.Config.Bridge.Timeout),
		bridge.WithLogger(s.deps.Logger),
		bridge.WithMetrics(s.metrics),
	}
	if s.store != nil {
		opts = append(opts, bridge.WithHistory(s.store))
	}
	b, err := bridge.New(s.coordinator, opts...)
	if err != nil {
		return err
	}

	urls := s.opts.StartURLs
	if len(urls) == 0 {
		urls = def.StartURLs
	}

	var runOpts []bridge.RunOption
	if s.opts.Timeout > 0 {
		runOpts = append(runOpts, bridge.WithRunTimeout(s.opts.Timeout))
	}

	result, err := b.RunCrawl(engine.RunArgs{StartURLs: urls}, runOpts...)
	if err != nil {
		return err
	}

	s.deps.Logger.Info("Crawl run finished",
		"agent", result.Agent,
		"run_id", result.RunID,
		"pages_visited", result.PagesVisited,
		"links_followed", result.LinksFollowed,
		"failures", result.Failures,
		"duration", result.Duration(),
	)
	return nil
}

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var (
		urls       []string
		timeout    time.Duration
		noGenerate bool
		agentsFile string
	)

	cmd := &cobra.Command{
		Use:   "crawl [agent]...",
		Short: "Run agent templates sequentially",
		Long: `This command runs one or more agent templates, one blocking run each, in
the order given. Each run specializes a fresh agent class from its template
unless --no-generate is set.

The --url flag overrides the start URLs of every template in the sequence.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			seq, err := NewSequence(deps, Options{
				AgentNames: args,
				StartURLs:  urls,
				Timeout:    timeout,
				Generate:   deps.Config.Bridge.Generate && !noGenerate,
				AgentsFile: agentsFile,
			})
			if err != nil {
				return fmt.Errorf("failed to construct crawl sequence: %w", err)
			}
			defer func() {
				if closeErr := seq.Close(); closeErr != nil {
					deps.Logger.Warn("Failed to close history store", "error", closeErr)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return seq.Run(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&urls, "url", nil,
		"start URL overriding the template start_urls (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"blocking wait bound per run (0 uses the configured bridge timeout)")
	cmd.Flags().BoolVar(&noGenerate, "no-generate", false,
		"run the template class directly instead of specializing a fresh class per run")
	cmd.Flags().StringVar(&agentsFile, "agents", "",
		"agents file path (overrides the configured registry)")

	return cmd
}
