// Package schedule implements the schedule command that runs crawl sequences
// on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/spinneret/cmd/common"
	"github.com/jonesrussell/spinneret/cmd/crawl"
)

// Command creates the schedule command.
func Command() *cobra.Command {
	var (
		cronExpr   string
		urls       []string
		timeout    time.Duration
		noGenerate bool
		agentsFile string
	)

	cmd := &cobra.Command{
		Use:   "schedule [agent]...",
		Short: "Run crawl sequences on a cron schedule",
		Long: `Runs the given agent templates as a sequence on a standard 5-field cron
schedule (minute hour day month weekday). Within each tick the agents run
one blocking run at a time, in order; a tick that is still running when the
next one fires is not overlapped, the new tick is skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			seq, err := crawl.NewSequence(deps, crawl.Options{
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

			return runScheduler(cmd.Context(), deps, seq, cronExpr)
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "",
		"cron expression, 5 fields: minute hour day month weekday (required)")
	cmd.Flags().StringSliceVar(&urls, "url", nil,
		"start URL overriding the template start_urls (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"blocking wait bound per run (0 uses the configured bridge timeout)")
	cmd.Flags().BoolVar(&noGenerate, "no-generate", false,
		"run the template class directly instead of specializing a fresh class per run")
	cmd.Flags().StringVar(&agentsFile, "agents", "",
		"agents file path (overrides the configured registry)")

	if err := cmd.MarkFlagRequired("cron"); err != nil {
		return nil
	}

	return cmd
}

// runScheduler fires the sequence on the cron schedule until interrupted.
func runScheduler(ctx context.Context, deps cmdcommon.CommandDeps, seq *crawl.Sequence, cronExpr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Standard 5-field cron parser: minute hour day month weekday
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", cronExpr, err)
	}

	scheduler := cron.New(
		cron.WithParser(parser),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		),
	)

	_, err = scheduler.AddFunc(cronExpr, func() {
		deps.Logger.Info("Cron tick, starting crawl sequence")
		if runErr := seq.Run(ctx); runErr != nil {
			deps.Logger.Error("Scheduled crawl sequence failed", "error", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	scheduler.Start()
	deps.Logger.Info("Scheduler started",
		"cron", cronExpr,
		"next_run", schedule.Next(time.Now()).Format("2006-01-02 15:04:05"),
	)

	<-ctx.Done()
	deps.Logger.Info("Shutdown signal received, stopping scheduler")

	// Wait for an in-flight tick to finish. The execution loop itself is
	// process-scoped and is not torn down.
	<-scheduler.Stop().Done()
	return nil
}
