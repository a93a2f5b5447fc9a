// Package history implements the history command that displays recent crawl
// runs from the run journal.
package history

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/spinneret/cmd/common"
	runhistory "github.com/jonesrussell/spinneret/internal/history"
)

const (
	defaultLimit  = 20
	shortRunIDLen = 8
	errorColWidth = 40
	timeRounding  = 10 * time.Millisecond
)

// ErrHistoryDisabled is returned when the run journal is disabled in the
// configuration.
var ErrHistoryDisabled = errors.New("history is disabled in the configuration")

// Command creates the history command.
func Command() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent crawl runs",
		Long: `Shows the most recent crawl runs from the run journal, newest first.
Runs that outlived their blocking wait appear here with their real outcome.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}

			if !deps.Config.History.Enabled {
				return ErrHistoryDisabled
			}

			store, err := runhistory.NewSQLStore(deps.Config.History.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					deps.Logger.Warn("Failed to close history store", "error", closeErr)
				}
			}()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			if len(runs) == 0 {
				deps.Logger.Info("No runs recorded yet")
				return nil
			}

			renderRuns(runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultLimit, "maximum number of runs to show")

	return cmd
}

// renderRuns displays the journaled runs in a table format.
func renderRuns(runs []runhistory.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Run", "Agent", "Status", "Started", "Duration", "Pages", "Followed", "Failures", "Error",
	})

	for i := range runs {
		run := &runs[i]
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Agent,
			run.Status,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			duration(run),
			run.PagesVisited,
			run.LinksFollowed,
			run.Failures,
			truncate(run.Error, errorColWidth),
		})
	}

	t.Render()
}

// shortID abbreviates a run id for display.
func shortID(id string) string {
	if len(id) <= shortRunIDLen {
		return id
	}
	return id[:shortRunIDLen]
}

// duration formats the run duration, or "-" while the run has not finished.
func duration(run *runhistory.Run) string {
	if !run.CompletedAt.Valid {
		return "-"
	}
	return run.CompletedAt.Time.Sub(run.StartedAt).Round(timeRounding).String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
