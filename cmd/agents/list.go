// Package agents implements the command-line interface for the agent template
// registry. This file contains the list command that displays all templates
// in a formatted table.
package agents

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/spinneret/cmd/common"
	"github.com/jonesrussell/spinneret/internal/logger"
	"github.com/jonesrussell/spinneret/internal/templates"
)

// TableRenderer handles the display of template definitions in a table format
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// RenderTable formats and displays the template definitions in a table format
func (r *TableRenderer) RenderTable(defs []templates.Definition) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Rule Capable", "Extractors", "Rules", "Start URLs"})

	for i := range defs {
		def := &defs[i]
		t.AppendRow(table.Row{
			def.Name,
			def.RuleCapable,
			len(def.Extractors),
			len(def.Rules),
			strings.Join(def.StartURLs, "\n"),
		})
	}

	t.Render()
	return nil
}

// NewListCommand creates a new list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all agent templates",
		Long:  `List all agent templates configured in the registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}

			manager, err := templates.NewManagerFromFile(registryPath(deps.Config))
			if err != nil {
				return fmt.Errorf("failed to load agent templates: %w", err)
			}

			defs := manager.All()
			if len(defs) == 0 {
				deps.Logger.Info("No agent templates configured")
				return nil
			}

			renderer := NewTableRenderer(deps.Logger)
			return renderer.RenderTable(defs)
		},
	}

	return cmd
}
