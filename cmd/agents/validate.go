// Package agents provides the agents command implementation.
package agents

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/spinneret/cmd/common"
	"github.com/jonesrussell/spinneret/internal/templates"
)

// NewValidateCommand creates a new validate subcommand for agent templates.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the agent template registry",
		Long: `Validates every template in the registry by materializing it: the template
class is built, its factory is created, and one specialization is derived
exactly as the crawl command would before a run. Nothing is crawled.`,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to get dependencies: %w", err)
	}

	path := registryPath(deps.Config)
	defs, err := templates.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("registry %s: %w", path, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Derived Class", "Rules"})

	for i := range defs {
		def := &defs[i]

		class, classErr := def.Class(nil)
		if classErr != nil {
			return classErr
		}
		factory, factoryErr := def.Factory()
		if factoryErr != nil {
			return factoryErr
		}
		derived, constructErr := factory.Construct(class)
		if constructErr != nil {
			return fmt.Errorf("template %s: %w", def.Name, constructErr)
		}

		t.AppendRow(table.Row{def.Name, derived.Name(), len(derived.Rules())})
	}

	t.Render()
	deps.Logger.Info("All agent templates are valid", "count", len(defs), "file", path)
	return nil
}
