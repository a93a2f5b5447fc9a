// Package agents provides the agents command implementation for inspecting
// and validating the agent template registry.
package agents

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/spinneret/internal/config"
)

// agentsFile overrides the configured registry path for all subcommands.
var agentsFile string

// Command creates the agents command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agent templates",
		Long:  `Inspect and validate the agent template registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&agentsFile, "agents", "",
		"agents file path (overrides the configured registry)")

	cmd.AddCommand(
		NewListCommand(),
		NewValidateCommand(),
	)

	return cmd
}

// registryPath resolves the agents file for a subcommand invocation.
func registryPath(cfg *config.Config) string {
	if agentsFile != "" {
		return agentsFile
	}
	return cfg.AgentsFile
}
