// Package cmd implements the command-line interface for spinneret.
// It provides the root command and subcommands for running runtime-specialized
// crawl agents.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/spinneret/cmd/agents"
	"github.com/jonesrussell/spinneret/cmd/crawl"
	cmdhistory "github.com/jonesrussell/spinneret/cmd/history"
	"github.com/jonesrussell/spinneret/cmd/schedule"
	"github.com/jonesrussell/spinneret/internal/config"
)

// version is the application version. Overridable at build time via
// -ldflags "-X github.com/jonesrussell/spinneret/cmd.version=...".
var version = "0.1.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the spinneret CLI.
	rootCmd = &cobra.Command{
		Use:   "spinneret",
		Short: "Run specialized crawl agents from templates",
		Long: `Spinneret specializes crawl agents from declarative templates at
runtime and executes them one at a time over a shared crawl loop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Parse flags early so --config and --debug reach Viper before any
	// command builds its dependencies
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := config.InitializeViper(config.InitOptions{
		ConfigFile: cfgFile,
		Debug:      Debug,
	}); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spinneret version %s\n", version)
		},
	})

	// Add subcommands
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(agents.Command())
	rootCmd.AddCommand(cmdhistory.Command())
	rootCmd.AddCommand(schedule.Command())
}
