package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planengine",
		Short: "Production plan activation engine",
		Long: `planengine turns approved production plans into per-plot cultivation work.

Activating a plan expands its task templates into cultivation tasks with
priced material requirements, and schedules one bulk distribution per
material for every cultivated plot.

Examples:
  planengine migrate
  planengine plan activate --plan 6f1c...
  planengine plan cost --plan 6f1c... --by variety
  planengine price --material 0b7e... --as-of 2024-07-01
  planengine distribution reject --id 91aa... --reason "stock out"
  planengine retry --limit 20
  planengine worker`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, /etc/riceops)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewPriceCommand())
	rootCmd.AddCommand(NewDistributionCommand())
	rootCmd.AddCommand(NewRetryCommand())
	rootCmd.AddCommand(NewWorkerCommand())
	rootCmd.AddCommand(NewSettingsCommand())
	rootCmd.AddCommand(NewMigrateCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
