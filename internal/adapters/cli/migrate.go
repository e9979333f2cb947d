package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/infrastructure/database"
)

// NewMigrateCommand creates the schema migration command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the planning tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", a.cfg.Database.Type)
			return nil
		},
	}
}
