package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/domain/distribution"
)

// scheduleSettingKeys are the system settings the distribution scheduler reads
var scheduleSettingKeys = []string{
	distribution.SettingDaysBeforeTask,
	distribution.SettingSupervisorConfirmationWindow,
	distribution.SettingFarmerConfirmationWindow,
	distribution.SettingGracePeriod,
}

// NewSettingsCommand creates the settings command with subcommands
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write system settings",
		Long: `Read and write the system settings consulted during activation.

Values stored here override the planning.distribution defaults of the config file.
A value that is not a non-negative integer is ignored and the default applies.

Examples:
  planengine settings get
  planengine settings set distribution.days_before_task 5`,
	}

	cmd.AddCommand(newSettingsGetCommand())
	cmd.AddCommand(newSettingsSetCommand())

	return cmd
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key...]",
		Short: "Show system settings (default: the distribution windows)",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args
			if len(keys) == 0 {
				keys = scheduleSettingKeys
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "KEY\tVALUE")
			for _, key := range keys {
				value, found, err := a.cache.Lookup(ctx, key)
				if err != nil {
					return err
				}
				if !found {
					value = "(default)"
				}
				fmt.Fprintf(w, "%s\t%s\n", key, value)
			}
			return w.Flush()
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or replace a system setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settings.Set(ctx, args[0], args[1], description); err != nil {
				return err
			}
			a.cache.Invalidate()

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "What the setting controls")
	return cmd
}
