package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/application/planning/commands"
)

// NewDistributionCommand creates the distribution command with subcommands
func NewDistributionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Track scheduled material distributions",
		Long: `List and update scheduled material distributions.

Rejecting a distribution frees its slot so the next activation reschedules it.

Examples:
  planengine distribution list --cultivation <plot-cultivation-id>
  planengine distribution confirm --id <distribution-id>
  planengine distribution reject --id <distribution-id> --reason "wrong fertilizer"
  planengine distribution deliver --id <distribution-id>`,
	}

	cmd.AddCommand(newDistributionListCommand())
	cmd.AddCommand(newDistributionStatusCommand(commands.ActionConfirm, "Confirm a pending distribution"))
	cmd.AddCommand(newDistributionStatusCommand(commands.ActionReject, "Reject a distribution and free its slot"))
	cmd.AddCommand(newDistributionStatusCommand(commands.ActionDeliver, "Mark a distribution as delivered"))

	return cmd
}

func newDistributionListCommand() *cobra.Command {
	var cultivationFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List distributions of plot cultivations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cultivationFlags) == 0 {
				return fmt.Errorf("--cultivation is required")
			}
			ids := make([]uuid.UUID, 0, len(cultivationFlags))
			for _, raw := range cultivationFlags {
				id, err := parseID("cultivation", raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			distributions, err := a.distros.FindByPlotCultivations(ctx, ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(distributions) == 0 {
				fmt.Fprintln(out, "No distributions found")
				return nil
			}

			now := a.clock.Now()
			w := newTable(out)
			fmt.Fprintln(w, "ID\tMATERIAL\tQUANTITY\tPACKAGES\tSTATUS\tSCHEDULED\tDEADLINE\tOVERDUE")
			for _, d := range distributions {
				overdue := ""
				if d.IsOverdue(now) {
					overdue = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					d.ID(), d.MaterialID(), d.Quantity().String(), d.Packages().String(), d.Status(),
					formatDate(d.ScheduledDate()), formatDate(d.DistributionDeadline()), overdue)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&cultivationFlags, "cultivation", nil, "Plot cultivation ID (repeatable)")
	return cmd
}

func newDistributionStatusCommand(action commands.DistributionAction, short string) *cobra.Command {
	var (
		idFlag     string
		reasonFlag string
	)

	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", idFlag)
			if err != nil {
				return err
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(ctx, &commands.UpdateDistributionStatusCommand{
				DistributionID: id,
				Action:         action,
				Reason:         reasonFlag,
			})
			if err != nil {
				return fmt.Errorf("failed to %s distribution: %w", action, err)
			}
			result, ok := response.(*commands.UpdateDistributionStatusResponse)
			if !ok {
				return fmt.Errorf("unexpected response type %T", response)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Distribution %s is now %s\n", result.DistributionID, result.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&idFlag, "id", "", "Distribution ID (required)")
	cmd.MarkFlagRequired("id")
	if action == commands.ActionReject {
		cmd.Flags().StringVar(&reasonFlag, "reason", "", "Why the distribution is rejected (required)")
		cmd.MarkFlagRequired("reason")
	}
	return cmd
}
