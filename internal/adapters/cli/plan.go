package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/application/planning/events"
	"github.com/riceops/production-planning/internal/application/planning/queries"
	"github.com/riceops/production-planning/internal/domain/activation"
)

// NewPlanCommand creates the plan command with subcommands
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Activate production plans and inspect their costs",
		Long: `Activate approved production plans and inspect the resulting costs.

Examples:
  planengine plan activate --plan <plan-id>
  planengine plan expand --plan <plan-id>
  planengine plan distribute --plan <plan-id>
  planengine plan cost --plan <plan-id> --by material`,
	}

	cmd.AddCommand(newPlanActivateCommand())
	cmd.AddCommand(newPlanExpandCommand())
	cmd.AddCommand(newPlanDistributeCommand())
	cmd.AddCommand(newPlanCostCommand())

	return cmd
}

func newPlanActivateCommand() *cobra.Command {
	var planFlags []string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Run expansion and distribution scheduling for approved plans",
		Long: `Publish an approval event for each plan. Both engines run side by side;
a run that ends with an unexpected error is dead-lettered for 'planengine retry'.

Example:
  planengine plan activate --plan <plan-id> --plan <other-plan-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(planFlags) == 0 {
				return fmt.Errorf("--plan is required")
			}
			planIDs := make([]uuid.UUID, 0, len(planFlags))
			for _, raw := range planFlags {
				id, err := parseID("plan", raw)
				if err != nil {
					return err
				}
				planIDs = append(planIDs, id)
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return activatePlans(ctx, a, planIDs, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&planFlags, "plan", nil, "Plan ID (repeatable)")
	return cmd
}

// activatePlans feeds the plans through an event bus to the dispatcher and prints each result
func activatePlans(ctx context.Context, a *app, planIDs []uuid.UUID, out io.Writer) error {
	bus := events.NewPlanEventBus(len(planIDs))
	sub := bus.Subscribe()

	var dispatchErrs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.dispatcher.Listen(ctx, sub, func(result *events.ActivationResult, err error) {
			if err != nil {
				dispatchErrs = append(dispatchErrs, err)
			}
			if result != nil {
				printActivation(out, result)
			}
		})
	}()

	var publishErr error
	for _, id := range planIDs {
		event := activation.PlanApprovedEvent{PlanID: id, ApprovedAt: a.clock.Now()}
		if err := bus.Publish(ctx, event); err != nil {
			publishErr = fmt.Errorf("failed to publish approval of plan %s: %w", id, err)
			break
		}
	}
	bus.Unsubscribe(sub)
	<-done

	if publishErr != nil {
		dispatchErrs = append(dispatchErrs, publishErr)
	}
	return errors.Join(dispatchErrs...)
}

func printActivation(out io.Writer, result *events.ActivationResult) {
	fmt.Fprintf(out, "Plan %s\n", result.Event.PlanID)
	if result.Expansion != nil {
		printExpansion(out, result.Expansion)
	}
	if result.Distribution != nil {
		printDistribution(out, result.Distribution)
	}
	for _, engine := range result.DeadLettered {
		fmt.Fprintf(out, "  %s run queued for retry\n", engine)
	}
	fmt.Fprintln(out)
}

func newPlanExpandCommand() *cobra.Command {
	var planFlag string

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Generate cultivation tasks and material requirements for a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID("plan", planFlag)
			if err != nil {
				return err
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(ctx, &commands.ExpandPlanCommand{PlanID: planID})
			if err != nil {
				return fmt.Errorf("expansion failed: %w", err)
			}
			report, ok := response.(*commands.ExpansionReport)
			if !ok {
				return fmt.Errorf("unexpected response type %T", response)
			}

			printExpansion(cmd.OutOrStdout(), report)
			return commands.OutcomeError(report)
		},
	}

	cmd.Flags().StringVar(&planFlag, "plan", "", "Plan ID (required)")
	cmd.MarkFlagRequired("plan")
	return cmd
}

func newPlanDistributeCommand() *cobra.Command {
	var planFlag string

	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Schedule bulk material distributions for a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID("plan", planFlag)
			if err != nil {
				return err
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(ctx, &commands.ScheduleDistributionsCommand{PlanID: planID})
			if err != nil {
				return fmt.Errorf("distribution scheduling failed: %w", err)
			}
			report, ok := response.(*commands.DistributionReport)
			if !ok {
				return fmt.Errorf("unexpected response type %T", response)
			}

			printDistribution(cmd.OutOrStdout(), report)
			return commands.OutcomeError(report)
		},
	}

	cmd.Flags().StringVar(&planFlag, "plan", "", "Plan ID (required)")
	cmd.MarkFlagRequired("plan")
	return cmd
}

func newPlanCostCommand() *cobra.Command {
	var (
		planFlag string
		byFlag   string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show the cost analysis of an expanded plan",
		Long: `Show the cost analysis of an expanded plan.

Breakdowns: material, task, variety, plot.

Example:
  planengine plan cost --plan <plan-id> --by variety`,
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID("plan", planFlag)
			if err != nil {
				return err
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return showCost(ctx, a, planID, byFlag, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&planFlag, "plan", "", "Plan ID (required)")
	cmd.Flags().StringVar(&byFlag, "by", "material", "Breakdown: material, task, variety or plot")
	cmd.MarkFlagRequired("plan")
	return cmd
}

func showCost(ctx context.Context, a *app, planID uuid.UUID, by string, out io.Writer) error {
	response, err := a.mediator.Send(ctx, &queries.GetPlanCostAnalysisQuery{PlanID: planID})
	if err != nil {
		return fmt.Errorf("cost analysis failed: %w", err)
	}
	result, ok := response.(*queries.GetPlanCostAnalysisResponse)
	if !ok {
		return fmt.Errorf("unexpected response type %T", response)
	}

	if result.Report.Overview.ItemCount == 0 {
		fmt.Fprintf(out, "Plan %s has no material lines. Has it been expanded?\n", planID)
		return nil
	}

	fmt.Fprintf(out, "Cost analysis for plan %s\n\n", planID)
	printCostOverview(out, result.Report.Overview)
	fmt.Fprintln(out)
	return printCostBreakdown(out, result.Report, by)
}
