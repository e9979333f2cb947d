package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/application/planning/commands"
)

// NewRetryCommand creates the dead-letter retry command
func NewRetryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Replay activation runs that failed unexpectedly",
		Long: `Replay dead-lettered expansion and distribution runs whose next attempt is due.
Runs that keep failing back off until the attempt budget is spent.

Meant to be run from cron:
  */5 * * * * planengine retry --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = a.cfg.Planning.Retry.BatchSize
			}
			return runRetry(ctx, a, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to replay (default: planning.retry.batch_size)")
	return cmd
}

func runRetry(ctx context.Context, a *app, limit int, out io.Writer) error {
	response, err := a.mediator.Send(ctx, &commands.RetryFailedActivationsCommand{Limit: limit})
	if err != nil {
		return fmt.Errorf("retry sweep failed: %w", err)
	}
	report, ok := response.(*commands.RetryReport)
	if !ok {
		return fmt.Errorf("unexpected response type %T", response)
	}

	if report.Due == 0 {
		fmt.Fprintln(out, "Nothing to retry")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "PLAN\tENGINE\tSTATUS\tATTEMPTS\tERROR")
	for _, r := range report.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.PlanID, r.Engine, r.Status, r.Attempts, r.Error)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d due: %d resolved, %d rescheduled, %d abandoned\n",
		report.Due, report.Resolved, report.Rescheduled, report.Abandoned)
	return nil
}
