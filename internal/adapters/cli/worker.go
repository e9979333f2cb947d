package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/adapters/metrics"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/infrastructure/pidfile"
)

// NewWorkerCommand creates the long-running retry worker command
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Sweep due dead-lettered activations until stopped",
		Long: `Run retry sweeps every worker.sweep_interval until SIGINT or SIGTERM.
A pid file keeps one worker per host.

Example:
  planengine worker --config /etc/riceops/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			pf := pidfile.New(a.cfg.Worker.PIDFile)
			if err := pf.Acquire(); err != nil {
				return err
			}
			defer pf.Release()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			runWorker(ctx, a, a.cfg.Worker.SweepInterval)
			return nil
		},
	}
}

// runWorker sweeps once immediately and then on every tick until ctx is done
func runWorker(ctx context.Context, a *app, interval time.Duration) {
	logger := common.LoggerFromContext(ctx)
	logger.Log("INFO", "Retry worker started", map[string]interface{}{
		"interval": interval.String(),
		"batch":    a.cfg.Planning.Retry.BatchSize,
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweep(ctx, a)
		select {
		case <-ctx.Done():
			logger.Log("INFO", "Retry worker stopped", nil)
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, a *app) {
	logger := common.LoggerFromContext(ctx)
	response, err := a.mediator.Send(ctx, &commands.RetryFailedActivationsCommand{Limit: a.cfg.Planning.Retry.BatchSize})
	if err != nil {
		if ctx.Err() == nil {
			logger.Log("ERROR", "Retry sweep failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	if report, ok := response.(*commands.RetryReport); ok && report.Due > 0 {
		logger.Log("INFO", "Retry sweep finished", map[string]interface{}{
			"due":         report.Due,
			"resolved":    report.Resolved,
			"rescheduled": report.Rescheduled,
			"abandoned":   report.Abandoned,
		})
	}

	// Scrapers read the textfile while the worker keeps running
	if a.cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
			logger.Log("WARNING", "Failed to write metrics", map[string]interface{}{"error": err.Error()})
		}
	}
}
