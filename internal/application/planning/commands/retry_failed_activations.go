package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/riceops/production-planning/internal/adapters/metrics"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// DefaultRetryLimit caps one retry sweep when the command sets no limit
const DefaultRetryLimit = 50

// RetryFailedActivationsCommand replays dead-lettered engine runs that are due
type RetryFailedActivationsCommand struct {
	Limit int
}

// RetryResult is the outcome of replaying one dead-lettered run
type RetryResult struct {
	FailedActivationID uuid.UUID
	PlanID             uuid.UUID
	Engine             activation.Engine
	Status             activation.Status
	Attempts           int
	Error              string
}

// RetryReport summarizes one retry sweep
type RetryReport struct {
	Due         int
	Resolved    int
	Rescheduled int
	Abandoned   int
	Results     []RetryResult
}

// RetryFailedActivationsHandler replays failed runs through the mediator
type RetryFailedActivationsHandler struct {
	failures activation.FailureRepository
	mediator common.Mediator
	limiter  *rate.Limiter
	policy   activation.BackoffPolicy
	clock    shared.Clock
}

// NewRetryFailedActivationsHandler creates a new RetryFailedActivationsHandler.
// limiter spaces out replays; nil means unlimited.
func NewRetryFailedActivationsHandler(
	failures activation.FailureRepository,
	mediator common.Mediator,
	limiter *rate.Limiter,
	policy activation.BackoffPolicy,
	clock shared.Clock,
) *RetryFailedActivationsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &RetryFailedActivationsHandler{
		failures: failures,
		mediator: mediator,
		limiter:  limiter,
		policy:   policy,
		clock:    clock,
	}
}

// Handle executes the RetryFailedActivations command
func (h *RetryFailedActivationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RetryFailedActivationsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RetryFailedActivationsCommand")
	}
	limit := cmd.Limit
	if limit <= 0 {
		limit = DefaultRetryLimit
	}

	logger := common.LoggerFromContext(ctx)

	due, err := h.failures.FindDue(ctx, h.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load due activations: %w", err)
	}

	report := &RetryReport{Due: len(due)}
	for _, failed := range due {
		if err := h.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("retry sweep interrupted: %w", err)
		}

		runErr := h.replay(ctx, failed)
		now := h.clock.Now()
		if runErr == nil {
			failed.Resolve(now)
			report.Resolved++
		} else {
			failed.RecordRetryFailure(runErr.Error(), now, h.policy)
			if failed.Status() == activation.StatusAbandoned {
				report.Abandoned++
			} else {
				report.Rescheduled++
			}
		}

		if err := h.failures.Update(ctx, failed); err != nil {
			return report, fmt.Errorf("failed to update activation %s: %w", failed.ID(), err)
		}

		result := RetryResult{
			FailedActivationID: failed.ID(),
			PlanID:             failed.PlanID(),
			Engine:             failed.Engine(),
			Status:             failed.Status(),
			Attempts:           failed.Attempts(),
		}
		if runErr != nil {
			result.Error = runErr.Error()
		}
		report.Results = append(report.Results, result)

		metrics.RecordRetry(string(failed.Engine()), string(failed.Status()))
		logger.Log("INFO", "Activation retried", map[string]interface{}{
			"failed_activation_id": failed.ID().String(),
			"plan_id":              failed.PlanID().String(),
			"engine":               string(failed.Engine()),
			"status":               string(failed.Status()),
			"attempts":             failed.Attempts(),
		})
	}

	return report, nil
}

// replay re-sends the engine command; nil means the run no longer fails.
// An aborted run counts as handled: there is nothing left to do automatically.
func (h *RetryFailedActivationsHandler) replay(ctx context.Context, failed *activation.FailedActivation) error {
	var request common.Request
	switch failed.Engine() {
	case activation.EngineExpansion:
		request = &ExpandPlanCommand{PlanID: failed.PlanID()}
	case activation.EngineDistribution:
		request = &ScheduleDistributionsCommand{PlanID: failed.PlanID()}
	default:
		return fmt.Errorf("unknown engine %q", failed.Engine())
	}

	response, err := h.mediator.Send(ctx, request)
	if err != nil {
		return err
	}
	return OutcomeError(response)
}

// OutcomeError returns the failure carried by an engine report, or nil
func OutcomeError(response common.Response) error {
	var outcome *planning.Outcome
	switch r := response.(type) {
	case *ExpansionReport:
		outcome = &r.Outcome
	case *DistributionReport:
		outcome = &r.Outcome
	default:
		return fmt.Errorf("unexpected engine response %T", response)
	}
	if outcome.Failed {
		return errors.New(outcome.Error)
	}
	return nil
}
