package events

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// ActivationResult collects what both engines did for one approval
type ActivationResult struct {
	Event        activation.PlanApprovedEvent
	Expansion    *commands.ExpansionReport
	Distribution *commands.DistributionReport
	DeadLettered []activation.Engine
}

// ActivationDispatcher reacts to plan approvals by running the expansion
// engine and the distribution scheduler side by side.
type ActivationDispatcher struct {
	mediator common.Mediator
	failures activation.FailureRepository
	policy   activation.BackoffPolicy
	clock    shared.Clock
}

// NewActivationDispatcher creates a new ActivationDispatcher
func NewActivationDispatcher(
	mediator common.Mediator,
	failures activation.FailureRepository,
	policy activation.BackoffPolicy,
	clock shared.Clock,
) *ActivationDispatcher {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ActivationDispatcher{
		mediator: mediator,
		failures: failures,
		policy:   policy,
		clock:    clock,
	}
}

// HandlePlanApproved runs both engines for the approved plan.
// Engine failures are dead-lettered, never returned; the error is non-nil
// only when a failure could not be recorded.
func (d *ActivationDispatcher) HandlePlanApproved(ctx context.Context, event activation.PlanApprovedEvent) (*ActivationResult, error) {
	logger := common.LoggerFromContext(ctx)
	logger.Log("INFO", "Plan approved, activating", map[string]interface{}{
		"plan_id":     event.PlanID.String(),
		"approved_at": event.ApprovedAt,
	})

	result := &ActivationResult{Event: event}
	var (
		expansionErr    error
		distributionErr error
	)

	// Neither run may cancel the other, so the group carries no shared context.
	var g errgroup.Group
	g.Go(func() error {
		response, err := d.mediator.Send(ctx, &commands.ExpandPlanCommand{PlanID: event.PlanID})
		if err != nil {
			expansionErr = err
			return nil
		}
		report, ok := response.(*commands.ExpansionReport)
		if !ok {
			expansionErr = fmt.Errorf("unexpected expansion response %T", response)
			return nil
		}
		result.Expansion = report
		return nil
	})
	g.Go(func() error {
		response, err := d.mediator.Send(ctx, &commands.ScheduleDistributionsCommand{PlanID: event.PlanID})
		if err != nil {
			distributionErr = err
			return nil
		}
		report, ok := response.(*commands.DistributionReport)
		if !ok {
			distributionErr = fmt.Errorf("unexpected distribution response %T", response)
			return nil
		}
		result.Distribution = report
		return nil
	})
	_ = g.Wait()

	var recordErrs []error
	if msg, warnings, failed := failure(expansionErr, outcomeOf(result.Expansion)); failed {
		if err := d.deadLetter(ctx, event, activation.EngineExpansion, msg, warnings); err != nil {
			recordErrs = append(recordErrs, err)
		} else {
			result.DeadLettered = append(result.DeadLettered, activation.EngineExpansion)
		}
	}
	if msg, warnings, failed := failure(distributionErr, outcomeOf(result.Distribution)); failed {
		if err := d.deadLetter(ctx, event, activation.EngineDistribution, msg, warnings); err != nil {
			recordErrs = append(recordErrs, err)
		} else {
			result.DeadLettered = append(result.DeadLettered, activation.EngineDistribution)
		}
	}

	if len(recordErrs) > 0 {
		return result, fmt.Errorf("failed to dead-letter activation of plan %s: %v", event.PlanID, recordErrs)
	}
	return result, nil
}

// ActivationHandler receives each dispatch outcome of Listen
type ActivationHandler func(result *ActivationResult, err error)

// Listen handles events until the channel closes or ctx is done.
// onResult, when set, is called after every event from the listening goroutine.
func (d *ActivationDispatcher) Listen(ctx context.Context, events <-chan activation.PlanApprovedEvent, onResult ActivationHandler) {
	logger := common.LoggerFromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			result, err := d.HandlePlanApproved(ctx, event)
			if err != nil {
				logger.Log("ERROR", "Activation dispatch failed", map[string]interface{}{
					"plan_id": event.PlanID.String(),
					"error":   err.Error(),
				})
			}
			if onResult != nil {
				onResult(result, err)
			}
		}
	}
}

func (d *ActivationDispatcher) deadLetter(ctx context.Context, event activation.PlanApprovedEvent, engine activation.Engine, msg string, warnings []string) error {
	record := activation.NewFailedActivation(event.PlanID, engine, msg, warnings, d.clock.Now(), d.policy)
	if err := d.failures.Record(ctx, record); err != nil {
		return fmt.Errorf("%s: %w", engine, err)
	}

	common.LoggerFromContext(ctx).Log("WARNING", "Activation dead-lettered", map[string]interface{}{
		"plan_id":         event.PlanID.String(),
		"engine":          string(engine),
		"error":           msg,
		"next_attempt_at": record.NextAttemptAt(),
	})
	return nil
}

func outcomeOf(report interface{}) *planning.Outcome {
	switch r := report.(type) {
	case *commands.ExpansionReport:
		if r != nil {
			return &r.Outcome
		}
	case *commands.DistributionReport:
		if r != nil {
			return &r.Outcome
		}
	}
	return nil
}

// failure tells whether an engine run needs a dead-letter record
func failure(sendErr error, outcome *planning.Outcome) (string, []string, bool) {
	if sendErr != nil {
		return sendErr.Error(), nil, true
	}
	if outcome != nil && outcome.Failed {
		return outcome.Error, outcome.Warnings, true
	}
	return "", nil, false
}
