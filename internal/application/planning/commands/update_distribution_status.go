package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// DistributionAction is a status change requested on a distribution
type DistributionAction string

const (
	ActionConfirm DistributionAction = "confirm"
	ActionReject  DistributionAction = "reject"
	ActionDeliver DistributionAction = "deliver"
)

// UpdateDistributionStatusCommand moves a distribution through its lifecycle
type UpdateDistributionStatusCommand struct {
	DistributionID uuid.UUID
	Action         DistributionAction
	Reason         string
}

// UpdateDistributionStatusResponse carries the new status
type UpdateDistributionStatusResponse struct {
	DistributionID uuid.UUID
	Status         distribution.Status
}

// UpdateDistributionStatusHandler handles the UpdateDistributionStatus command
type UpdateDistributionStatusHandler struct {
	distributions distribution.Repository
	clock         shared.Clock
}

// NewUpdateDistributionStatusHandler creates a new UpdateDistributionStatusHandler
func NewUpdateDistributionStatusHandler(distributions distribution.Repository, clock shared.Clock) *UpdateDistributionStatusHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &UpdateDistributionStatusHandler{distributions: distributions, clock: clock}
}

// Handle executes the UpdateDistributionStatus command
func (h *UpdateDistributionStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateDistributionStatusCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateDistributionStatusCommand")
	}

	d, err := h.distributions.FindByID(ctx, cmd.DistributionID)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	switch cmd.Action {
	case ActionConfirm:
		err = d.Confirm(now)
	case ActionReject:
		err = d.Reject(cmd.Reason, now)
	case ActionDeliver:
		err = d.MarkDelivered(now)
	default:
		return nil, shared.NewValidationError("action", fmt.Sprintf("unknown action %q", cmd.Action))
	}
	if err != nil {
		return nil, err
	}

	if err := h.distributions.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update distribution: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "Distribution status changed", map[string]interface{}{
		"distribution_id": d.ID().String(),
		"action":          string(cmd.Action),
		"status":          string(d.Status()),
	})

	return &UpdateDistributionStatusResponse{DistributionID: d.ID(), Status: d.Status()}, nil
}
