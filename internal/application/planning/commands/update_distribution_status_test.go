package commands_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
)

func TestUpdateDistributionStatus_FollowsLifecycle(t *testing.T) {
	// Arrange
	w, _ := sharedMaterialWorld()
	require.True(t, distribute(t, w.DistributeHandler(), w.PlanID).Succeeded())
	id := w.Distributions.All()[0].ID()
	h := commands.NewUpdateDistributionStatusHandler(w.Distributions, w.Clock)

	// Act
	confirmed, err := h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: id, Action: commands.ActionConfirm})
	require.NoError(t, err)
	delivered, err := h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: id, Action: commands.ActionDeliver})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, distribution.StatusConfirmed, confirmed.(*commands.UpdateDistributionStatusResponse).Status)
	assert.Equal(t, distribution.StatusDelivered, delivered.(*commands.UpdateDistributionStatusResponse).Status)
	assert.NotNil(t, w.Distributions.All()[0].DeliveredAt())
}

func TestUpdateDistributionStatus_RejectsInvalidTransitions(t *testing.T) {
	w, _ := sharedMaterialWorld()
	require.True(t, distribute(t, w.DistributeHandler(), w.PlanID).Succeeded())
	id := w.Distributions.All()[0].ID()
	h := commands.NewUpdateDistributionStatusHandler(w.Distributions, w.Clock)

	_, err := h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: id, Action: commands.ActionReject})
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation, "rejection needs a reason")

	_, err = h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: id, Action: commands.ActionDeliver})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: id, Action: commands.ActionConfirm})
	var transition *shared.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestUpdateDistributionStatus_UnknownDistribution(t *testing.T) {
	w, _ := sharedMaterialWorld()
	h := commands.NewUpdateDistributionStatusHandler(w.Distributions, w.Clock)

	_, err := h.Handle(context.Background(), &commands.UpdateDistributionStatusCommand{DistributionID: uuid.New(), Action: commands.ActionConfirm})

	assert.True(t, shared.IsNotFound(err))
}
