package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/planning/events"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/test/helpers"
)

var (
	activationDay = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	sowingDay     = time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
)

func approvedWorld() *helpers.PlanWorld {
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "5", false, "100000")
	w.AddTask("Fertilizing", "Top dressing", sowingDay, helpers.Requirement{Material: urea, PerHa: "10"})
	w.AddCultivation("1.0", true)
	w.AddCultivation("0.5", true)
	w.Commit()
	return w
}

func newDispatcher(w *helpers.PlanWorld) *events.ActivationDispatcher {
	return events.NewActivationDispatcher(w.Mediator(), w.Failures, activation.DefaultBackoffPolicy(), w.Clock)
}

func TestActivationDispatcher_RunsBothEngines(t *testing.T) {
	// Arrange
	w := approvedWorld()
	event := activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay}

	// Act
	result, err := newDispatcher(w).HandlePlanApproved(context.Background(), event)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Expansion)
	require.NotNil(t, result.Distribution)
	assert.Equal(t, 2, result.Expansion.TasksCreated)
	assert.Equal(t, 2, result.Distribution.Created)
	assert.Empty(t, result.DeadLettered)
	assert.Empty(t, w.Failures.All())
}

func TestActivationDispatcher_DuplicateDeliveryCreatesNothingNew(t *testing.T) {
	w := approvedWorld()
	d := newDispatcher(w)
	event := activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay}
	_, err := d.HandlePlanApproved(context.Background(), event)
	require.NoError(t, err)

	result, err := d.HandlePlanApproved(context.Background(), event)

	require.NoError(t, err)
	assert.True(t, result.Expansion.Aborted)
	assert.Equal(t, 0, result.Distribution.Created)
	assert.Equal(t, 2, result.Distribution.SkippedExisting)
	assert.Len(t, w.Tasks.Tasks(), 2)
	assert.Len(t, w.Distributions.All(), 2)
}

func TestActivationDispatcher_DeadLettersFailedEngineOnly(t *testing.T) {
	// Arrange
	w := approvedWorld()
	w.Tasks.CreateErr = errors.New("disk full")

	// Act
	result, err := newDispatcher(w).HandlePlanApproved(context.Background(),
		activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Expansion.Failed)
	assert.True(t, result.Distribution.Succeeded())
	assert.Equal(t, []activation.Engine{activation.EngineExpansion}, result.DeadLettered)

	records := w.Failures.All()
	require.Len(t, records, 1)
	assert.Equal(t, activation.EngineExpansion, records[0].Engine())
	assert.Equal(t, activation.StatusPending, records[0].Status())
	assert.Contains(t, records[0].LastError(), "disk full")
	assert.Equal(t, activationDay.Add(time.Minute), records[0].NextAttemptAt())
}

func TestActivationDispatcher_ReturnsErrorWhenDeadLetterFails(t *testing.T) {
	w := approvedWorld()
	w.Tasks.CreateErr = errors.New("disk full")
	w.Failures.RecordErr = errors.New("dead-letter table missing")

	result, err := newDispatcher(w).HandlePlanApproved(context.Background(),
		activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dead-letter table missing")
	assert.Empty(t, result.DeadLettered)
}

func TestActivationDispatcher_AbortsAreNotDeadLettered(t *testing.T) {
	w := approvedWorld()
	w.NoSeason = true
	w.Commit()

	result, err := newDispatcher(w).HandlePlanApproved(context.Background(),
		activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay})

	require.NoError(t, err)
	assert.True(t, result.Expansion.Aborted)
	assert.True(t, result.Distribution.Aborted)
	assert.Empty(t, w.Failures.All())
}

func TestActivationDispatcher_ListenConsumesBusUntilClosed(t *testing.T) {
	// Arrange
	w := approvedWorld()
	bus := events.NewPlanEventBus(4)
	ch := bus.Subscribe()
	var results []*events.ActivationResult
	done := make(chan struct{})
	go func() {
		newDispatcher(w).Listen(context.Background(), ch, func(result *events.ActivationResult, err error) {
			assert.NoError(t, err)
			results = append(results, result)
		})
		close(done)
	}()

	// Act
	require.NoError(t, bus.Publish(context.Background(),
		activation.PlanApprovedEvent{PlanID: w.PlanID, ApprovedAt: activationDay}))
	bus.Unsubscribe(ch)

	// Assert
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after unsubscribe")
	}
	assert.Len(t, w.Tasks.Tasks(), 2)
	assert.Len(t, w.Distributions.All(), 2)
	require.Len(t, results, 1)
	assert.Equal(t, w.PlanID, results[0].Event.PlanID)
	assert.True(t, results[0].Expansion.Succeeded())
}
