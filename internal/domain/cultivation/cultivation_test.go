package cultivation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/cultivation"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestSelectEligible_KeepsMostRecentPerPlot(t *testing.T) {
	// Arrange
	plotA, plotB := uuid.New(), uuid.New()
	stale := cultivation.PlotCultivation{ID: uuid.New(), PlotID: plotA, Area: decimal.NewFromInt(1), CreatedAt: base}
	fresh := cultivation.PlotCultivation{ID: uuid.New(), PlotID: plotA, Area: decimal.NewFromInt(1), CreatedAt: base.Add(time.Hour)}
	other := cultivation.PlotCultivation{ID: uuid.New(), PlotID: plotB, Area: decimal.NewFromInt(2), CreatedAt: base.Add(-time.Hour)}

	// Act
	eligible := cultivation.SelectEligible([]cultivation.PlotCultivation{stale, other, fresh})

	// Assert
	require.Len(t, eligible, 2)
	assert.Equal(t, other.ID, eligible[0].ID)
	assert.Equal(t, fresh.ID, eligible[1].ID)
}

func TestSelectEligible_Empty(t *testing.T) {
	assert.Empty(t, cultivation.SelectEligible(nil))
}

func TestVersionIndex_ActiveForPicksHighestActiveOrder(t *testing.T) {
	cultivationID := uuid.New()
	idx := cultivation.NewVersionIndex([]cultivation.Version{
		{ID: uuid.New(), PlotCultivationID: cultivationID, VersionOrder: 1, IsActive: true},
		{ID: uuid.New(), PlotCultivationID: cultivationID, VersionOrder: 3, IsActive: false},
		{ID: uuid.New(), PlotCultivationID: cultivationID, VersionOrder: 2, IsActive: true},
	})

	active, ok := idx.ActiveFor(cultivationID)

	require.True(t, ok)
	assert.Equal(t, 2, active.VersionOrder)
}

func TestVersionIndex_NoActiveVersion(t *testing.T) {
	cultivationID := uuid.New()
	idx := cultivation.NewVersionIndex([]cultivation.Version{
		{ID: uuid.New(), PlotCultivationID: cultivationID, VersionOrder: 1, IsActive: false},
	})

	_, ok := idx.ActiveFor(cultivationID)
	assert.False(t, ok)

	_, ok = idx.ActiveFor(uuid.New())
	assert.False(t, ok)
}

func newTask(t *testing.T) *cultivation.CultivationTask {
	t.Helper()
	task, err := cultivation.NewCultivationTask(cultivation.NewTaskParams{
		PlanTaskID:        uuid.New(),
		PlotCultivationID: uuid.New(),
		Name:              "Basal fertilizer",
		ExecutionOrder:    1,
		ScheduledDate:     base,
		CreatedAt:         base,
	})
	require.NoError(t, err)
	return task
}

func TestNewCultivationTask_StartsApprovedWithoutVersion(t *testing.T) {
	task := newTask(t)

	assert.Equal(t, cultivation.TaskStatusApproved, task.Status())
	assert.False(t, task.HasVersion())
	assert.Nil(t, task.CultivationVersionID())
	assert.True(t, task.ActualMaterialCost().IsZero())
}

func TestNewCultivationTask_RequiresPlanTask(t *testing.T) {
	_, err := cultivation.NewCultivationTask(cultivation.NewTaskParams{PlotCultivationID: uuid.New(), Name: "x"})
	assert.Error(t, err)
}

func TestCultivationTask_Lifecycle(t *testing.T) {
	task := newTask(t)

	require.NoError(t, task.Start(base))
	assert.Equal(t, cultivation.TaskStatusInProgress, task.Status())
	require.NotNil(t, task.ActualStartDate())

	err := task.Start(base)
	var transition *cultivation.ErrInvalidTaskTransition
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, cultivation.TaskStatusInProgress, transition.From)

	require.NoError(t, task.Complete(base.Add(48*time.Hour), decimal.NewFromInt(500), decimal.NewFromInt(80)))
	assert.Equal(t, cultivation.TaskStatusCompleted, task.Status())
	assert.True(t, decimal.NewFromInt(500).Equal(task.ActualMaterialCost()))
	assert.Error(t, task.Cancel())
}

func TestCultivationTask_AddMaterialSumsEstimatedCost(t *testing.T) {
	task := newTask(t)

	task.AddMaterial(cultivation.TaskMaterial{MaterialID: uuid.New(), TotalCost: decimal.NewFromInt(200000)})
	task.AddMaterial(cultivation.TaskMaterial{MaterialID: uuid.New(), TotalCost: decimal.NewFromInt(1500)})

	require.Len(t, task.Materials(), 2)
	assert.Equal(t, task.ID(), task.Materials()[0].CultivationTaskID)
	assert.NotEqual(t, uuid.Nil, task.Materials()[0].ID)
	assert.True(t, decimal.NewFromInt(201500).Equal(task.EstimatedMaterialCost()))
}
