package plan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/plan"
)

func day(m time.Month, d int) *time.Time {
	t := time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func buildSnapshot() (*plan.Snapshot, []uuid.UUID) {
	planID := uuid.New()
	sowing := plan.Stage{ID: uuid.New(), PlanID: planID, Name: "Sowing", SequenceOrder: 2}
	prep := plan.Stage{ID: uuid.New(), PlanID: planID, Name: "Land preparation", SequenceOrder: 1}

	plough := plan.Task{ID: uuid.New(), StageID: prep.ID, Name: "Plough", SequenceOrder: 1, ScheduledEndDate: day(7, 10)}
	harrow := plan.Task{ID: uuid.New(), StageID: prep.ID, Name: "Harrow", SequenceOrder: 2, ScheduledEndDate: day(7, 12)}
	seed := plan.Task{ID: uuid.New(), StageID: sowing.ID, Name: "Broadcast seed", SequenceOrder: 1, ScheduledEndDate: day(7, 20)}

	urea, seeds := uuid.New(), uuid.New()
	materials := []plan.TaskMaterial{
		{ID: uuid.New(), TaskID: plough.ID, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(10)},
		{ID: uuid.New(), TaskID: seed.ID, MaterialID: seeds, QuantityPerHectare: decimal.NewFromInt(120)},
		{ID: uuid.New(), TaskID: seed.ID, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(5)},
	}

	snapshot := plan.NewSnapshot(
		plan.Plan{ID: planID, Status: plan.StatusApproved},
		plan.Group{ID: uuid.New()},
		[]plan.Stage{sowing, prep},
		[]plan.Task{seed, harrow, plough},
		materials,
	)
	return snapshot, []uuid.UUID{plough.ID, harrow.ID, seed.ID}
}

func TestSnapshot_TasksInSequence_OrdersByStageThenTask(t *testing.T) {
	// Arrange
	snapshot, expected := buildSnapshot()

	// Act
	ids := snapshot.TaskIDs()

	// Assert
	assert.Equal(t, expected, ids)
	refs := snapshot.TasksInSequence()
	require.Len(t, refs, 3)
	assert.Equal(t, "Land preparation", refs[0].Stage.Name)
	assert.Equal(t, "Sowing", refs[2].Stage.Name)
}

func TestSnapshot_MaterialIDs_AreDistinct(t *testing.T) {
	snapshot, _ := buildSnapshot()

	assert.Len(t, snapshot.MaterialIDs(), 2)
}

func TestSnapshot_EarliestScheduledEndDate(t *testing.T) {
	snapshot, _ := buildSnapshot()

	earliest, ok := snapshot.EarliestScheduledEndDate()

	require.True(t, ok)
	assert.Equal(t, *day(7, 10), earliest)
}

func TestSnapshot_EarliestScheduledEndDate_NoDates(t *testing.T) {
	stage := plan.Stage{ID: uuid.New(), SequenceOrder: 1}
	snapshot := plan.NewSnapshot(plan.Plan{ID: uuid.New()}, plan.Group{}, []plan.Stage{stage},
		[]plan.Task{{ID: uuid.New(), StageID: stage.ID, SequenceOrder: 1}}, nil)

	_, ok := snapshot.EarliestScheduledEndDate()

	assert.False(t, ok)
	assert.True(t, snapshot.HasTasks())
}

func TestSnapshot_TasksOfUnknownStageAreIgnored(t *testing.T) {
	snapshot := plan.NewSnapshot(plan.Plan{ID: uuid.New()}, plan.Group{}, nil,
		[]plan.Task{{ID: uuid.New(), StageID: uuid.New(), SequenceOrder: 1}}, nil)

	assert.False(t, snapshot.HasTasks())
	assert.Empty(t, snapshot.TaskIDs())
}

func TestGroup_HasCurrentSeason(t *testing.T) {
	season := uuid.New()
	nilSeason := uuid.Nil

	assert.True(t, plan.Group{CurrentSeasonID: &season}.HasCurrentSeason())
	assert.False(t, plan.Group{}.HasCurrentSeason())
	assert.False(t, plan.Group{CurrentSeasonID: &nilSeason}.HasCurrentSeason())
}
