package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/plan"
	"github.com/riceops/production-planning/test/helpers"
)

var (
	activationDay = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	sowingDay     = time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seededWorld is one fertilizing stage with one 10/ha Urea task on a 1.0 ha and a 0.5 ha plot,
// stored in a fresh sqlite database
func seededWorld(t *testing.T) (*helpers.PlanWorld, *helpers.TestRepositories) {
	t.Helper()
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "5", false, "100000")
	w.AddTask("Fertilizing", "First top dressing", sowingDay, helpers.Requirement{Material: urea, PerHa: "10"})
	w.AddCultivation("1.0", true)
	w.AddCultivation("0.5", true)
	w.Commit()

	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))
	return w, repos
}

func TestPlanRepository_FindSnapshotLoadsFlatGraph(t *testing.T) {
	// Arrange
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "50", false, "100000")
	npk := w.AddMaterial("NPK", "25", true, "90000")
	w.AddTask("Land preparation", "Plough", sowingDay.AddDate(0, 0, -10))
	w.AddTask("Fertilizing", "Basal dressing", sowingDay,
		helpers.Requirement{Material: urea, PerHa: "100"},
		helpers.Requirement{Material: npk, PerHa: "50"})
	w.AddTask("Fertilizing", "Top dressing", sowingDay.AddDate(0, 0, 20), helpers.Requirement{Material: urea, PerHa: "75"})
	w.AddCultivation("1.2", true)
	w.Commit()

	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))

	// Act
	snapshot, err := repos.Plans.FindSnapshot(context.Background(), w.PlanID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, w.PlanID, snapshot.Plan.ID)
	assert.Equal(t, plan.StatusApproved, snapshot.Plan.Status)
	require.NotNil(t, snapshot.Group.CurrentSeasonID)
	assert.Equal(t, w.SeasonID, *snapshot.Group.CurrentSeasonID)
	assert.Len(t, snapshot.Group.PlotIDs, 1)

	stages := snapshot.StagesInOrder()
	require.Len(t, stages, 2)
	assert.Equal(t, "Land preparation", stages[0].Name)
	assert.Equal(t, "Fertilizing", stages[1].Name)

	fertilizing := snapshot.TasksOf(stages[1].ID)
	require.Len(t, fertilizing, 2)
	assert.Equal(t, "Basal dressing", fertilizing[0].Name)
	assert.Len(t, snapshot.MaterialsOf(fertilizing[0].ID), 2)
	assert.ElementsMatch(t, []uuid.UUID{urea.ID, npk.ID}, snapshot.MaterialIDs())
	assert.Len(t, snapshot.TaskIDs(), 3)
}

func TestPlanRepository_FindSnapshotUnknownPlan(t *testing.T) {
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))

	_, err := repos.Plans.FindSnapshot(context.Background(), uuid.New())

	var notFound *plan.ErrPlanNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestPlanRepository_FindSnapshotWithoutSeason(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	w.AddTask("Fertilizing", "Top dressing", sowingDay)
	w.NoSeason = true
	w.Commit()
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))

	snapshot, err := repos.Plans.FindSnapshot(context.Background(), w.PlanID)

	require.NoError(t, err)
	assert.Nil(t, snapshot.Group.CurrentSeasonID)
}
