package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
	"github.com/riceops/production-planning/test/helpers"
)

// distributionWorld has two Urea tasks (5/ha and 3/ha) on one 2 ha cultivation, seeded to sqlite
func distributionWorld(t *testing.T) (*helpers.PlanWorld, *helpers.TestRepositories) {
	t.Helper()
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "5", false, "100000")
	w.AddTask("Fertilizing", "Basal dressing", sowingDay, helpers.Requirement{Material: urea, PerHa: "5"})
	w.AddTask("Fertilizing", "Top dressing", shared.AddDays(sowingDay, 20), helpers.Requirement{Material: urea, PerHa: "3"})
	w.AddCultivation("2", true)
	w.Settings["distribution.days_before_task"] = "4"
	w.Commit()

	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))
	return w, repos
}

func runScheduling(t *testing.T, w *helpers.PlanWorld, repos *helpers.TestRepositories) *commands.DistributionReport {
	t.Helper()
	loader := planning.NewActivationLoader(repos.Plans, repos.Cultivations)
	h := commands.NewScheduleDistributionsHandler(loader, repos.Distributions, repos.Materials, repos.Settings,
		distribution.DefaultScheduleSettings(), w.Clock)
	response, err := h.Handle(context.Background(), &commands.ScheduleDistributionsCommand{PlanID: w.PlanID})
	require.NoError(t, err)
	report, ok := response.(*commands.DistributionReport)
	require.True(t, ok)
	return report
}

func cultivationIDs(t *testing.T, w *helpers.PlanWorld, repos *helpers.TestRepositories) []uuid.UUID {
	t.Helper()
	snapshot, err := repos.Plans.FindSnapshot(context.Background(), w.PlanID)
	require.NoError(t, err)
	found, err := repos.Cultivations.FindByPlotsAndSeason(context.Background(), snapshot.Group.PlotIDs, w.SeasonID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(found))
	for _, c := range found {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestDistributionRepository_SchedulingRoundTrip(t *testing.T) {
	// Arrange
	w, repos := distributionWorld(t)

	// Act
	report := runScheduling(t, w, repos)

	// Assert
	require.True(t, report.Succeeded(), report.Error)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 4, report.Settings.DaysBeforeTask)

	stored, err := repos.Distributions.FindByPlotCultivations(context.Background(), cultivationIDs(t, w, repos))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, d("16").Equal(stored[0].Quantity()))
	assert.True(t, d("4").Equal(stored[0].Packages()))
	assert.Equal(t, distribution.StatusPending, stored[0].Status())
	assert.Nil(t, stored[0].RelatedTaskID())
	assert.False(t, stored[0].ScheduledDate().After(stored[0].DistributionDeadline()))
}

func TestDistributionRepository_SecondRunSkipsActiveSlots(t *testing.T) {
	w, repos := distributionWorld(t)
	runScheduling(t, w, repos)

	report := runScheduling(t, w, repos)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.SkippedExisting)
	keys, err := repos.Distributions.FindActiveKeys(context.Background(), cultivationIDs(t, w, repos))
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestDistributionRepository_PartialIndexRejectsSecondLiveSlot(t *testing.T) {
	// Arrange
	w, repos := distributionWorld(t)
	runScheduling(t, w, repos)
	ctx := context.Background()
	stored, err := repos.Distributions.FindByPlotCultivations(ctx, cultivationIDs(t, w, repos))
	require.NoError(t, err)
	existing := stored[0]

	duplicate, err := distribution.NewMaterialDistribution(distribution.NewParams{
		PlotCultivationID: existing.PlotCultivationID(),
		MaterialID:        existing.MaterialID(),
		Quantity:          d("1"),
		Packages:          d("1"),
		Schedule:          distribution.Schedule{ScheduledDate: existing.ScheduledDate()},
		CreatedAt:         w.Clock.Now(),
	})
	require.NoError(t, err)

	// Act
	err = repos.Distributions.CreateBatch(ctx, []*distribution.MaterialDistribution{duplicate})

	// Assert
	assert.Error(t, err)
}

func TestDistributionRepository_RejectionFreesSlot(t *testing.T) {
	w, repos := distributionWorld(t)
	runScheduling(t, w, repos)
	ctx := context.Background()
	stored, err := repos.Distributions.FindByPlotCultivations(ctx, cultivationIDs(t, w, repos))
	require.NoError(t, err)

	require.NoError(t, stored[0].Reject("sacks damaged", w.Clock.Now()))
	require.NoError(t, repos.Distributions.Update(ctx, stored[0]))
	report := runScheduling(t, w, repos)

	assert.Equal(t, 1, report.Created)
	reloaded, err := repos.Distributions.FindByID(ctx, stored[0].ID())
	require.NoError(t, err)
	assert.Equal(t, distribution.StatusRejected, reloaded.Status())
	assert.Equal(t, "sacks damaged", reloaded.RejectionReason())
	assert.NotNil(t, reloaded.RejectedAt())
}

func TestDistributionRepository_FindByIDUnknown(t *testing.T) {
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))

	_, err := repos.Distributions.FindByID(context.Background(), uuid.New())

	assert.True(t, shared.IsNotFound(err))
}
