package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/test/helpers"
)

func TestCultivationRepository_FindByPlotsAndSeason(t *testing.T) {
	// Arrange
	w := helpers.NewPlanWorld(activationDay)
	a := w.AddCultivation("1.0", true)
	b := w.AddCultivation("0.5", false)
	w.Commit()
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))

	// Act
	found, err := repos.Cultivations.FindByPlotsAndSeason(context.Background(), []uuid.UUID{a.PlotID, b.PlotID}, w.SeasonID)

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 2)
	byID := map[uuid.UUID]bool{}
	for _, c := range found {
		byID[c.ID] = true
		assert.Equal(t, "IR64", c.VarietyName)
		assert.Equal(t, w.SeasonID, c.SeasonID)
	}
	assert.True(t, byID[a.ID])
	assert.True(t, byID[b.ID])
}

func TestCultivationRepository_FiltersOtherSeasons(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	a := w.AddCultivation("1.0", true)
	w.Commit()
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))

	found, err := repos.Cultivations.FindByPlotsAndSeason(context.Background(), []uuid.UUID{a.PlotID}, uuid.New())

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCultivationRepository_FindVersions(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	versioned := w.AddCultivation("1.0", true)
	bare := w.AddCultivation("1.0", false)
	w.Commit()
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	require.NoError(t, w.Seed(context.Background(), repos.DB))

	versions, err := repos.Cultivations.FindVersions(context.Background(), []uuid.UUID{versioned.ID, bare.ID})

	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, versioned.ID, versions[0].PlotCultivationID)
	assert.True(t, versions[0].IsActive)
}
