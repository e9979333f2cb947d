package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/application/planning/queries"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/shared"
	"github.com/riceops/production-planning/test/helpers"
)

var activationDay = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetPlanCostAnalysis_AggregatesPersistedLines(t *testing.T) {
	// Arrange
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "5", false, "100000")
	w.AddTask("Fertilizing", "Top dressing", time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC),
		helpers.Requirement{Material: urea, PerHa: "10"})
	w.AddCultivation("1.0", true)
	w.AddCultivation("0.5", true)
	w.Commit()
	_, err := w.ExpandHandler().Handle(context.Background(), &commands.ExpandPlanCommand{PlanID: w.PlanID})
	require.NoError(t, err)

	// Act
	response, err := queries.NewGetPlanCostAnalysisHandler(w.Tasks).
		Handle(context.Background(), &queries.GetPlanCostAnalysisQuery{PlanID: w.PlanID})

	// Assert
	require.NoError(t, err)
	report := response.(*queries.GetPlanCostAnalysisResponse).Report
	assert.True(t, d("300000").Equal(report.Overview.GrandTotal))
	assert.True(t, d("1.5").Equal(report.Overview.TotalArea))
	assert.True(t, d("200000").Equal(report.Overview.CostPerHectare))
	require.Len(t, report.Materials, 1)
	assert.Equal(t, "Urea", report.Materials[0].MaterialName)
	assert.Len(t, report.Plots, 2)
}

func TestGetPlanCostAnalysis_EmptyBeforeExpansion(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	w.Commit()

	response, err := queries.NewGetPlanCostAnalysisHandler(w.Tasks).
		Handle(context.Background(), &queries.GetPlanCostAnalysisQuery{PlanID: w.PlanID})

	require.NoError(t, err)
	report := response.(*queries.GetPlanCostAnalysisResponse).Report
	assert.True(t, report.Overview.GrandTotal.IsZero())
	assert.Empty(t, report.Tasks)
}

func TestGetMaterialPrice_ResolvesRowValidOnDate(t *testing.T) {
	// Arrange
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "50", false, "")
	firstEnd := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w.Materials.AddPrice(material.Price{ID: uuid.New(), MaterialID: urea.ID, PricePerMaterial: d("100"),
		ValidFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ValidTo: &firstEnd})
	w.Materials.AddPrice(material.Price{ID: uuid.New(), MaterialID: urea.ID, PricePerMaterial: d("120"),
		ValidFrom: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)})
	h := queries.NewGetMaterialPriceHandler(w.Materials, w.Clock)

	// Act
	response, err := h.Handle(context.Background(), &queries.GetMaterialPriceQuery{MaterialID: urea.ID})

	// Assert
	require.NoError(t, err)
	got := response.(*queries.GetMaterialPriceResponse)
	require.True(t, got.Found)
	assert.True(t, d("120").Equal(got.Price.PricePerMaterial))
	assert.Equal(t, activationDay, got.AsOf)
}

func TestGetMaterialPrice_NoRowCoversDate(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "50", false, "100")
	before := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	h := queries.NewGetMaterialPriceHandler(w.Materials, w.Clock)

	response, err := h.Handle(context.Background(), &queries.GetMaterialPriceQuery{MaterialID: urea.ID, AsOf: &before})

	require.NoError(t, err)
	got := response.(*queries.GetMaterialPriceResponse)
	assert.False(t, got.Found)
	assert.Nil(t, got.Price)
}

func TestGetMaterialPrice_UnknownMaterial(t *testing.T) {
	w := helpers.NewPlanWorld(activationDay)
	h := queries.NewGetMaterialPriceHandler(w.Materials, w.Clock)

	_, err := h.Handle(context.Background(), &queries.GetMaterialPriceQuery{MaterialID: uuid.New()})

	assert.True(t, shared.IsNotFound(err))
}
