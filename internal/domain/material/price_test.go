package material_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/material"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func fertilizerHistory(materialID uuid.UUID) []material.Price {
	return []material.Price{
		{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(100), ValidFrom: date(2024, 1, 1), ValidTo: datePtr(2024, 6, 1)},
		{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(120), ValidFrom: date(2024, 6, 2)},
	}
}

func TestPriceHistory_ResolveAt_PicksRowCoveringDate(t *testing.T) {
	// Arrange
	materialID := uuid.New()
	history := material.NewPriceHistory(materialID, fertilizerHistory(materialID))

	// Act
	price, err := history.ResolveAt(date(2024, 7, 1))

	// Assert
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(price.PricePerMaterial))
	assert.True(t, price.IsOpenEnded())
}

func TestPriceHistory_ResolveAt_ValidToIsInclusive(t *testing.T) {
	materialID := uuid.New()
	history := material.NewPriceHistory(materialID, fertilizerHistory(materialID))

	price, err := history.ResolveAt(time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(price.PricePerMaterial))
}

func TestPriceHistory_ResolveAt_BeforeFirstRowIsUnavailable(t *testing.T) {
	materialID := uuid.New()
	history := material.NewPriceHistory(materialID, fertilizerHistory(materialID))

	_, err := history.ResolveAt(date(2023, 12, 31))

	require.Error(t, err)
	assert.True(t, errors.Is(err, material.ErrPriceUnavailable))
	var unavailable *material.PriceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, materialID, unavailable.MaterialID)
}

func TestPriceHistory_ResolveAt_LatestValidFromWins(t *testing.T) {
	// Arrange: malformed history where two rows overlap on 2024-03-01
	materialID := uuid.New()
	history := material.NewPriceHistory(materialID, []material.Price{
		{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(50), ValidFrom: date(2024, 1, 1)},
		{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(70), ValidFrom: date(2024, 2, 1)},
	})

	// Act
	price, err := history.ResolveAt(date(2024, 3, 1))

	// Assert
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(price.PricePerMaterial))
	assert.Error(t, history.Validate())
}

func TestPriceHistory_Validate_AcceptsAdjacentIntervals(t *testing.T) {
	materialID := uuid.New()
	history := material.NewPriceHistory(materialID, fertilizerHistory(materialID))

	assert.NoError(t, history.Validate())
	assert.Equal(t, 2, history.Len())
}

func TestPriceHistory_Validate_RowsSharingTheEndDayOverlap(t *testing.T) {
	// Arrange: the first row covers all of June 1st, the second starts at noon that day
	materialID := uuid.New()
	first := material.Price{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(100),
		ValidFrom: date(2024, 1, 1), ValidTo: datePtr(2024, 6, 1)}
	second := material.Price{ID: uuid.New(), MaterialID: materialID, PricePerMaterial: decimal.NewFromInt(120),
		ValidFrom: date(2024, 6, 1).Add(12 * time.Hour)}
	history := material.NewPriceHistory(materialID, []material.Price{first, second})
	afternoon := date(2024, 6, 1).Add(13 * time.Hour)

	// Act
	err := history.Validate()

	// Assert
	require.True(t, first.Covers(afternoon))
	require.True(t, second.Covers(afternoon))
	var overlap *material.OverlappingPriceError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, first.ID, overlap.First)
	assert.Equal(t, second.ID, overlap.Second)
}

func TestPriceBook_Validate(t *testing.T) {
	known := uuid.New()
	book := material.NewPriceBook(fertilizerHistory(known))

	assert.NoError(t, book.Validate(known))
	assert.NoError(t, book.Validate(uuid.New()))
}

func TestPriceBook_ResolveAt_UnknownMaterial(t *testing.T) {
	known := uuid.New()
	book := material.NewPriceBook(fertilizerHistory(known))

	_, err := book.ResolveAt(uuid.New(), date(2024, 7, 1))
	assert.ErrorIs(t, err, material.ErrPriceUnavailable)

	price, err := book.ResolveAt(known, date(2024, 3, 15))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(price.PricePerMaterial))
}
