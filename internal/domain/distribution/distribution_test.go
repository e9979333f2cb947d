package distribution_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
)

func on(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeSchedule_DefaultWindows(t *testing.T) {
	// Arrange
	anchor := on(time.July, 10)

	// Act
	schedule := distribution.ComputeSchedule(anchor, distribution.DefaultScheduleSettings())

	// Assert
	assert.Equal(t, on(time.July, 7), schedule.ScheduledDate)
	assert.Equal(t, on(time.July, 8), schedule.DistributionDeadline)
	assert.Equal(t, on(time.July, 9), schedule.SupervisorConfirmationDeadline)
	assert.Equal(t, on(time.July, 9), schedule.FarmerConfirmationDeadline)
	assert.NoError(t, schedule.Validate())
}

func TestComputeSchedule_CrossesMonthBoundary(t *testing.T) {
	schedule := distribution.ComputeSchedule(on(time.March, 2), distribution.ScheduleSettings{
		DaysBeforeTask:               5,
		SupervisorConfirmationWindow: 0,
		GracePeriod:                  0,
	})

	assert.Equal(t, on(time.February, 26), schedule.ScheduledDate)
	assert.Equal(t, schedule.ScheduledDate, schedule.DistributionDeadline)
	assert.NoError(t, schedule.Validate())
}

func TestComputeSchedule_DeadlinesNeverPrecedeScheduledDate(t *testing.T) {
	for days := 0; days <= 10; days++ {
		for window := 0; window <= 5; window++ {
			schedule := distribution.ComputeSchedule(on(time.August, 15), distribution.ScheduleSettings{
				DaysBeforeTask:               days,
				SupervisorConfirmationWindow: window,
				FarmerConfirmationWindow:     window,
				GracePeriod:                  window,
			})
			require.NoError(t, schedule.Validate())
			assert.False(t, schedule.FarmerConfirmationDeadline.Before(schedule.DistributionDeadline))
		}
	}
}

func TestAggregateDemand_SumsPerCultivationAndMaterial(t *testing.T) {
	plotA, plotB, urea := uuid.New(), uuid.New(), uuid.New()

	demands := distribution.AggregateDemand([]distribution.DemandLine{
		{PlotCultivationID: plotA, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(10), Area: decimal.RequireFromString("1.5")},
		{PlotCultivationID: plotB, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(10), Area: decimal.NewFromInt(2)},
		{PlotCultivationID: plotA, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(4), Area: decimal.RequireFromString("1.5")},
		{PlotCultivationID: plotB, MaterialID: urea, QuantityPerHectare: decimal.NewFromInt(99), Area: decimal.Zero},
	})

	require.Len(t, demands, 2)
	assert.Equal(t, plotA, demands[0].PlotCultivationID)
	assert.True(t, decimal.NewFromInt(21).Equal(demands[0].Quantity))
	assert.True(t, decimal.NewFromInt(20).Equal(demands[1].Quantity))
}

func newDistribution(t *testing.T) *distribution.MaterialDistribution {
	t.Helper()
	d, err := distribution.NewMaterialDistribution(distribution.NewParams{
		PlotCultivationID: uuid.New(),
		MaterialID:        uuid.New(),
		Quantity:          decimal.NewFromInt(20),
		Packages:          decimal.NewFromInt(4),
		Schedule:          distribution.ComputeSchedule(on(time.July, 10), distribution.DefaultScheduleSettings()),
		CreatedAt:         on(time.July, 1),
	})
	require.NoError(t, err)
	return d
}

func TestNewMaterialDistribution_IsPendingBulk(t *testing.T) {
	d := newDistribution(t)

	assert.Equal(t, distribution.StatusPending, d.Status())
	assert.True(t, d.IsBulk())
	assert.True(t, d.IsActive())
	assert.Equal(t, on(time.July, 7), d.ScheduledDate())
}

func TestMaterialDistribution_ConfirmThenDeliver(t *testing.T) {
	d := newDistribution(t)

	require.NoError(t, d.Confirm(on(time.July, 6)))
	require.NoError(t, d.MarkDelivered(on(time.July, 7)))

	assert.Equal(t, distribution.StatusDelivered, d.Status())
	require.NotNil(t, d.DeliveredAt())
	assert.False(t, d.IsOverdue(on(time.July, 20)))
}

func TestMaterialDistribution_RejectFreesSlot(t *testing.T) {
	d := newDistribution(t)

	require.NoError(t, d.Reject("wrong material", on(time.July, 6)))

	assert.False(t, d.IsActive())
	assert.Equal(t, "wrong material", d.RejectionReason())
}

func TestMaterialDistribution_InvalidTransitions(t *testing.T) {
	d := newDistribution(t)
	require.NoError(t, d.MarkDelivered(on(time.July, 7)))

	err := d.Confirm(on(time.July, 8))
	var transition *shared.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "DELIVERED", transition.From)

	assert.Error(t, d.Reject("late", on(time.July, 8)))
}

func TestMaterialDistribution_RejectRequiresReason(t *testing.T) {
	d := newDistribution(t)

	var validation *shared.ValidationError
	assert.ErrorAs(t, d.Reject("", on(time.July, 6)), &validation)
	assert.Equal(t, distribution.StatusPending, d.Status())
}

func TestMaterialDistribution_IsOverdue(t *testing.T) {
	d := newDistribution(t)

	assert.False(t, d.IsOverdue(on(time.July, 8)))
	assert.True(t, d.IsOverdue(on(time.July, 9)))
}
