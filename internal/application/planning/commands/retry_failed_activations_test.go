package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/test/helpers"
)

func runRetry(t *testing.T, w *helpers.PlanWorld) *commands.RetryReport {
	t.Helper()
	response, err := w.Mediator().Send(context.Background(), &commands.RetryFailedActivationsCommand{})
	require.NoError(t, err)
	report, ok := response.(*commands.RetryReport)
	require.True(t, ok)
	return report
}

func recordDueFailure(t *testing.T, w *helpers.PlanWorld, engine activation.Engine) *activation.FailedActivation {
	t.Helper()
	failedAt := w.Clock.Now().Add(-time.Hour)
	f := activation.NewFailedActivation(w.PlanID, engine, "database is locked", nil, failedAt, activation.DefaultBackoffPolicy())
	require.NoError(t, w.Failures.Record(context.Background(), f))
	return f
}

func TestRetryFailedActivations_ResolvesRunThatNowSucceeds(t *testing.T) {
	// Arrange
	w, _, _ := twoPlotWorld()
	failed := recordDueFailure(t, w, activation.EngineExpansion)

	// Act
	report := runRetry(t, w)

	// Assert
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, activation.StatusResolved, failed.Status())
	assert.NotNil(t, failed.ResolvedAt())
	assert.Len(t, w.Tasks.Tasks(), 2)
}

func TestRetryFailedActivations_ReschedulesRunThatStillFails(t *testing.T) {
	w, _, _ := twoPlotWorld()
	w.Tasks.CreateErr = errors.New("database is locked")
	failed := recordDueFailure(t, w, activation.EngineExpansion)

	report := runRetry(t, w)

	assert.Equal(t, 1, report.Rescheduled)
	assert.Equal(t, activation.StatusPending, failed.Status())
	assert.Equal(t, 2, failed.Attempts())
	assert.Equal(t, w.Clock.Now().Add(2*time.Minute), failed.NextAttemptAt())
	require.Len(t, report.Results, 1)
	assert.Contains(t, report.Results[0].Error, "database is locked")
}

func TestRetryFailedActivations_AbandonsAfterLastAttempt(t *testing.T) {
	w, _, _ := twoPlotWorld()
	w.Tasks.CreateErr = errors.New("database is locked")
	now := w.Clock.Now()
	failed := activation.ReconstructFailedActivation(
		uuid.New(),
		w.PlanID, activation.EngineExpansion, activation.StatusPending, "database is locked", nil,
		4, now.Add(-time.Minute), now.Add(-time.Hour), now.Add(-time.Minute), nil,
	)
	require.NoError(t, w.Failures.Record(context.Background(), failed))

	report := runRetry(t, w)

	assert.Equal(t, 1, report.Abandoned)
	assert.Equal(t, activation.StatusAbandoned, failed.Status())
	assert.Equal(t, 5, failed.Attempts())
}

func TestRetryFailedActivations_AbortedReplayCountsAsResolved(t *testing.T) {
	// Arrange: the plan was expanded by someone else in the meantime
	w, _, _ := twoPlotWorld()
	_, err := w.ExpandHandler().Handle(context.Background(), &commands.ExpandPlanCommand{PlanID: w.PlanID})
	require.NoError(t, err)
	failed := recordDueFailure(t, w, activation.EngineExpansion)

	// Act
	report := runRetry(t, w)

	// Assert
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, activation.StatusResolved, failed.Status())
}

func TestRetryFailedActivations_IgnoresRecordsNotYetDue(t *testing.T) {
	w, _, _ := twoPlotWorld()
	f := activation.NewFailedActivation(w.PlanID, activation.EngineDistribution, "timeout", nil, w.Clock.Now(), activation.DefaultBackoffPolicy())
	require.NoError(t, w.Failures.Record(context.Background(), f))

	report := runRetry(t, w)

	assert.Equal(t, 0, report.Due)
	assert.Equal(t, activation.StatusPending, f.Status())
	assert.Equal(t, 1, f.Attempts())
}

func TestRetryFailedActivations_ReplaysDistributionEngine(t *testing.T) {
	w, _ := sharedMaterialWorld()
	failed := recordDueFailure(t, w, activation.EngineDistribution)

	report := runRetry(t, w)

	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, activation.StatusResolved, failed.Status())
	assert.Len(t, w.Distributions.All(), 1)
}
