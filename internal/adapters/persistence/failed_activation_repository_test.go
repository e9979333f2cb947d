package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/shared"
	"github.com/riceops/production-planning/test/helpers"
)

func TestFailedActivationRepository_RecordAndFindDue(t *testing.T) {
	// Arrange
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	ctx := context.Background()
	planID := uuid.New()
	policy := activation.DefaultBackoffPolicy()
	failure := activation.NewFailedActivation(planID, activation.EngineExpansion, "database is locked",
		[]string{"cultivation c-1 has no active version"}, activationDay, policy)

	// Act
	require.NoError(t, repos.Failures.Record(ctx, failure))
	notYet, err := repos.Failures.FindDue(ctx, activationDay, 10)
	require.NoError(t, err)
	due, err := repos.Failures.FindDue(ctx, activationDay.Add(time.Minute), 10)
	require.NoError(t, err)

	// Assert
	assert.Empty(t, notYet)
	require.Len(t, due, 1)
	assert.Equal(t, failure.ID(), due[0].ID())
	assert.Equal(t, activation.EngineExpansion, due[0].Engine())
	assert.Equal(t, activation.StatusPending, due[0].Status())
	assert.Equal(t, 1, due[0].Attempts())
	assert.Equal(t, []string{"cultivation c-1 has no active version"}, due[0].Warnings())
}

func TestFailedActivationRepository_RecordReplacesPendingForSamePlanAndEngine(t *testing.T) {
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	ctx := context.Background()
	planID := uuid.New()
	policy := activation.DefaultBackoffPolicy()

	first := activation.NewFailedActivation(planID, activation.EngineDistribution, "timeout", nil, activationDay, policy)
	second := activation.NewFailedActivation(planID, activation.EngineDistribution, "deadlock", nil, activationDay, policy)
	other := activation.NewFailedActivation(planID, activation.EngineExpansion, "timeout", nil, activationDay, policy)
	require.NoError(t, repos.Failures.Record(ctx, first))
	require.NoError(t, repos.Failures.Record(ctx, second))
	require.NoError(t, repos.Failures.Record(ctx, other))

	due, err := repos.Failures.FindDue(ctx, activationDay.Add(time.Hour), 0)

	require.NoError(t, err)
	require.Len(t, due, 2)
	errorsByEngine := map[activation.Engine]string{}
	for _, f := range due {
		errorsByEngine[f.Engine()] = f.LastError()
	}
	assert.Equal(t, "deadlock", errorsByEngine[activation.EngineDistribution])
	assert.Equal(t, "timeout", errorsByEngine[activation.EngineExpansion])
}

func TestFailedActivationRepository_UpdatePersistsRetryState(t *testing.T) {
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	ctx := context.Background()
	policy := activation.DefaultBackoffPolicy()
	failure := activation.NewFailedActivation(uuid.New(), activation.EngineExpansion, "timeout", nil, activationDay, policy)
	require.NoError(t, repos.Failures.Record(ctx, failure))

	retryAt := activationDay.Add(2 * time.Minute)
	failure.RecordRetryFailure("still locked", retryAt, policy)
	require.NoError(t, repos.Failures.Update(ctx, failure))

	due, err := repos.Failures.FindDue(ctx, retryAt.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 2, due[0].Attempts())
	assert.Equal(t, "still locked", due[0].LastError())

	due[0].Resolve(retryAt.Add(2 * time.Minute))
	require.NoError(t, repos.Failures.Update(ctx, due[0]))
	remaining, err := repos.Failures.FindDue(ctx, retryAt.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestFailedActivationRepository_UpdateUnknown(t *testing.T) {
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	failure := activation.NewFailedActivation(uuid.New(), activation.EngineExpansion, "timeout", nil, activationDay,
		activation.DefaultBackoffPolicy())

	err := repos.Failures.Update(context.Background(), failure)

	assert.True(t, shared.IsNotFound(err))
}
