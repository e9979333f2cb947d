package activation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/riceops/production-planning/internal/domain/activation"
)

var now = time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC)

func TestBackoffPolicy_DelayDoublesUpToCap(t *testing.T) {
	policy := activation.BackoffPolicy{InitialDelay: time.Minute, MaxDelay: 5 * time.Minute, MaxAttempts: 10}

	assert.Equal(t, time.Minute, policy.Delay(0))
	assert.Equal(t, time.Minute, policy.Delay(1))
	assert.Equal(t, 2*time.Minute, policy.Delay(2))
	assert.Equal(t, 4*time.Minute, policy.Delay(3))
	assert.Equal(t, 5*time.Minute, policy.Delay(4))
	assert.Equal(t, 5*time.Minute, policy.Delay(30))
}

func TestNewFailedActivation_SchedulesFirstRetry(t *testing.T) {
	policy := activation.DefaultBackoffPolicy()

	f := activation.NewFailedActivation(uuid.New(), activation.EngineExpansion, "db down", []string{"w1"}, now, policy)

	assert.Equal(t, activation.StatusPending, f.Status())
	assert.Equal(t, 1, f.Attempts())
	assert.Equal(t, now.Add(time.Minute), f.NextAttemptAt())
	assert.False(t, f.IsDue(now))
	assert.True(t, f.IsDue(now.Add(time.Minute)))
}

func TestFailedActivation_AbandonedAfterMaxAttempts(t *testing.T) {
	policy := activation.BackoffPolicy{InitialDelay: time.Second, MaxDelay: time.Minute, MaxAttempts: 3}
	f := activation.NewFailedActivation(uuid.New(), activation.EngineDistribution, "timeout", nil, now, policy)

	f.RecordRetryFailure("timeout again", now.Add(time.Second), policy)
	assert.Equal(t, activation.StatusPending, f.Status())
	assert.Equal(t, 2, f.Attempts())
	assert.Equal(t, now.Add(3*time.Second), f.NextAttemptAt())

	f.RecordRetryFailure("still failing", now.Add(5*time.Second), policy)
	assert.Equal(t, activation.StatusAbandoned, f.Status())
	assert.Equal(t, "still failing", f.LastError())
	assert.False(t, f.IsDue(now.Add(time.Hour)))
}

func TestFailedActivation_Resolve(t *testing.T) {
	f := activation.NewFailedActivation(uuid.New(), activation.EngineExpansion, "boom", nil, now, activation.DefaultBackoffPolicy())

	f.Resolve(now.Add(time.Hour))

	assert.Equal(t, activation.StatusResolved, f.Status())
	assert.NotNil(t, f.ResolvedAt())
	assert.False(t, f.IsDue(now.Add(2*time.Hour)))
}
