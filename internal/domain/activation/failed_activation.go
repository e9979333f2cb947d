package activation

import (
	"time"

	"github.com/google/uuid"
)

// Engine names the activation engine a failure belongs to
type Engine string

const (
	EngineExpansion    Engine = "EXPANSION"
	EngineDistribution Engine = "DISTRIBUTION"
)

// Status of a dead-lettered activation
type Status string

const (
	// StatusPending - waiting for the next retry
	StatusPending Status = "PENDING"

	// StatusResolved - a retry succeeded
	StatusResolved Status = "RESOLVED"

	// StatusAbandoned - retries exhausted, needs an operator
	StatusAbandoned Status = "ABANDONED"
)

// FailedActivation is a dead-letter record for an engine run that ended
// with an unexpected error.
type FailedActivation struct {
	id            uuid.UUID
	planID        uuid.UUID
	engine        Engine
	status        Status
	lastError     string
	warnings      []string
	attempts      int
	nextAttemptAt time.Time
	createdAt     time.Time
	updatedAt     time.Time
	resolvedAt    *time.Time
}

// NewFailedActivation records the first failure of an engine run.
// The first retry is scheduled with the policy's initial delay.
func NewFailedActivation(planID uuid.UUID, engine Engine, lastError string, warnings []string, now time.Time, policy BackoffPolicy) *FailedActivation {
	return &FailedActivation{
		id:            uuid.New(),
		planID:        planID,
		engine:        engine,
		status:        StatusPending,
		lastError:     lastError,
		warnings:      warnings,
		attempts:      1,
		nextAttemptAt: now.Add(policy.Delay(1)),
		createdAt:     now,
		updatedAt:     now,
	}
}

// ReconstructFailedActivation rebuilds a record from persistence
func ReconstructFailedActivation(
	id uuid.UUID,
	planID uuid.UUID,
	engine Engine,
	status Status,
	lastError string,
	warnings []string,
	attempts int,
	nextAttemptAt time.Time,
	createdAt time.Time,
	updatedAt time.Time,
	resolvedAt *time.Time,
) *FailedActivation {
	return &FailedActivation{
		id:            id,
		planID:        planID,
		engine:        engine,
		status:        status,
		lastError:     lastError,
		warnings:      warnings,
		attempts:      attempts,
		nextAttemptAt: nextAttemptAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		resolvedAt:    resolvedAt,
	}
}

func (f *FailedActivation) ID() uuid.UUID            { return f.id }
func (f *FailedActivation) PlanID() uuid.UUID        { return f.planID }
func (f *FailedActivation) Engine() Engine           { return f.engine }
func (f *FailedActivation) Status() Status           { return f.status }
func (f *FailedActivation) LastError() string        { return f.lastError }
func (f *FailedActivation) Warnings() []string       { return f.warnings }
func (f *FailedActivation) Attempts() int            { return f.attempts }
func (f *FailedActivation) NextAttemptAt() time.Time { return f.nextAttemptAt }
func (f *FailedActivation) CreatedAt() time.Time     { return f.createdAt }
func (f *FailedActivation) UpdatedAt() time.Time     { return f.updatedAt }
func (f *FailedActivation) ResolvedAt() *time.Time   { return f.resolvedAt }

// IsDue reports whether the record should be retried at now
func (f *FailedActivation) IsDue(now time.Time) bool {
	return f.status == StatusPending && !f.nextAttemptAt.After(now)
}

// RecordRetryFailure counts a failed retry and either reschedules the record
// or abandons it once the policy's attempt budget is spent.
func (f *FailedActivation) RecordRetryFailure(lastError string, now time.Time, policy BackoffPolicy) {
	f.attempts++
	f.lastError = lastError
	f.updatedAt = now
	if policy.MaxAttempts > 0 && f.attempts >= policy.MaxAttempts {
		f.status = StatusAbandoned
		return
	}
	f.nextAttemptAt = now.Add(policy.Delay(f.attempts))
}

// Resolve marks the record as handled by a successful retry
func (f *FailedActivation) Resolve(now time.Time) {
	f.status = StatusResolved
	f.updatedAt = now
	f.resolvedAt = &now
}
