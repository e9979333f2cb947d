package activation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanApprovedEvent is published when a production plan is approved.
// Delivery is at-least-once and unordered.
type PlanApprovedEvent struct {
	PlanID     uuid.UUID
	ApprovedAt time.Time
}

// FailureRepository stores dead-lettered activations
type FailureRepository interface {
	// Record stores a new failure. A pending record for the same plan and
	// engine is replaced rather than duplicated.
	Record(ctx context.Context, f *FailedActivation) error

	// FindDue returns pending records whose next attempt is at or before now
	FindDue(ctx context.Context, now time.Time, limit int) ([]*FailedActivation, error)

	Update(ctx context.Context, f *FailedActivation) error
}
