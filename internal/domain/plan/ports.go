package plan

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads production plans as flat snapshots
type Repository interface {
	// FindSnapshot returns the plan with its stages, tasks, task materials
	// and owning group. Returns *ErrPlanNotFound when the plan does not exist.
	FindSnapshot(ctx context.Context, planID uuid.UUID) (*Snapshot, error)
}
