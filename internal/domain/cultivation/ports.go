package cultivation

import (
	"context"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/costing"
)

// Repository reads plot cultivations and their versions
type Repository interface {
	FindByPlotsAndSeason(ctx context.Context, plotIDs []uuid.UUID, seasonID uuid.UUID) ([]PlotCultivation, error)
	FindVersions(ctx context.Context, cultivationIDs []uuid.UUID) ([]Version, error)
}

// TaskRepository persists generated cultivation tasks
type TaskRepository interface {
	// ExistsForPlanTasks reports whether any cultivation task references one of the plan tasks
	ExistsForPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) (bool, error)

	// CreateBatch inserts tasks and their material lines in one transaction
	CreateBatch(ctx context.Context, tasks []*CultivationTask) error

	// FindByPlanTasks returns the tasks generated from the given plan tasks
	FindByPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) ([]*CultivationTask, error)

	// FindMaterialLinesByPlan projects the persisted material lines of a plan into cost line items
	FindMaterialLinesByPlan(ctx context.Context, planID uuid.UUID) ([]costing.LineItem, error)
}
