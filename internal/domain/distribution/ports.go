package distribution

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists material distributions
type Repository interface {
	// FindActiveKeys returns the occupied bulk slots of the given cultivations
	FindActiveKeys(ctx context.Context, cultivationIDs []uuid.UUID) ([]Key, error)

	// CreateBatch inserts distributions in one transaction
	CreateBatch(ctx context.Context, distributions []*MaterialDistribution) error

	FindByID(ctx context.Context, id uuid.UUID) (*MaterialDistribution, error)
	FindByPlotCultivations(ctx context.Context, cultivationIDs []uuid.UUID) ([]*MaterialDistribution, error)
	Update(ctx context.Context, d *MaterialDistribution) error
}
