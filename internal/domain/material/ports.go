package material

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides read access to the material catalog and price history
type Repository interface {
	// FindByIDs returns the materials with the given ids; unknown ids are omitted
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Material, error)

	// FindPricesByMaterialIDs returns every price row of the given materials
	FindPricesByMaterialIDs(ctx context.Context, ids []uuid.UUID) ([]Price, error)
}
