package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/material"
)

// ResolvedMaterial is a catalog material with the price valid at activation time
type ResolvedMaterial struct {
	Material *material.Material
	Price    material.Price
	Policy   material.RoundingPolicy
}

// MaterialResolution is the outcome of resolving every material a plan references
type MaterialResolution struct {
	Catalog  material.Catalog
	Resolved map[uuid.UUID]ResolvedMaterial
	Missing  []uuid.UUID
	Unpriced []uuid.UUID

	// Overlapping lists resolved materials whose price rows cover a day twice
	Overlapping []uuid.UUID
}

// Get returns the resolved material, if it has both a catalog entry and a price
func (r *MaterialResolution) Get(id uuid.UUID) (ResolvedMaterial, bool) {
	m, ok := r.Resolved[id]
	return m, ok
}

// ResolveMaterials loads the catalog entries and price histories of ids and
// resolves each price as of asOf. Unknown materials and materials without a
// valid price are reported, not treated as errors.
func ResolveMaterials(ctx context.Context, repo material.Repository, ids []uuid.UUID, asOf time.Time) (*MaterialResolution, error) {
	resolution := &MaterialResolution{
		Catalog:  material.Catalog{},
		Resolved: make(map[uuid.UUID]ResolvedMaterial),
	}
	if len(ids) == 0 {
		return resolution, nil
	}

	materials, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	resolution.Catalog = material.NewCatalog(materials)

	prices, err := repo.FindPricesByMaterialIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load material prices: %w", err)
	}
	book := material.NewPriceBook(prices)

	for _, id := range ids {
		m, ok := resolution.Catalog.Get(id)
		if !ok {
			resolution.Missing = append(resolution.Missing, id)
			continue
		}
		price, err := book.ResolveAt(id, asOf)
		if err != nil {
			if errors.Is(err, material.ErrPriceUnavailable) {
				resolution.Unpriced = append(resolution.Unpriced, id)
				continue
			}
			return nil, err
		}
		var overlap *material.OverlappingPriceError
		if errors.As(book.Validate(id), &overlap) {
			resolution.Overlapping = append(resolution.Overlapping, id)
		}
		resolution.Resolved[id] = ResolvedMaterial{
			Material: m,
			Price:    price,
			Policy:   material.PolicyFor(m),
		}
	}
	return resolution, nil
}
