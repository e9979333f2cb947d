package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// GetMaterialPriceQuery resolves the price of a material on a date.
// A nil AsOf means now.
type GetMaterialPriceQuery struct {
	MaterialID uuid.UUID
	AsOf       *time.Time
}

// GetMaterialPriceResponse contains the resolved price row.
// Found is false when no row covers the date.
type GetMaterialPriceResponse struct {
	Material *material.Material
	AsOf     time.Time
	Price    *material.Price
	Found    bool
}

// GetMaterialPriceHandler handles the GetMaterialPrice query
type GetMaterialPriceHandler struct {
	materials material.Repository
	clock     shared.Clock
}

// NewGetMaterialPriceHandler creates a new GetMaterialPriceHandler
func NewGetMaterialPriceHandler(materials material.Repository, clock shared.Clock) *GetMaterialPriceHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetMaterialPriceHandler{materials: materials, clock: clock}
}

// Handle executes the GetMaterialPrice query
func (h *GetMaterialPriceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetMaterialPriceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetMaterialPriceQuery")
	}

	asOf := h.clock.Now()
	if query.AsOf != nil {
		asOf = *query.AsOf
	}

	found, err := h.materials.FindByIDs(ctx, []uuid.UUID{query.MaterialID})
	if err != nil {
		return nil, fmt.Errorf("failed to load material: %w", err)
	}
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("material", query.MaterialID.String())
	}

	prices, err := h.materials.FindPricesByMaterialIDs(ctx, []uuid.UUID{query.MaterialID})
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	response := &GetMaterialPriceResponse{Material: found[0], AsOf: asOf}
	price, err := material.NewPriceHistory(query.MaterialID, prices).ResolveAt(asOf)
	if err != nil {
		return response, nil
	}
	response.Price = &price
	response.Found = true
	return response, nil
}
