package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/material"
)

// GormMaterialRepository implements material.Repository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GORM material repository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByIDs returns the catalog entries with the given ids
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*material.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []MaterialModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	materials := make([]*material.Material, 0, len(models))
	for _, m := range models {
		materials = append(materials, &material.Material{
			ID:                m.ID,
			Name:              m.Name,
			Type:              material.Type(m.Type),
			Unit:              m.Unit,
			AmountPerMaterial: m.AmountPerMaterial,
			IsPartition:       m.IsPartition,
		})
	}
	return materials, nil
}

// FindPricesByMaterialIDs returns the full price history of the given materials
func (r *GormMaterialRepository) FindPricesByMaterialIDs(ctx context.Context, ids []uuid.UUID) ([]material.Price, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []MaterialPriceModel
	err := r.db.WithContext(ctx).
		Where("material_id IN ?", ids).
		Order("material_id, valid_from").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list material prices: %w", err)
	}

	prices := make([]material.Price, 0, len(models))
	for _, m := range models {
		prices = append(prices, material.Price{
			ID:               m.ID,
			MaterialID:       m.MaterialID,
			PricePerMaterial: m.PricePerMaterial,
			ValidFrom:        m.ValidFrom,
			ValidTo:          m.ValidTo,
		})
	}
	return prices, nil
}
