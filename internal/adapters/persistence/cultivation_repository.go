package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/cultivation"
)

// GormCultivationRepository implements cultivation.Repository using GORM
type GormCultivationRepository struct {
	db *gorm.DB
}

// NewGormCultivationRepository creates a new GORM cultivation repository
func NewGormCultivationRepository(db *gorm.DB) *GormCultivationRepository {
	return &GormCultivationRepository{db: db}
}

// cultivationRow is a plot cultivation joined with its variety name
type cultivationRow struct {
	ID          uuid.UUID
	PlotID      uuid.UUID
	SeasonID    uuid.UUID
	VarietyID   uuid.UUID
	VarietyName *string
	Area        decimal.Decimal
	CreatedAt   time.Time
}

// FindByPlotsAndSeason returns every cultivation of the plots in the season
func (r *GormCultivationRepository) FindByPlotsAndSeason(ctx context.Context, plotIDs []uuid.UUID, seasonID uuid.UUID) ([]cultivation.PlotCultivation, error) {
	if len(plotIDs) == 0 {
		return nil, nil
	}

	var rows []cultivationRow
	err := r.db.WithContext(ctx).
		Table("plot_cultivations AS pc").
		Select("pc.id, pc.plot_id, pc.season_id, pc.rice_variety_id AS variety_id, rv.name AS variety_name, pc.area, pc.created_at").
		Joins("LEFT JOIN rice_varieties rv ON rv.id = pc.rice_variety_id").
		Where("pc.plot_id IN ? AND pc.season_id = ?", plotIDs, seasonID).
		Order("pc.created_at, pc.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plot cultivations: %w", err)
	}

	result := make([]cultivation.PlotCultivation, 0, len(rows))
	for _, row := range rows {
		c := cultivation.PlotCultivation{
			ID:        row.ID,
			PlotID:    row.PlotID,
			SeasonID:  row.SeasonID,
			VarietyID: row.VarietyID,
			Area:      row.Area,
			CreatedAt: row.CreatedAt,
		}
		if row.VarietyName != nil {
			c.VarietyName = *row.VarietyName
		}
		result = append(result, c)
	}
	return result, nil
}

// FindVersions returns every version of the given cultivations
func (r *GormCultivationRepository) FindVersions(ctx context.Context, cultivationIDs []uuid.UUID) ([]cultivation.Version, error) {
	if len(cultivationIDs) == 0 {
		return nil, nil
	}

	var models []CultivationVersionModel
	err := r.db.WithContext(ctx).
		Where("plot_cultivation_id IN ?", cultivationIDs).
		Order("plot_cultivation_id, version_order").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cultivation versions: %w", err)
	}

	versions := make([]cultivation.Version, 0, len(models))
	for _, m := range models {
		versions = append(versions, cultivation.Version{
			ID:                m.ID,
			PlotCultivationID: m.PlotCultivationID,
			VersionOrder:      m.VersionOrder,
			IsActive:          m.IsActive,
			CreatedAt:         m.CreatedAt,
		})
	}
	return versions, nil
}
