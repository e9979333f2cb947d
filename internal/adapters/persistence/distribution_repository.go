package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// GormDistributionRepository implements distribution.Repository using GORM
type GormDistributionRepository struct {
	db *gorm.DB
}

// NewGormDistributionRepository creates a new GORM distribution repository
func NewGormDistributionRepository(db *gorm.DB) *GormDistributionRepository {
	return &GormDistributionRepository{db: db}
}

// FindActiveKeys returns the (cultivation, material) pairs that already hold a
// non-rejected bulk distribution
func (r *GormDistributionRepository) FindActiveKeys(ctx context.Context, cultivationIDs []uuid.UUID) ([]distribution.Key, error) {
	if len(cultivationIDs) == 0 {
		return nil, nil
	}

	var keys []distribution.Key
	err := r.db.WithContext(ctx).
		Model(&MaterialDistributionModel{}).
		Distinct("plot_cultivation_id", "material_id").
		Where("plot_cultivation_id IN ?", cultivationIDs).
		Where("related_task_id IS NULL AND status <> ?", string(distribution.StatusRejected)).
		Scan(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active distribution keys: %w", err)
	}
	return keys, nil
}

// CreateBatch inserts all distributions or none
func (r *GormDistributionRepository) CreateBatch(ctx context.Context, distributions []*distribution.MaterialDistribution) error {
	if len(distributions) == 0 {
		return nil
	}

	models := make([]MaterialDistributionModel, 0, len(distributions))
	for _, d := range distributions {
		models = append(models, distributionToModel(d))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(models, taskBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert distributions: %w", err)
		}
		return nil
	})
}

// FindByID loads one distribution
func (r *GormDistributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*distribution.MaterialDistribution, error) {
	var model MaterialDistributionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("distribution", id.String())
		}
		return nil, fmt.Errorf("failed to find distribution: %w", err)
	}
	return modelToDistribution(model), nil
}

// FindByPlotCultivations lists every distribution of the cultivations, earliest first
func (r *GormDistributionRepository) FindByPlotCultivations(ctx context.Context, cultivationIDs []uuid.UUID) ([]*distribution.MaterialDistribution, error) {
	if len(cultivationIDs) == 0 {
		return nil, nil
	}

	var models []MaterialDistributionModel
	err := r.db.WithContext(ctx).
		Where("plot_cultivation_id IN ?", cultivationIDs).
		Order("scheduled_date, plot_cultivation_id, material_id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}

	result := make([]*distribution.MaterialDistribution, 0, len(models))
	for _, m := range models {
		result = append(result, modelToDistribution(m))
	}
	return result, nil
}

// Update persists the lifecycle fields of a distribution
func (r *GormDistributionRepository) Update(ctx context.Context, d *distribution.MaterialDistribution) error {
	result := r.db.WithContext(ctx).
		Model(&MaterialDistributionModel{}).
		Where("id = ?", d.ID()).
		Updates(map[string]interface{}{
			"status":           string(d.Status()),
			"confirmed_at":     d.ConfirmedAt(),
			"delivered_at":     d.DeliveredAt(),
			"rejected_at":      d.RejectedAt(),
			"rejection_reason": d.RejectionReason(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update distribution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("distribution", d.ID().String())
	}
	return nil
}

func distributionToModel(d *distribution.MaterialDistribution) MaterialDistributionModel {
	return MaterialDistributionModel{
		ID:                             d.ID(),
		PlotCultivationID:              d.PlotCultivationID(),
		MaterialID:                     d.MaterialID(),
		RelatedTaskID:                  d.RelatedTaskID(),
		Quantity:                       d.Quantity(),
		Packages:                       d.Packages(),
		Status:                         string(d.Status()),
		ScheduledDate:                  d.ScheduledDate(),
		DistributionDeadline:           d.DistributionDeadline(),
		SupervisorConfirmationDeadline: d.SupervisorConfirmationDeadline(),
		FarmerConfirmationDeadline:     d.FarmerConfirmationDeadline(),
		ConfirmedAt:                    d.ConfirmedAt(),
		DeliveredAt:                    d.DeliveredAt(),
		RejectedAt:                     d.RejectedAt(),
		RejectionReason:                d.RejectionReason(),
		CreatedAt:                      d.CreatedAt(),
	}
}

func modelToDistribution(m MaterialDistributionModel) *distribution.MaterialDistribution {
	return distribution.Reconstruct(distribution.ReconstructParams{
		ID:                             m.ID,
		PlotCultivationID:              m.PlotCultivationID,
		MaterialID:                     m.MaterialID,
		RelatedTaskID:                  m.RelatedTaskID,
		Quantity:                       m.Quantity,
		Packages:                       m.Packages,
		Status:                         distribution.Status(m.Status),
		ScheduledDate:                  m.ScheduledDate,
		DistributionDeadline:           m.DistributionDeadline,
		SupervisorConfirmationDeadline: m.SupervisorConfirmationDeadline,
		FarmerConfirmationDeadline:     m.FarmerConfirmationDeadline,
		ConfirmedAt:                    m.ConfirmedAt,
		DeliveredAt:                    m.DeliveredAt,
		RejectedAt:                     m.RejectedAt,
		RejectionReason:                m.RejectionReason,
		CreatedAt:                      m.CreatedAt,
	})
}
