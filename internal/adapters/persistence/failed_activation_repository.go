package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// GormFailedActivationRepository implements activation.FailureRepository using GORM
type GormFailedActivationRepository struct {
	db *gorm.DB
}

// NewGormFailedActivationRepository creates a new GORM dead-letter repository
func NewGormFailedActivationRepository(db *gorm.DB) *GormFailedActivationRepository {
	return &GormFailedActivationRepository{db: db}
}

// Record stores f, replacing any pending record of the same plan and engine
func (r *GormFailedActivationRepository) Record(ctx context.Context, f *activation.FailedActivation) error {
	model, err := failedActivationToModel(f)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("production_plan_id = ? AND engine = ? AND status = ? AND id <> ?",
			f.PlanID(), string(f.Engine()), string(activation.StatusPending), f.ID()).
			Delete(&FailedActivationModel{}).Error
		if err != nil {
			return fmt.Errorf("failed to replace pending activation failure: %w", err)
		}
		if err := tx.Save(model).Error; err != nil {
			return fmt.Errorf("failed to record activation failure: %w", err)
		}
		return nil
	})
}

// FindDue returns pending records whose next attempt is at or before now, oldest first
func (r *GormFailedActivationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*activation.FailedActivation, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", string(activation.StatusPending), now).
		Order("next_attempt_at, created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []FailedActivationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list due activation failures: %w", err)
	}

	result := make([]*activation.FailedActivation, 0, len(models))
	for _, m := range models {
		f, err := modelToFailedActivation(m)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, nil
}

// Update persists the retry state of a record
func (r *GormFailedActivationRepository) Update(ctx context.Context, f *activation.FailedActivation) error {
	model, err := failedActivationToModel(f)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&FailedActivationModel{}).
		Where("id = ?", f.ID()).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"last_error":      model.LastError,
			"warnings":        model.Warnings,
			"attempts":        model.Attempts,
			"next_attempt_at": model.NextAttemptAt,
			"updated_at":      model.UpdatedAt,
			"resolved_at":     model.ResolvedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update activation failure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("failed_activation", f.ID().String())
	}
	return nil
}

func failedActivationToModel(f *activation.FailedActivation) (*FailedActivationModel, error) {
	warnings := f.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode warnings: %w", err)
	}

	return &FailedActivationModel{
		ID:            f.ID(),
		PlanID:        f.PlanID(),
		Engine:        string(f.Engine()),
		Status:        string(f.Status()),
		LastError:     f.LastError(),
		Warnings:      datatypes.JSON(raw),
		Attempts:      f.Attempts(),
		NextAttemptAt: f.NextAttemptAt(),
		CreatedAt:     f.CreatedAt(),
		UpdatedAt:     f.UpdatedAt(),
		ResolvedAt:    f.ResolvedAt(),
	}, nil
}

func modelToFailedActivation(m FailedActivationModel) (*activation.FailedActivation, error) {
	var warnings []string
	if len(m.Warnings) > 0 {
		if err := json.Unmarshal(m.Warnings, &warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings of activation failure %s: %w", m.ID, err)
		}
	}

	return activation.ReconstructFailedActivation(
		m.ID,
		m.PlanID,
		activation.Engine(m.Engine),
		activation.Status(m.Status),
		m.LastError,
		warnings,
		m.Attempts,
		m.NextAttemptAt,
		m.CreatedAt,
		m.UpdatedAt,
		m.ResolvedAt,
	), nil
}
