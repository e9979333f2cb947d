package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/plan"
)

// GormPlanRepository implements plan.Repository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GORM plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindSnapshot loads the plan graph as flat lists: one query per table, no lazy navigation
func (r *GormPlanRepository) FindSnapshot(ctx context.Context, planID uuid.UUID) (*plan.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var planModel ProductionPlanModel
	if err := db.Where("id = ?", planID).First(&planModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &plan.ErrPlanNotFound{ID: planID.String()}
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	var groupModel GroupModel
	if err := db.Where("id = ?", planModel.GroupID).First(&groupModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &plan.ErrGroupNotFound{PlanID: planID.String(), GroupID: planModel.GroupID.String()}
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	var plotIDs []uuid.UUID
	if err := db.Model(&PlotModel{}).Where("group_id = ?", groupModel.ID).Order("id").Pluck("id", &plotIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list group plots: %w", err)
	}

	var stageModels []ProductionStageModel
	if err := db.Where("production_plan_id = ?", planID).Order("sequence_order").Find(&stageModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	stageIDs := make([]uuid.UUID, 0, len(stageModels))
	for _, s := range stageModels {
		stageIDs = append(stageIDs, s.ID)
	}

	var taskModels []ProductionTaskModel
	if len(stageIDs) > 0 {
		if err := db.Where("production_stage_id IN ?", stageIDs).Order("sequence_order").Find(&taskModels).Error; err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
	}

	taskIDs := make([]uuid.UUID, 0, len(taskModels))
	for _, t := range taskModels {
		taskIDs = append(taskIDs, t.ID)
	}

	var materialModels []ProductionTaskMaterialModel
	if len(taskIDs) > 0 {
		if err := db.Where("production_task_id IN ?", taskIDs).Find(&materialModels).Error; err != nil {
			return nil, fmt.Errorf("failed to list task materials: %w", err)
		}
	}

	stages := make([]plan.Stage, 0, len(stageModels))
	for _, s := range stageModels {
		stages = append(stages, plan.Stage{ID: s.ID, PlanID: s.PlanID, Name: s.Name, SequenceOrder: s.SequenceOrder})
	}
	tasks := make([]plan.Task, 0, len(taskModels))
	for _, t := range taskModels {
		tasks = append(tasks, plan.Task{
			ID:               t.ID,
			StageID:          t.StageID,
			Name:             t.Name,
			Description:      t.Description,
			TaskType:         t.TaskType,
			SequenceOrder:    t.SequenceOrder,
			ScheduledDate:    t.ScheduledDate,
			ScheduledEndDate: t.ScheduledEndDate,
		})
	}
	materials := make([]plan.TaskMaterial, 0, len(materialModels))
	for _, m := range materialModels {
		materials = append(materials, plan.TaskMaterial{
			ID:                 m.ID,
			TaskID:             m.TaskID,
			MaterialID:         m.MaterialID,
			QuantityPerHectare: m.QuantityPerHectare,
		})
	}

	return plan.NewSnapshot(
		plan.Plan{
			ID:               planModel.ID,
			Name:             planModel.Name,
			GroupID:          planModel.GroupID,
			Status:           plan.Status(planModel.Status),
			BasePlantingDate: planModel.BasePlantingDate,
			ApprovedAt:       planModel.ApprovedAt,
			ApprovedBy:       planModel.ApprovedBy,
			CreatedAt:        planModel.CreatedAt,
		},
		plan.Group{
			ID:              groupModel.ID,
			Name:            groupModel.Name,
			CurrentSeasonID: groupModel.CurrentSeasonID,
			PlotIDs:         plotIDs,
		},
		stages, tasks, materials,
	), nil
}
