package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/domain/costing"
	"github.com/riceops/production-planning/internal/domain/cultivation"
)

const taskBatchSize = 200

// GormCultivationTaskRepository implements cultivation.TaskRepository using GORM
type GormCultivationTaskRepository struct {
	db *gorm.DB
}

// NewGormCultivationTaskRepository creates a new GORM cultivation task repository
func NewGormCultivationTaskRepository(db *gorm.DB) *GormCultivationTaskRepository {
	return &GormCultivationTaskRepository{db: db}
}

// ExistsForPlanTasks reports whether any cultivation task references one of the plan tasks
func (r *GormCultivationTaskRepository) ExistsForPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) (bool, error) {
	if len(planTaskIDs) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&CultivationTaskModel{}).
		Where("production_task_id IN ?", planTaskIDs).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count cultivation tasks: %w", err)
	}
	return count > 0, nil
}

// CreateBatch inserts the tasks and their material lines in one transaction.
// A duplicate (plan task, cultivation) pair fails the whole batch.
func (r *GormCultivationTaskRepository) CreateBatch(ctx context.Context, tasks []*cultivation.CultivationTask) error {
	if len(tasks) == 0 {
		return nil
	}

	taskModels := make([]CultivationTaskModel, 0, len(tasks))
	var materialModels []CultivationTaskMaterialModel
	for _, t := range tasks {
		taskModels = append(taskModels, taskToModel(t))
		for _, m := range t.Materials() {
			materialModels = append(materialModels, taskMaterialToModel(m))
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(taskModels, taskBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert cultivation tasks: %w", err)
		}
		if len(materialModels) > 0 {
			if err := tx.CreateInBatches(materialModels, taskBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert cultivation task materials: %w", err)
			}
		}
		return nil
	})
}

// FindByPlanTasks returns the tasks generated from the plan tasks with their material lines
func (r *GormCultivationTaskRepository) FindByPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) ([]*cultivation.CultivationTask, error) {
	if len(planTaskIDs) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx)

	var taskModels []CultivationTaskModel
	if err := db.Where("production_task_id IN ?", planTaskIDs).Order("execution_order, created_at, id").Find(&taskModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list cultivation tasks: %w", err)
	}
	if len(taskModels) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(taskModels))
	for _, t := range taskModels {
		ids = append(ids, t.ID)
	}

	var materialModels []CultivationTaskMaterialModel
	if err := db.Where("cultivation_task_id IN ?", ids).Find(&materialModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list cultivation task materials: %w", err)
	}
	byTask := make(map[uuid.UUID][]cultivation.TaskMaterial, len(taskModels))
	for _, m := range materialModels {
		byTask[m.CultivationTaskID] = append(byTask[m.CultivationTaskID], modelToTaskMaterial(m))
	}

	tasks := make([]*cultivation.CultivationTask, 0, len(taskModels))
	for _, t := range taskModels {
		tasks = append(tasks, modelToTask(t, byTask[t.ID]))
	}
	return tasks, nil
}

// materialLineRow is one persisted material line joined with its plan, plot and catalog context
type materialLineRow struct {
	CultivationTaskID  uuid.UUID
	PlanTaskID         uuid.UUID
	TaskName           string
	TaskSequence       int
	StageName          string
	StageSequence      int
	MaterialID         uuid.UUID
	MaterialName       *string
	Unit               *string
	PlotCultivationID  uuid.UUID
	PlotID             uuid.UUID
	VarietyID          uuid.UUID
	VarietyName        *string
	Area               decimal.Decimal
	QuantityPerHectare decimal.Decimal
	RequiredQuantity   decimal.Decimal
	Packages           decimal.Decimal
	UnitPrice          decimal.Decimal
	TotalCost          decimal.Decimal
}

// FindMaterialLinesByPlan projects every persisted material line of a plan into cost line items
func (r *GormCultivationTaskRepository) FindMaterialLinesByPlan(ctx context.Context, planID uuid.UUID) ([]costing.LineItem, error) {
	var rows []materialLineRow
	err := r.db.WithContext(ctx).
		Table("cultivation_task_materials AS ctm").
		Select(`ctm.cultivation_task_id, ct.production_task_id AS plan_task_id,
			pt.name AS task_name, pt.sequence_order AS task_sequence,
			ps.name AS stage_name, ps.sequence_order AS stage_sequence,
			ctm.material_id, m.name AS material_name, m.unit,
			pc.id AS plot_cultivation_id, pc.plot_id, pc.rice_variety_id AS variety_id, rv.name AS variety_name, pc.area,
			ctm.quantity_per_hectare, ctm.required_quantity, ctm.packages, ctm.unit_price, ctm.total_cost`).
		Joins("JOIN cultivation_tasks ct ON ct.id = ctm.cultivation_task_id").
		Joins("JOIN production_tasks pt ON pt.id = ct.production_task_id").
		Joins("JOIN production_stages ps ON ps.id = pt.production_stage_id").
		Joins("JOIN plot_cultivations pc ON pc.id = ct.plot_cultivation_id").
		Joins("LEFT JOIN materials m ON m.id = ctm.material_id").
		Joins("LEFT JOIN rice_varieties rv ON rv.id = pc.rice_variety_id").
		Where("ps.production_plan_id = ?", planID).
		Order("ps.sequence_order, pt.sequence_order, ct.created_at, ct.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load material lines: %w", err)
	}

	items := make([]costing.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, costing.LineItem{
			TaskID:             row.PlanTaskID,
			CultivationTaskID:  row.CultivationTaskID,
			TaskName:           row.TaskName,
			StageName:          row.StageName,
			StageSequence:      row.StageSequence,
			TaskSequence:       row.TaskSequence,
			MaterialID:         row.MaterialID,
			MaterialName:       deref(row.MaterialName),
			Unit:               deref(row.Unit),
			PlotCultivationID:  row.PlotCultivationID,
			PlotID:             row.PlotID,
			VarietyID:          row.VarietyID,
			VarietyName:        deref(row.VarietyName),
			Area:               row.Area,
			QuantityPerHectare: row.QuantityPerHectare,
			RequiredQuantity:   row.RequiredQuantity,
			Packages:           row.Packages,
			UnitPrice:          row.UnitPrice,
			TotalCost:          row.TotalCost,
		})
	}
	return items, nil
}

func taskToModel(t *cultivation.CultivationTask) CultivationTaskModel {
	return CultivationTaskModel{
		ID:                   t.ID(),
		PlanTaskID:           t.PlanTaskID(),
		PlotCultivationID:    t.PlotCultivationID(),
		CultivationVersionID: t.CultivationVersionID(),
		Name:                 t.Name(),
		TaskType:             t.TaskType(),
		Status:               string(t.Status()),
		ExecutionOrder:       t.ExecutionOrder(),
		ScheduledDate:        t.ScheduledDate(),
		ScheduledEndDate:     t.ScheduledEndDate(),
		ActualMaterialCost:   t.ActualMaterialCost(),
		ActualServiceCost:    t.ActualServiceCost(),
		ActualStartDate:      t.ActualStartDate(),
		ActualEndDate:        t.ActualEndDate(),
		CreatedAt:            t.CreatedAt(),
	}
}

func taskMaterialToModel(m cultivation.TaskMaterial) CultivationTaskMaterialModel {
	return CultivationTaskMaterialModel{
		ID:                 m.ID,
		CultivationTaskID:  m.CultivationTaskID,
		MaterialID:         m.MaterialID,
		PriceID:            m.PriceID,
		QuantityPerHectare: m.QuantityPerHectare,
		RequiredQuantity:   m.RequiredQuantity,
		Packages:           m.Packages,
		ActualQuantity:     m.ActualQuantity,
		UnitPrice:          m.UnitPrice,
		TotalCost:          m.TotalCost,
	}
}

func modelToTaskMaterial(m CultivationTaskMaterialModel) cultivation.TaskMaterial {
	return cultivation.TaskMaterial{
		ID:                 m.ID,
		CultivationTaskID:  m.CultivationTaskID,
		MaterialID:         m.MaterialID,
		PriceID:            m.PriceID,
		QuantityPerHectare: m.QuantityPerHectare,
		RequiredQuantity:   m.RequiredQuantity,
		Packages:           m.Packages,
		ActualQuantity:     m.ActualQuantity,
		UnitPrice:          m.UnitPrice,
		TotalCost:          m.TotalCost,
	}
}

func modelToTask(m CultivationTaskModel, materials []cultivation.TaskMaterial) *cultivation.CultivationTask {
	return cultivation.ReconstructTask(
		m.ID,
		m.PlanTaskID,
		m.PlotCultivationID,
		m.CultivationVersionID,
		m.Name,
		m.TaskType,
		cultivation.TaskStatus(m.Status),
		m.ExecutionOrder,
		m.ScheduledDate,
		m.ScheduledEndDate,
		m.ActualMaterialCost,
		m.ActualServiceCost,
		m.ActualStartDate,
		m.ActualEndDate,
		materials,
		m.CreatedAt,
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
