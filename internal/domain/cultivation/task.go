package cultivation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/domain/shared"
)

// TaskStatus represents the current status of a cultivation task
type TaskStatus string

const (
	// TaskStatusApproved - generated from an approved plan, not started
	TaskStatusApproved TaskStatus = "APPROVED"

	// TaskStatusInProgress - currently being worked on
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"

	// TaskStatusCompleted - finished
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusCancelled - abandoned
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// TaskMaterial is a priced material line attached to a cultivation task
type TaskMaterial struct {
	ID                 uuid.UUID
	CultivationTaskID  uuid.UUID
	MaterialID         uuid.UUID
	PriceID            *uuid.UUID
	QuantityPerHectare decimal.Decimal
	RequiredQuantity   decimal.Decimal
	Packages           decimal.Decimal
	ActualQuantity     decimal.Decimal
	UnitPrice          decimal.Decimal
	TotalCost          decimal.Decimal
}

// CultivationTask is the concrete instance of a plan task on one plot cultivation.
//
// State Machine:
//
//	APPROVED -> IN_PROGRESS -> COMPLETED
//	    \            \-> CANCELLED
//	     \-> CANCELLED
type CultivationTask struct {
	id                   uuid.UUID
	planTaskID           uuid.UUID
	plotCultivationID    uuid.UUID
	cultivationVersionID *uuid.UUID

	name     string
	taskType string
	status   TaskStatus

	executionOrder   int
	scheduledDate    time.Time
	scheduledEndDate *time.Time

	actualMaterialCost decimal.Decimal
	actualServiceCost  decimal.Decimal
	actualStartDate    *time.Time
	actualEndDate      *time.Time

	materials []TaskMaterial
	createdAt time.Time
}

// NewTaskParams carries the template data a task is generated from
type NewTaskParams struct {
	PlanTaskID           uuid.UUID
	PlotCultivationID    uuid.UUID
	CultivationVersionID *uuid.UUID
	Name                 string
	TaskType             string
	ExecutionOrder       int
	ScheduledDate        time.Time
	ScheduledEndDate     *time.Time
	CreatedAt            time.Time
}

// NewCultivationTask creates a task in APPROVED status
func NewCultivationTask(p NewTaskParams) (*CultivationTask, error) {
	if p.PlanTaskID == uuid.Nil {
		return nil, shared.NewValidationError("plan_task_id", "required")
	}
	if p.PlotCultivationID == uuid.Nil {
		return nil, shared.NewValidationError("plot_cultivation_id", "required")
	}
	if p.Name == "" {
		return nil, shared.NewValidationError("name", "required")
	}

	return &CultivationTask{
		id:                   uuid.New(),
		planTaskID:           p.PlanTaskID,
		plotCultivationID:    p.PlotCultivationID,
		cultivationVersionID: p.CultivationVersionID,
		name:                 p.Name,
		taskType:             p.TaskType,
		status:               TaskStatusApproved,
		executionOrder:       p.ExecutionOrder,
		scheduledDate:        p.ScheduledDate,
		scheduledEndDate:     p.ScheduledEndDate,
		actualMaterialCost:   decimal.Zero,
		actualServiceCost:    decimal.Zero,
		createdAt:            p.CreatedAt,
	}, nil
}

// ReconstructTask rebuilds a task from persistence
func ReconstructTask(
	id uuid.UUID,
	planTaskID uuid.UUID,
	plotCultivationID uuid.UUID,
	cultivationVersionID *uuid.UUID,
	name string,
	taskType string,
	status TaskStatus,
	executionOrder int,
	scheduledDate time.Time,
	scheduledEndDate *time.Time,
	actualMaterialCost decimal.Decimal,
	actualServiceCost decimal.Decimal,
	actualStartDate *time.Time,
	actualEndDate *time.Time,
	materials []TaskMaterial,
	createdAt time.Time,
) *CultivationTask {
	return &CultivationTask{
		id:                   id,
		planTaskID:           planTaskID,
		plotCultivationID:    plotCultivationID,
		cultivationVersionID: cultivationVersionID,
		name:                 name,
		taskType:             taskType,
		status:               status,
		executionOrder:       executionOrder,
		scheduledDate:        scheduledDate,
		scheduledEndDate:     scheduledEndDate,
		actualMaterialCost:   actualMaterialCost,
		actualServiceCost:    actualServiceCost,
		actualStartDate:      actualStartDate,
		actualEndDate:        actualEndDate,
		materials:            materials,
		createdAt:            createdAt,
	}
}

func (t *CultivationTask) ID() uuid.UUID                     { return t.id }
func (t *CultivationTask) PlanTaskID() uuid.UUID             { return t.planTaskID }
func (t *CultivationTask) PlotCultivationID() uuid.UUID      { return t.plotCultivationID }
func (t *CultivationTask) CultivationVersionID() *uuid.UUID  { return t.cultivationVersionID }
func (t *CultivationTask) Name() string                      { return t.name }
func (t *CultivationTask) TaskType() string                  { return t.taskType }
func (t *CultivationTask) Status() TaskStatus                { return t.status }
func (t *CultivationTask) ExecutionOrder() int               { return t.executionOrder }
func (t *CultivationTask) ScheduledDate() time.Time          { return t.scheduledDate }
func (t *CultivationTask) ScheduledEndDate() *time.Time      { return t.scheduledEndDate }
func (t *CultivationTask) ActualMaterialCost() decimal.Decimal { return t.actualMaterialCost }
func (t *CultivationTask) ActualServiceCost() decimal.Decimal  { return t.actualServiceCost }
func (t *CultivationTask) ActualStartDate() *time.Time       { return t.actualStartDate }
func (t *CultivationTask) ActualEndDate() *time.Time         { return t.actualEndDate }
func (t *CultivationTask) Materials() []TaskMaterial         { return t.materials }
func (t *CultivationTask) CreatedAt() time.Time              { return t.createdAt }

// HasVersion reports whether the task is bound to a cultivation version
func (t *CultivationTask) HasVersion() bool {
	return t.cultivationVersionID != nil
}

// AddMaterial attaches a priced material line to the task
func (t *CultivationTask) AddMaterial(m TaskMaterial) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CultivationTaskID = t.id
	t.materials = append(t.materials, m)
}

// EstimatedMaterialCost sums the planned cost of the task's material lines
func (t *CultivationTask) EstimatedMaterialCost() decimal.Decimal {
	total := decimal.Zero
	for _, m := range t.materials {
		total = total.Add(m.TotalCost)
	}
	return total
}

// Start moves the task from APPROVED to IN_PROGRESS
func (t *CultivationTask) Start(at time.Time) error {
	if t.status != TaskStatusApproved {
		return &ErrInvalidTaskTransition{TaskID: t.id.String(), From: t.status, To: TaskStatusInProgress}
	}
	t.status = TaskStatusInProgress
	t.actualStartDate = &at
	return nil
}

// Complete marks the task finished and records its actual costs
func (t *CultivationTask) Complete(at time.Time, materialCost, serviceCost decimal.Decimal) error {
	if t.status != TaskStatusInProgress {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id.String(),
			From:        t.status,
			To:          TaskStatusCompleted,
			Description: "can only complete from IN_PROGRESS state",
		}
	}
	t.status = TaskStatusCompleted
	t.actualEndDate = &at
	t.actualMaterialCost = materialCost
	t.actualServiceCost = serviceCost
	return nil
}

// Cancel abandons a task that has not finished
func (t *CultivationTask) Cancel() error {
	if t.status == TaskStatusCompleted || t.status == TaskStatusCancelled {
		return &ErrInvalidTaskTransition{TaskID: t.id.String(), From: t.status, To: TaskStatusCancelled}
	}
	t.status = TaskStatusCancelled
	return nil
}
