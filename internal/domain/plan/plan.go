package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a production plan
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// Plan is the header of a production plan
type Plan struct {
	ID               uuid.UUID
	Name             string
	GroupID          uuid.UUID
	Status           Status
	BasePlantingDate *time.Time
	ApprovedAt       *time.Time
	ApprovedBy       *uuid.UUID
	CreatedAt        time.Time
}

// IsApproved reports whether the plan may be activated
func (p Plan) IsApproved() bool {
	return p.Status == StatusApproved
}

// Stage is an ordered phase of a plan (land prep, sowing, fertilizing...)
type Stage struct {
	ID            uuid.UUID
	PlanID        uuid.UUID
	Name          string
	SequenceOrder int
}

// Task is one dated step of the plan template
type Task struct {
	ID               uuid.UUID
	StageID          uuid.UUID
	Name             string
	Description      string
	TaskType         string
	SequenceOrder    int
	ScheduledDate    time.Time
	ScheduledEndDate *time.Time
}

// TaskMaterial is a per-hectare material requirement of a Task
type TaskMaterial struct {
	ID                 uuid.UUID
	TaskID             uuid.UUID
	MaterialID         uuid.UUID
	QuantityPerHectare decimal.Decimal
}

// Group is the farmer group that owns the plan
type Group struct {
	ID              uuid.UUID
	Name            string
	CurrentSeasonID *uuid.UUID
	PlotIDs         []uuid.UUID
}

// HasCurrentSeason reports whether the group is attached to a season
func (g Group) HasCurrentSeason() bool {
	return g.CurrentSeasonID != nil && *g.CurrentSeasonID != uuid.Nil
}
