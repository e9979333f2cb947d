package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one priced material requirement of one generated task.
//
// TaskID is the plan task the line was generated from; CultivationTaskID is
// the concrete task instance (zero when the line is a dry-run estimate).
type LineItem struct {
	TaskID            uuid.UUID
	CultivationTaskID uuid.UUID
	TaskName          string
	StageName         string
	StageSequence     int
	TaskSequence      int

	MaterialID   uuid.UUID
	MaterialName string
	Unit         string

	PlotCultivationID uuid.UUID
	PlotID            uuid.UUID
	VarietyID         uuid.UUID
	VarietyName       string
	Area              decimal.Decimal

	QuantityPerHectare decimal.Decimal
	RequiredQuantity   decimal.Decimal
	Packages           decimal.Decimal
	UnitPrice          decimal.Decimal
	TotalCost          decimal.Decimal
}
