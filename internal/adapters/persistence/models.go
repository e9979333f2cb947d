package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GroupModel represents the groups table
type GroupModel struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	CurrentSeasonID *uuid.UUID `gorm:"column:current_season_id;type:uuid"`
}

func (GroupModel) TableName() string {
	return "groups"
}

// PlotModel represents the plots table
type PlotModel struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GroupID uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	Name    string    `gorm:"column:name"`
}

func (PlotModel) TableName() string {
	return "plots"
}

// RiceVarietyModel represents the rice_varieties table
type RiceVarietyModel struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null"`
}

func (RiceVarietyModel) TableName() string {
	return "rice_varieties"
}

// ProductionPlanModel represents the production_plans table
type ProductionPlanModel struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name             string     `gorm:"column:name;not null"`
	GroupID          uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index"`
	Status           string     `gorm:"column:status;not null;default:'DRAFT'"`
	BasePlantingDate *time.Time `gorm:"column:base_planting_date"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	ApprovedBy       *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
}

func (ProductionPlanModel) TableName() string {
	return "production_plans"
}

// ProductionStageModel represents the production_stages table
type ProductionStageModel struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PlanID        uuid.UUID `gorm:"column:production_plan_id;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	SequenceOrder int       `gorm:"column:sequence_order;not null"`
}

func (ProductionStageModel) TableName() string {
	return "production_stages"
}

// ProductionTaskModel represents the production_tasks table
type ProductionTaskModel struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	StageID          uuid.UUID  `gorm:"column:production_stage_id;type:uuid;not null;index"`
	Name             string     `gorm:"column:name;not null"`
	Description      string     `gorm:"column:description;type:text"`
	TaskType         string     `gorm:"column:task_type"`
	SequenceOrder    int        `gorm:"column:sequence_order;not null"`
	ScheduledDate    time.Time  `gorm:"column:scheduled_date;not null"`
	ScheduledEndDate *time.Time `gorm:"column:scheduled_end_date"`
}

func (ProductionTaskModel) TableName() string {
	return "production_tasks"
}

// ProductionTaskMaterialModel represents the production_task_materials table
type ProductionTaskMaterialModel struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TaskID             uuid.UUID       `gorm:"column:production_task_id;type:uuid;not null;index"`
	MaterialID         uuid.UUID       `gorm:"column:material_id;type:uuid;not null"`
	QuantityPerHectare decimal.Decimal `gorm:"column:quantity_per_hectare;type:decimal(18,4);not null"`
}

func (ProductionTaskMaterialModel) TableName() string {
	return "production_task_materials"
}

// PlotCultivationModel represents the plot_cultivations table
type PlotCultivationModel struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PlotID    uuid.UUID       `gorm:"column:plot_id;type:uuid;not null;index:idx_plot_cultivations_plot_season"`
	SeasonID  uuid.UUID       `gorm:"column:season_id;type:uuid;not null;index:idx_plot_cultivations_plot_season"`
	VarietyID uuid.UUID       `gorm:"column:rice_variety_id;type:uuid"`
	Area      decimal.Decimal `gorm:"column:area;type:decimal(12,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}

func (PlotCultivationModel) TableName() string {
	return "plot_cultivations"
}

// CultivationVersionModel represents the cultivation_versions table
type CultivationVersionModel struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PlotCultivationID uuid.UUID `gorm:"column:plot_cultivation_id;type:uuid;not null;index"`
	VersionOrder      int       `gorm:"column:version_order;not null"`
	IsActive          bool      `gorm:"column:is_active;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"`
}

func (CultivationVersionModel) TableName() string {
	return "cultivation_versions"
}

// CultivationTaskModel represents the cultivation_tasks table.
// One row per (plan task, plot cultivation), enforced by a unique index.
type CultivationTaskModel struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PlanTaskID           uuid.UUID       `gorm:"column:production_task_id;type:uuid;not null;uniqueIndex:idx_cultivation_tasks_plan_task_plot"`
	PlotCultivationID    uuid.UUID       `gorm:"column:plot_cultivation_id;type:uuid;not null;uniqueIndex:idx_cultivation_tasks_plan_task_plot"`
	CultivationVersionID *uuid.UUID      `gorm:"column:cultivation_version_id;type:uuid"`
	Name                 string          `gorm:"column:name;not null"`
	TaskType             string          `gorm:"column:task_type"`
	Status               string          `gorm:"column:status;not null"`
	ExecutionOrder       int             `gorm:"column:execution_order;not null"`
	ScheduledDate        time.Time       `gorm:"column:scheduled_date"`
	ScheduledEndDate     *time.Time      `gorm:"column:scheduled_end_date"`
	ActualMaterialCost   decimal.Decimal `gorm:"column:actual_material_cost;type:decimal(18,2);not null;default:0"`
	ActualServiceCost    decimal.Decimal `gorm:"column:actual_service_cost;type:decimal(18,2);not null;default:0"`
	ActualStartDate      *time.Time      `gorm:"column:actual_start_date"`
	ActualEndDate        *time.Time      `gorm:"column:actual_end_date"`
	CreatedAt            time.Time       `gorm:"column:created_at;not null"`
}

func (CultivationTaskModel) TableName() string {
	return "cultivation_tasks"
}

// CultivationTaskMaterialModel represents the cultivation_task_materials table
type CultivationTaskMaterialModel struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CultivationTaskID  uuid.UUID       `gorm:"column:cultivation_task_id;type:uuid;not null;index"`
	MaterialID         uuid.UUID       `gorm:"column:material_id;type:uuid;not null"`
	PriceID            *uuid.UUID      `gorm:"column:material_price_id;type:uuid"`
	QuantityPerHectare decimal.Decimal `gorm:"column:quantity_per_hectare;type:decimal(18,4);not null"`
	RequiredQuantity   decimal.Decimal `gorm:"column:required_quantity;type:decimal(18,4);not null"`
	Packages           decimal.Decimal `gorm:"column:packages;type:decimal(18,4);not null"`
	ActualQuantity     decimal.Decimal `gorm:"column:actual_quantity;type:decimal(18,4);not null"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:decimal(18,2);not null"`
	TotalCost          decimal.Decimal `gorm:"column:total_cost;type:decimal(18,2);not null"`
}

func (CultivationTaskMaterialModel) TableName() string {
	return "cultivation_task_materials"
}

// MaterialModel represents the materials table
type MaterialModel struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Type              string          `gorm:"column:type;not null"`
	Unit              string          `gorm:"column:unit;not null"`
	AmountPerMaterial decimal.Decimal `gorm:"column:amount_per_material;type:decimal(18,4);not null;default:1"`
	IsPartition       bool            `gorm:"column:is_partition;not null;default:false"`
}

func (MaterialModel) TableName() string {
	return "materials"
}

// MaterialPriceModel represents the material_prices table
type MaterialPriceModel struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	MaterialID       uuid.UUID       `gorm:"column:material_id;type:uuid;not null;index"`
	PricePerMaterial decimal.Decimal `gorm:"column:price_per_material;type:decimal(18,2);not null"`
	ValidFrom        time.Time       `gorm:"column:valid_from;not null"`
	ValidTo          *time.Time      `gorm:"column:valid_to"`
}

func (MaterialPriceModel) TableName() string {
	return "material_prices"
}

// MaterialDistributionModel represents the material_distributions table.
// The active bulk slot index is partial and created by AutoMigrate.
type MaterialDistributionModel struct {
	ID                             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PlotCultivationID              uuid.UUID       `gorm:"column:plot_cultivation_id;type:uuid;not null;index"`
	MaterialID                     uuid.UUID       `gorm:"column:material_id;type:uuid;not null"`
	RelatedTaskID                  *uuid.UUID      `gorm:"column:related_task_id;type:uuid"`
	Quantity                       decimal.Decimal `gorm:"column:quantity;type:decimal(18,4);not null"`
	Packages                       decimal.Decimal `gorm:"column:packages;type:decimal(18,4);not null"`
	Status                         string          `gorm:"column:status;not null"`
	ScheduledDate                  time.Time       `gorm:"column:scheduled_date;not null"`
	DistributionDeadline           time.Time       `gorm:"column:distribution_deadline;not null"`
	SupervisorConfirmationDeadline time.Time       `gorm:"column:supervisor_confirmation_deadline;not null"`
	FarmerConfirmationDeadline     time.Time       `gorm:"column:farmer_confirmation_deadline;not null"`
	ConfirmedAt                    *time.Time      `gorm:"column:confirmed_at"`
	DeliveredAt                    *time.Time      `gorm:"column:delivered_at"`
	RejectedAt                     *time.Time      `gorm:"column:rejected_at"`
	RejectionReason                string          `gorm:"column:rejection_reason;type:text"`
	CreatedAt                      time.Time       `gorm:"column:created_at;not null"`
}

func (MaterialDistributionModel) TableName() string {
	return "material_distributions"
}

// SystemSettingModel represents the system_settings table
type SystemSettingModel struct {
	Key         string    `gorm:"column:setting_key;primaryKey"`
	Value       string    `gorm:"column:setting_value;not null"`
	Description string    `gorm:"column:description;type:text"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SystemSettingModel) TableName() string {
	return "system_settings"
}

// FailedActivationModel represents the failed_activations table (dead letters)
type FailedActivationModel struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	PlanID        uuid.UUID      `gorm:"column:production_plan_id;type:uuid;not null;index:idx_failed_activations_plan_engine"`
	Engine        string         `gorm:"column:engine;not null;index:idx_failed_activations_plan_engine"`
	Status        string         `gorm:"column:status;not null;index:idx_failed_activations_due"`
	LastError     string         `gorm:"column:last_error;type:text"`
	Warnings      datatypes.JSON `gorm:"column:warnings"`
	Attempts      int            `gorm:"column:attempts;not null;default:1"`
	NextAttemptAt time.Time      `gorm:"column:next_attempt_at;not null;index:idx_failed_activations_due"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null"`
	ResolvedAt    *time.Time     `gorm:"column:resolved_at"`
}

func (FailedActivationModel) TableName() string {
	return "failed_activations"
}
