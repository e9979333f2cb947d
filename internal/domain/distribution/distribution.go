package distribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/domain/shared"
)

// Status of a material distribution
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusDelivered Status = "DELIVERED"
)

// Key identifies the bulk distribution slot of one material on one cultivation
type Key struct {
	PlotCultivationID uuid.UUID
	MaterialID        uuid.UUID
}

// MaterialDistribution is a scheduled bulk delivery of one material to one
// plot cultivation.
//
// State Machine:
//
//	PENDING -> CONFIRMED -> DELIVERED
//	   |  \         \-> REJECTED
//	   |   \-> DELIVERED
//	   \-> REJECTED
type MaterialDistribution struct {
	id                uuid.UUID
	plotCultivationID uuid.UUID
	materialID        uuid.UUID
	relatedTaskID     *uuid.UUID

	quantity decimal.Decimal
	packages decimal.Decimal
	status   Status

	scheduledDate                  time.Time
	distributionDeadline           time.Time
	supervisorConfirmationDeadline time.Time
	farmerConfirmationDeadline     time.Time

	confirmedAt     *time.Time
	deliveredAt     *time.Time
	rejectedAt      *time.Time
	rejectionReason string
	createdAt       time.Time
}

// NewParams carries the data of a freshly scheduled distribution
type NewParams struct {
	PlotCultivationID uuid.UUID
	MaterialID        uuid.UUID
	Quantity          decimal.Decimal
	Packages          decimal.Decimal
	Schedule          Schedule
	CreatedAt         time.Time
}

// NewMaterialDistribution creates a PENDING bulk distribution (no related task)
func NewMaterialDistribution(p NewParams) (*MaterialDistribution, error) {
	if p.PlotCultivationID == uuid.Nil {
		return nil, shared.NewValidationError("plot_cultivation_id", "required")
	}
	if p.MaterialID == uuid.Nil {
		return nil, shared.NewValidationError("material_id", "required")
	}
	if p.Quantity.IsNegative() {
		return nil, shared.NewValidationError("quantity", "must not be negative")
	}

	return &MaterialDistribution{
		id:                             uuid.New(),
		plotCultivationID:              p.PlotCultivationID,
		materialID:                     p.MaterialID,
		quantity:                       p.Quantity,
		packages:                       p.Packages,
		status:                         StatusPending,
		scheduledDate:                  p.Schedule.ScheduledDate,
		distributionDeadline:           p.Schedule.DistributionDeadline,
		supervisorConfirmationDeadline: p.Schedule.SupervisorConfirmationDeadline,
		farmerConfirmationDeadline:     p.Schedule.FarmerConfirmationDeadline,
		createdAt:                      p.CreatedAt,
	}, nil
}

// ReconstructParams carries every persisted field of a distribution
type ReconstructParams struct {
	ID                             uuid.UUID
	PlotCultivationID              uuid.UUID
	MaterialID                     uuid.UUID
	RelatedTaskID                  *uuid.UUID
	Quantity                       decimal.Decimal
	Packages                       decimal.Decimal
	Status                         Status
	ScheduledDate                  time.Time
	DistributionDeadline           time.Time
	SupervisorConfirmationDeadline time.Time
	FarmerConfirmationDeadline     time.Time
	ConfirmedAt                    *time.Time
	DeliveredAt                    *time.Time
	RejectedAt                     *time.Time
	RejectionReason                string
	CreatedAt                      time.Time
}

// Reconstruct rebuilds a distribution from persistence
func Reconstruct(p ReconstructParams) *MaterialDistribution {
	return &MaterialDistribution{
		id:                             p.ID,
		plotCultivationID:              p.PlotCultivationID,
		materialID:                     p.MaterialID,
		relatedTaskID:                  p.RelatedTaskID,
		quantity:                       p.Quantity,
		packages:                       p.Packages,
		status:                         p.Status,
		scheduledDate:                  p.ScheduledDate,
		distributionDeadline:           p.DistributionDeadline,
		supervisorConfirmationDeadline: p.SupervisorConfirmationDeadline,
		farmerConfirmationDeadline:     p.FarmerConfirmationDeadline,
		confirmedAt:                    p.ConfirmedAt,
		deliveredAt:                    p.DeliveredAt,
		rejectedAt:                     p.RejectedAt,
		rejectionReason:                p.RejectionReason,
		createdAt:                      p.CreatedAt,
	}
}

func (d *MaterialDistribution) ID() uuid.UUID                { return d.id }
func (d *MaterialDistribution) PlotCultivationID() uuid.UUID { return d.plotCultivationID }
func (d *MaterialDistribution) MaterialID() uuid.UUID        { return d.materialID }
func (d *MaterialDistribution) RelatedTaskID() *uuid.UUID    { return d.relatedTaskID }
func (d *MaterialDistribution) Quantity() decimal.Decimal    { return d.quantity }
func (d *MaterialDistribution) Packages() decimal.Decimal    { return d.packages }
func (d *MaterialDistribution) Status() Status               { return d.status }
func (d *MaterialDistribution) ScheduledDate() time.Time     { return d.scheduledDate }
func (d *MaterialDistribution) DistributionDeadline() time.Time {
	return d.distributionDeadline
}
func (d *MaterialDistribution) SupervisorConfirmationDeadline() time.Time {
	return d.supervisorConfirmationDeadline
}
func (d *MaterialDistribution) FarmerConfirmationDeadline() time.Time {
	return d.farmerConfirmationDeadline
}
func (d *MaterialDistribution) ConfirmedAt() *time.Time  { return d.confirmedAt }
func (d *MaterialDistribution) DeliveredAt() *time.Time  { return d.deliveredAt }
func (d *MaterialDistribution) RejectedAt() *time.Time   { return d.rejectedAt }
func (d *MaterialDistribution) RejectionReason() string { return d.rejectionReason }
func (d *MaterialDistribution) CreatedAt() time.Time     { return d.createdAt }

// Key returns the (cultivation, material) slot this distribution occupies
func (d *MaterialDistribution) Key() Key {
	return Key{PlotCultivationID: d.plotCultivationID, MaterialID: d.materialID}
}

// IsBulk reports whether the distribution is not tied to a specific task
func (d *MaterialDistribution) IsBulk() bool {
	return d.relatedTaskID == nil
}

// IsActive reports whether the distribution still occupies its slot
func (d *MaterialDistribution) IsActive() bool {
	return d.status != StatusRejected
}

// Confirm records the supervisor's confirmation
func (d *MaterialDistribution) Confirm(at time.Time) error {
	if d.status != StatusPending {
		return d.invalidTransition(StatusConfirmed)
	}
	d.status = StatusConfirmed
	d.confirmedAt = &at
	return nil
}

// Reject frees the slot so a new distribution may be scheduled for it
func (d *MaterialDistribution) Reject(reason string, at time.Time) error {
	if d.status != StatusPending && d.status != StatusConfirmed {
		return d.invalidTransition(StatusRejected)
	}
	if reason == "" {
		return shared.NewValidationError("reason", "required when rejecting a distribution")
	}
	d.status = StatusRejected
	d.rejectionReason = reason
	d.rejectedAt = &at
	return nil
}

// MarkDelivered records the physical hand-over to the farmer
func (d *MaterialDistribution) MarkDelivered(at time.Time) error {
	if d.status != StatusPending && d.status != StatusConfirmed {
		return d.invalidTransition(StatusDelivered)
	}
	d.status = StatusDelivered
	d.deliveredAt = &at
	return nil
}

// IsOverdue reports whether the distribution missed its deadline
func (d *MaterialDistribution) IsOverdue(now time.Time) bool {
	if d.status == StatusDelivered || d.status == StatusRejected {
		return false
	}
	return now.After(d.distributionDeadline)
}

func (d *MaterialDistribution) invalidTransition(to Status) error {
	return shared.NewInvalidTransitionError("distribution "+d.id.String(), string(d.status), string(to))
}
