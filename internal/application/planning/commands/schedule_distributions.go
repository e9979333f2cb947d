package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/adapters/metrics"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/plan"
	"github.com/riceops/production-planning/internal/domain/settings"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// ScheduleDistributionsCommand schedules bulk material distributions for an approved plan
type ScheduleDistributionsCommand struct {
	PlanID uuid.UUID
}

// DistributionReport describes the outcome of one scheduling run
type DistributionReport struct {
	planning.Outcome

	PlanID          uuid.UUID
	Settings        distribution.ScheduleSettings
	Schedule        *distribution.Schedule
	Demands         int
	Created         int
	SkippedExisting int
	DistributionIDs []uuid.UUID
}

// ScheduleDistributionsHandler handles the ScheduleDistributions command
type ScheduleDistributionsHandler struct {
	loader        *planning.ActivationLoader
	distributions distribution.Repository
	materials     material.Repository
	settings      settings.Store
	defaults      distribution.ScheduleSettings
	clock         shared.Clock
}

// NewScheduleDistributionsHandler creates a new ScheduleDistributionsHandler.
// defaults apply when the settings store has no usable value for a key.
func NewScheduleDistributionsHandler(
	loader *planning.ActivationLoader,
	distributions distribution.Repository,
	materials material.Repository,
	store settings.Store,
	defaults distribution.ScheduleSettings,
	clock shared.Clock,
) *ScheduleDistributionsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &ScheduleDistributionsHandler{
		loader:        loader,
		distributions: distributions,
		materials:     materials,
		settings:      store,
		defaults:      defaults,
		clock:         clock,
	}
}

// Handle executes the ScheduleDistributions command
func (h *ScheduleDistributionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ScheduleDistributionsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ScheduleDistributionsCommand")
	}
	if cmd.PlanID == uuid.Nil {
		return nil, shared.NewValidationError("plan_id", "required")
	}

	logger := common.LoggerFromContext(ctx)
	report := &DistributionReport{PlanID: cmd.PlanID}

	if err := h.schedule(ctx, cmd.PlanID, report); err != nil {
		report.Fail(err)
		logger.Log("ERROR", "Distribution scheduling failed", map[string]interface{}{
			"plan_id": cmd.PlanID.String(),
			"error":   err.Error(),
		})
	}

	metadata := map[string]interface{}{
		"plan_id":          cmd.PlanID.String(),
		"outcome":          report.Label(),
		"created":          report.Created,
		"skipped_existing": report.SkippedExisting,
		"warnings":         len(report.Warnings),
	}
	switch {
	case report.Aborted:
		metadata["reason"] = report.AbortReason
		logger.Log("WARNING", "Distribution scheduling aborted", metadata)
	case report.Succeeded():
		for _, w := range report.Warnings {
			logger.Log("WARNING", w, map[string]interface{}{"plan_id": cmd.PlanID.String()})
		}
		logger.Log("INFO", "Distributions scheduled", metadata)
	}
	metrics.RecordDistribution(report.Label(), report.Created, report.SkippedExisting)

	return report, nil
}

func (h *ScheduleDistributionsHandler) schedule(ctx context.Context, planID uuid.UUID, report *DistributionReport) error {
	snapshot, reason, err := h.loader.LoadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if reason != "" {
		report.Abort(reason)
		return nil
	}

	eligibility, reason, err := h.loader.LoadEligibility(ctx, snapshot)
	if err != nil {
		return err
	}
	if reason != "" {
		report.Abort(reason)
		return nil
	}

	report.Settings, err = h.readSettings(ctx, report)
	if err != nil {
		return err
	}

	anchor, ok := snapshot.EarliestScheduledEndDate()
	if !ok {
		report.Abort(planning.AbortNoAnchorDate)
		return nil
	}
	schedule := distribution.ComputeSchedule(anchor, report.Settings)
	if err := schedule.Validate(); err != nil {
		return err
	}
	report.Schedule = &schedule

	demands := distribution.AggregateDemand(demandLines(snapshot, eligibility))
	report.Demands = len(demands)
	if len(demands) == 0 {
		report.Warn("plan %s requires no material on any eligible cultivation", planID)
		return nil
	}

	active, err := h.distributions.FindActiveKeys(ctx, eligibility.IDs())
	if err != nil {
		return fmt.Errorf("failed to load existing distributions: %w", err)
	}
	occupied := make(map[distribution.Key]struct{}, len(active))
	for _, k := range active {
		occupied[k] = struct{}{}
	}

	catalog, err := h.catalog(ctx, snapshot)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	var batch []*distribution.MaterialDistribution
	for _, demand := range demands {
		if _, exists := occupied[demand.Key]; exists {
			report.SkippedExisting++
			continue
		}

		packages := decimal.Zero
		if m, ok := catalog.Get(demand.MaterialID); ok {
			packages = material.PolicyFor(m).Packages(demand.Quantity)
		} else {
			report.Warn("material %s not found in catalog, package count left empty", demand.MaterialID)
		}

		d, err := distribution.NewMaterialDistribution(distribution.NewParams{
			PlotCultivationID: demand.PlotCultivationID,
			MaterialID:        demand.MaterialID,
			Quantity:          demand.Quantity,
			Packages:          packages,
			Schedule:          schedule,
			CreatedAt:         now,
		})
		if err != nil {
			return fmt.Errorf("failed to build distribution: %w", err)
		}
		batch = append(batch, d)
	}

	if len(batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scheduling cancelled before write: %w", err)
	}
	if err := h.distributions.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to persist distributions: %w", err)
	}

	report.Created = len(batch)
	for _, d := range batch {
		report.DistributionIDs = append(report.DistributionIDs, d.ID())
	}
	return nil
}

func (h *ScheduleDistributionsHandler) readSettings(ctx context.Context, report *DistributionReport) (distribution.ScheduleSettings, error) {
	resolved := h.defaults
	fields := []struct {
		key    string
		target *int
	}{
		{distribution.SettingDaysBeforeTask, &resolved.DaysBeforeTask},
		{distribution.SettingSupervisorConfirmationWindow, &resolved.SupervisorConfirmationWindow},
		{distribution.SettingFarmerConfirmationWindow, &resolved.FarmerConfirmationWindow},
		{distribution.SettingGracePeriod, &resolved.GracePeriod},
	}

	for _, f := range fields {
		v, err := settings.NonNegativeInt(ctx, h.settings, f.key, *f.target)
		if err != nil {
			return resolved, fmt.Errorf("failed to read setting %s: %w", f.key, err)
		}
		if v.Rejected() {
			report.Warn("setting %s has unusable value %q, using default %d", f.key, v.Raw, v.Value)
		}
		*f.target = v.Value
	}
	return resolved, nil
}

func (h *ScheduleDistributionsHandler) catalog(ctx context.Context, snapshot *plan.Snapshot) (material.Catalog, error) {
	ids := snapshot.MaterialIDs()
	if len(ids) == 0 || h.materials == nil {
		return material.Catalog{}, nil
	}
	found, err := h.materials.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	return material.NewCatalog(found), nil
}

func demandLines(snapshot *plan.Snapshot, eligibility *planning.Eligibility) []distribution.DemandLine {
	var lines []distribution.DemandLine
	for _, ref := range snapshot.TasksInSequence() {
		for _, c := range eligibility.Cultivations {
			if !c.HasArea() {
				continue
			}
			for _, req := range snapshot.MaterialsOf(ref.Task.ID) {
				lines = append(lines, distribution.DemandLine{
					PlotCultivationID:  c.ID,
					MaterialID:         req.MaterialID,
					QuantityPerHectare: req.QuantityPerHectare,
					Area:               c.Area,
				})
			}
		}
	}
	return lines
}

