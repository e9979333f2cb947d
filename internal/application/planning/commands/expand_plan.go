package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/adapters/metrics"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/domain/costing"
	"github.com/riceops/production-planning/internal/domain/cultivation"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/plan"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// Skip reasons reported by the expansion engine
const (
	SkipMissingMaterial = "missing_material"
	SkipMissingPrice    = "missing_price"
	SkipZeroArea        = "zero_area"
	SkipNoActiveVersion = "no_active_version"
	SkipInvalidTask     = "invalid_task"
)

// PriceAsOf selects the date prices are resolved at
type PriceAsOf string

const (
	// PriceAsOfActivation resolves prices at the moment the plan is expanded
	PriceAsOfActivation PriceAsOf = "activation"
	// PriceAsOfPlanStart resolves prices at the earliest task start date of the plan
	PriceAsOfPlanStart PriceAsOf = "plan_start"
)

// ExpandPlanCommand generates cultivation tasks for every eligible plot of an approved plan
type ExpandPlanCommand struct {
	PlanID uuid.UUID
}

// ExpansionReport describes the outcome of one expansion run
type ExpansionReport struct {
	planning.Outcome

	PlanID                  uuid.UUID
	PriceAsOf               time.Time
	EligibleCultivations    int
	TasksCreated            int
	TaskMaterialsCreated    int
	SkippedMaterials        int
	MissingMaterialLines    int
	MissingPriceLines       int
	SkippedTasks            int
	SkippedCultivations     int
	VersionlessCultivations int
	PromotedTaskID          *uuid.UUID
	Cost                    *costing.Report
}

// SkipCounts returns skip counters keyed by reason
func (r *ExpansionReport) SkipCounts() map[string]int {
	return map[string]int{
		SkipMissingMaterial: r.MissingMaterialLines,
		SkipMissingPrice:    r.MissingPriceLines,
		SkipZeroArea:        r.SkippedCultivations,
		SkipNoActiveVersion: r.VersionlessCultivations,
		SkipInvalidTask:     r.SkippedTasks,
	}
}

// ExpandPlanHandler handles the ExpandPlan command
type ExpandPlanHandler struct {
	loader    *planning.ActivationLoader
	tasks     cultivation.TaskRepository
	materials material.Repository
	clock     shared.Clock
	priceAsOf PriceAsOf
}

// NewExpandPlanHandler creates a new ExpandPlanHandler
func NewExpandPlanHandler(
	loader *planning.ActivationLoader,
	tasks cultivation.TaskRepository,
	materials material.Repository,
	clock shared.Clock,
	priceAsOf PriceAsOf,
) *ExpandPlanHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if priceAsOf == "" {
		priceAsOf = PriceAsOfActivation
	}

	return &ExpandPlanHandler{
		loader:    loader,
		tasks:     tasks,
		materials: materials,
		clock:     clock,
		priceAsOf: priceAsOf,
	}
}

// Handle executes the ExpandPlan command.
// Only an invalid request yields an error; every other outcome is in the report.
func (h *ExpandPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ExpandPlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExpandPlanCommand")
	}
	if cmd.PlanID == uuid.Nil {
		return nil, shared.NewValidationError("plan_id", "required")
	}

	logger := common.LoggerFromContext(ctx)
	report := &ExpansionReport{PlanID: cmd.PlanID}

	if err := h.expand(ctx, cmd.PlanID, report); err != nil {
		report.Fail(err)
		logger.Log("ERROR", "Plan expansion failed", map[string]interface{}{
			"plan_id": cmd.PlanID.String(),
			"error":   err.Error(),
		})
	}

	h.logOutcome(logger, report)
	totalCost := 0.0
	if report.Cost != nil {
		totalCost = report.Cost.Overview.GrandTotal.InexactFloat64()
	}
	metrics.RecordExpansion(report.Label(), report.TasksCreated, report.TaskMaterialsCreated,
		report.SkipCounts(), totalCost)

	return report, nil
}

func (h *ExpandPlanHandler) expand(ctx context.Context, planID uuid.UUID, report *ExpansionReport) error {
	logger := common.LoggerFromContext(ctx)

	snapshot, reason, err := h.loader.LoadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if reason != "" {
		report.Abort(reason)
		return nil
	}

	exists, err := h.tasks.ExistsForPlanTasks(ctx, snapshot.TaskIDs())
	if err != nil {
		return fmt.Errorf("failed to check existing cultivation tasks: %w", err)
	}
	if exists {
		report.Abort(planning.AbortAlreadyExpanded)
		return nil
	}

	now := h.clock.Now()
	report.PriceAsOf = h.resolvePriceDate(snapshot, now)
	resolution, err := planning.ResolveMaterials(ctx, h.materials, snapshot.MaterialIDs(), report.PriceAsOf)
	if err != nil {
		return err
	}
	for _, id := range resolution.Missing {
		report.Warn("material %s not found in catalog", id)
	}
	for _, id := range resolution.Unpriced {
		report.Warn("material %s has no valid price as of %s", id, report.PriceAsOf.Format(time.DateOnly))
	}
	for _, id := range resolution.Overlapping {
		report.Warn("material %s has overlapping price rows, using the latest valid from", id)
	}
	if len(resolution.Resolved) == 0 {
		report.Abort(planning.AbortNoMaterials)
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
	report.EligibleCultivations = len(eligibility.Cultivations)
	if report.EligibleCultivations == 0 {
		report.Warn("no plot cultivation of group %s in season %s", snapshot.Group.ID, eligibility.SeasonID)
	}

	targets := h.targets(eligibility, report)
	tasks, items := h.generate(snapshot, targets, resolution, now, report)
	report.Cost = costing.Aggregate(items)

	if len(tasks) == 0 {
		return nil
	}

	if err := tasks[0].Start(now); err != nil {
		return fmt.Errorf("failed to promote first task: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("expansion cancelled before write: %w", err)
	}
	if err := h.tasks.CreateBatch(ctx, tasks); err != nil {
		return fmt.Errorf("failed to persist cultivation tasks: %w", err)
	}

	promoted := tasks[0].ID()
	report.PromotedTaskID = &promoted
	report.TasksCreated = len(tasks)
	for _, t := range tasks {
		report.TaskMaterialsCreated += len(t.Materials())
	}

	logger.Log("DEBUG", "Cultivation tasks persisted", map[string]interface{}{
		"plan_id":        planID.String(),
		"tasks":          report.TasksCreated,
		"task_materials": report.TaskMaterialsCreated,
		"promoted_task":  promoted.String(),
		"price_as_of":    report.PriceAsOf.Format(time.DateOnly),
		"grand_total":    report.Cost.Overview.GrandTotal.String(),
	})
	return nil
}

// target is an eligible cultivation with its resolved version
type target struct {
	cultivation cultivation.PlotCultivation
	versionID   *uuid.UUID
}

func (h *ExpandPlanHandler) targets(eligibility *planning.Eligibility, report *ExpansionReport) []target {
	targets := make([]target, 0, len(eligibility.Cultivations))
	for _, c := range eligibility.Cultivations {
		if !c.HasArea() {
			report.SkippedCultivations++
			report.Warn("plot cultivation %s has no planted area, skipped", c.ID)
			continue
		}

		t := target{cultivation: c}
		if v, ok := eligibility.Versions.ActiveFor(c.ID); ok {
			id := v.ID
			t.versionID = &id
		} else {
			report.VersionlessCultivations++
			report.Warn("plot cultivation %s has no active version, tasks created without one", c.ID)
		}
		targets = append(targets, t)
	}
	return targets
}

func (h *ExpandPlanHandler) generate(
	snapshot *plan.Snapshot,
	targets []target,
	resolution *planning.MaterialResolution,
	now time.Time,
	report *ExpansionReport,
) ([]*cultivation.CultivationTask, []costing.LineItem) {
	var (
		tasks []*cultivation.CultivationTask
		items []costing.LineItem
	)
	invalid := make(map[uuid.UUID]bool)

	for _, ref := range snapshot.TasksInSequence() {
		requirements := snapshot.MaterialsOf(ref.Task.ID)

		for _, tg := range targets {
			task, err := cultivation.NewCultivationTask(cultivation.NewTaskParams{
				PlanTaskID:           ref.Task.ID,
				PlotCultivationID:    tg.cultivation.ID,
				CultivationVersionID: tg.versionID,
				Name:                 ref.Task.Name,
				TaskType:             ref.Task.TaskType,
				ExecutionOrder:       ref.Task.SequenceOrder,
				ScheduledDate:        ref.Task.ScheduledDate,
				ScheduledEndDate:     ref.Task.ScheduledEndDate,
				CreatedAt:            now,
			})
			if err != nil {
				// The template itself is unusable: skip it on every plot, warn once
				report.SkippedTasks++
				if !invalid[ref.Task.ID] {
					invalid[ref.Task.ID] = true
					report.Warn("plan task %s in stage %q is invalid, skipped: %v", ref.Task.ID, ref.Stage.Name, err)
				}
				continue
			}

			for _, req := range requirements {
				resolved, ok := resolution.Get(req.MaterialID)
				if !ok {
					if _, known := resolution.Catalog.Get(req.MaterialID); known {
						report.MissingPriceLines++
					} else {
						report.MissingMaterialLines++
					}
					report.SkippedMaterials++
					continue
				}

				purchase := resolved.Policy.Apply(req.QuantityPerHectare, tg.cultivation.Area, resolved.Price.PricePerMaterial)
				priceID := resolved.Price.ID
				task.AddMaterial(cultivation.TaskMaterial{
					MaterialID:         req.MaterialID,
					PriceID:            &priceID,
					QuantityPerHectare: purchase.QuantityPerHectare,
					RequiredQuantity:   purchase.RequiredQuantity,
					Packages:           purchase.Packages,
					ActualQuantity:     purchase.ActualQuantity,
					UnitPrice:          purchase.UnitPrice,
					TotalCost:          purchase.TotalCost,
				})

				items = append(items, costing.LineItem{
					TaskID:             ref.Task.ID,
					CultivationTaskID:  task.ID(),
					TaskName:           ref.Task.Name,
					StageName:          ref.Stage.Name,
					StageSequence:      ref.Stage.SequenceOrder,
					TaskSequence:       ref.Task.SequenceOrder,
					MaterialID:         req.MaterialID,
					MaterialName:       resolved.Material.Name,
					Unit:               resolved.Material.Unit,
					PlotCultivationID:  tg.cultivation.ID,
					PlotID:             tg.cultivation.PlotID,
					VarietyID:          tg.cultivation.VarietyID,
					VarietyName:        tg.cultivation.VarietyName,
					Area:               tg.cultivation.Area,
					QuantityPerHectare: purchase.QuantityPerHectare,
					RequiredQuantity:   purchase.RequiredQuantity,
					Packages:           purchase.Packages,
					UnitPrice:          purchase.UnitPrice,
					TotalCost:          purchase.TotalCost,
				})
			}

			tasks = append(tasks, task)
		}
	}
	return tasks, items
}

func (h *ExpandPlanHandler) resolvePriceDate(snapshot *plan.Snapshot, now time.Time) time.Time {
	if h.priceAsOf != PriceAsOfPlanStart {
		return now
	}
	var (
		earliest time.Time
		found    bool
	)
	for _, ref := range snapshot.TasksInSequence() {
		d := ref.Task.ScheduledDate
		if d.IsZero() {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	if !found {
		return now
	}
	return earliest
}

func (h *ExpandPlanHandler) logOutcome(logger common.Logger, report *ExpansionReport) {
	metadata := map[string]interface{}{
		"plan_id":                  report.PlanID.String(),
		"outcome":                  report.Label(),
		"eligible_cultivations":    report.EligibleCultivations,
		"tasks_created":            report.TasksCreated,
		"task_materials_created":   report.TaskMaterialsCreated,
		"skipped_materials":        report.SkippedMaterials,
		"skipped_cultivations":     report.SkippedCultivations,
		"skipped_tasks":            report.SkippedTasks,
		"versionless_cultivations": report.VersionlessCultivations,
		"warnings":                 len(report.Warnings),
	}

	switch {
	case report.Failed:
		return
	case report.Aborted:
		metadata["reason"] = report.AbortReason
		logger.Log("WARNING", "Plan expansion aborted", metadata)
	default:
		for _, w := range report.Warnings {
			logger.Log("WARNING", w, map[string]interface{}{"plan_id": report.PlanID.String()})
		}
		logger.Log("INFO", "Plan expanded", metadata)
	}
}
