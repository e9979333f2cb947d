package helpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/application/planning/queries"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/cultivation"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/plan"
	"github.com/riceops/production-planning/internal/domain/settings"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// PriceEpoch is the ValidFrom of prices added by PlanWorld.AddMaterial
var PriceEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Requirement is a per-hectare material need of a fixture task
type Requirement struct {
	Material *material.Material
	PerHa    string
}

// PlanWorld is an in-memory planning universe: one group, one season, one plan.
// Mutate it with the Add* helpers, then call Commit to publish the plan snapshot.
type PlanWorld struct {
	Clock *shared.MockClock

	Plans         *MockPlanRepository
	Cultivations  *MockCultivationRepository
	Materials     *MockMaterialRepository
	Tasks         *MockTaskRepository
	Distributions *MockDistributionRepository
	Failures      *MockFailureRepository
	Settings      settings.MapStore

	PlanID   uuid.UUID
	GroupID  uuid.UUID
	SeasonID uuid.UUID

	Status    plan.Status
	NoSeason  bool
	stages    []plan.Stage
	tasks     []plan.Task
	materials []plan.TaskMaterial
	plotIDs   []uuid.UUID
}

// NewPlanWorld creates an empty world with an approved plan and a clock at now
func NewPlanWorld(now time.Time) *PlanWorld {
	plans := NewMockPlanRepository()
	cultivations := NewMockCultivationRepository()
	materials := NewMockMaterialRepository()

	return &PlanWorld{
		Clock:         shared.NewMockClock(now),
		Plans:         plans,
		Cultivations:  cultivations,
		Materials:     materials,
		Tasks:         NewMockTaskRepository(plans, cultivations, materials),
		Distributions: NewMockDistributionRepository(),
		Failures:      NewMockFailureRepository(),
		Settings:      settings.MapStore{},
		PlanID:        uuid.New(),
		GroupID:       uuid.New(),
		SeasonID:      uuid.New(),
		Status:        plan.StatusApproved,
	}
}

// AddMaterial adds a catalog entry with one open-ended price from PriceEpoch
func (w *PlanWorld) AddMaterial(name, packageSize string, partitionable bool, price string) *material.Material {
	m := &material.Material{
		ID:                uuid.New(),
		Name:              name,
		Type:              material.TypeFertilizer,
		Unit:              "kg",
		AmountPerMaterial: decimal.RequireFromString(packageSize),
		IsPartition:       partitionable,
	}
	w.Materials.AddMaterial(m)
	if price != "" {
		w.Materials.AddPrice(material.Price{
			ID:               uuid.New(),
			MaterialID:       m.ID,
			PricePerMaterial: decimal.RequireFromString(price),
			ValidFrom:        PriceEpoch,
		})
	}
	return m
}

// AddCultivation adds a plot to the group with a cultivation in the current season.
// A versioned cultivation gets one active version.
func (w *PlanWorld) AddCultivation(area string, versioned bool) cultivation.PlotCultivation {
	plotID := uuid.New()
	w.plotIDs = append(w.plotIDs, plotID)

	c := cultivation.PlotCultivation{
		ID:          uuid.New(),
		PlotID:      plotID,
		SeasonID:    w.SeasonID,
		VarietyID:   uuid.New(),
		VarietyName: "IR64",
		Area:        decimal.RequireFromString(area),
		CreatedAt:   w.Clock.Now(),
	}
	w.Cultivations.AddCultivation(c)
	if versioned {
		w.Cultivations.AddVersion(cultivation.Version{
			ID:                uuid.New(),
			PlotCultivationID: c.ID,
			VersionOrder:      1,
			IsActive:          true,
			CreatedAt:         w.Clock.Now(),
		})
	}
	return c
}

// AddTask appends a task to the named stage, creating the stage when new.
// The task is scheduled from start for two days.
func (w *PlanWorld) AddTask(stageName, taskName string, start time.Time, reqs ...Requirement) plan.Task {
	stage := w.stage(stageName)
	order := 1
	for _, t := range w.tasks {
		if t.StageID == stage.ID {
			order++
		}
	}

	end := start.AddDate(0, 0, 2)
	task := plan.Task{
		ID:               uuid.New(),
		StageID:          stage.ID,
		Name:             taskName,
		TaskType:         "FIELD_WORK",
		SequenceOrder:    order,
		ScheduledDate:    start,
		ScheduledEndDate: &end,
	}
	w.tasks = append(w.tasks, task)

	for _, r := range reqs {
		w.materials = append(w.materials, plan.TaskMaterial{
			ID:                 uuid.New(),
			TaskID:             task.ID,
			MaterialID:         r.Material.ID,
			QuantityPerHectare: decimal.RequireFromString(r.PerHa),
		})
	}
	return task
}

func (w *PlanWorld) stage(name string) plan.Stage {
	for _, s := range w.stages {
		if s.Name == name {
			return s
		}
	}
	s := plan.Stage{ID: uuid.New(), PlanID: w.PlanID, Name: name, SequenceOrder: len(w.stages) + 1}
	w.stages = append(w.stages, s)
	return s
}

// Commit publishes the current plan snapshot to the plan repository
func (w *PlanWorld) Commit() *plan.Snapshot {
	group := plan.Group{ID: w.GroupID, Name: "Tani Makmur", PlotIDs: w.plotIDs}
	if !w.NoSeason {
		season := w.SeasonID
		group.CurrentSeasonID = &season
	}
	s := plan.NewSnapshot(
		plan.Plan{ID: w.PlanID, Name: "Wet season plan", GroupID: w.GroupID, Status: w.Status, CreatedAt: w.Clock.Now()},
		group, w.stages, w.tasks, w.materials,
	)
	w.Plans.AddSnapshot(s)
	return s
}

// Loader returns an activation loader over the world's repositories
func (w *PlanWorld) Loader() *planning.ActivationLoader {
	return planning.NewActivationLoader(w.Plans, w.Cultivations)
}

// ExpandHandler returns an expansion handler resolving prices at activation time
func (w *PlanWorld) ExpandHandler() *commands.ExpandPlanHandler {
	return commands.NewExpandPlanHandler(w.Loader(), w.Tasks, w.Materials, w.Clock, commands.PriceAsOfActivation)
}

// DistributeHandler returns a distribution handler with default schedule settings
func (w *PlanWorld) DistributeHandler() *commands.ScheduleDistributionsHandler {
	return commands.NewScheduleDistributionsHandler(w.Loader(), w.Distributions, w.Materials, w.Settings,
		distribution.DefaultScheduleSettings(), w.Clock)
}

// Mediator returns a mediator with every planning handler registered
func (w *PlanWorld) Mediator() common.Mediator {
	m := common.NewMediator()
	m.Use(common.LoggingMiddleware)

	must(common.RegisterHandler[*commands.ExpandPlanCommand](m, w.ExpandHandler()))
	must(common.RegisterHandler[*commands.ScheduleDistributionsCommand](m, w.DistributeHandler()))
	must(common.RegisterHandler[*commands.UpdateDistributionStatusCommand](m,
		commands.NewUpdateDistributionStatusHandler(w.Distributions, w.Clock)))
	must(common.RegisterHandler[*commands.RetryFailedActivationsCommand](m,
		commands.NewRetryFailedActivationsHandler(w.Failures, m, nil, activation.DefaultBackoffPolicy(), w.Clock)))
	must(common.RegisterHandler[*queries.GetPlanCostAnalysisQuery](m, queries.NewGetPlanCostAnalysisHandler(w.Tasks)))
	must(common.RegisterHandler[*queries.GetMaterialPriceQuery](m, queries.NewGetMaterialPriceHandler(w.Materials, w.Clock)))
	return m
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ClearEndDates removes the scheduled end date of every task
func (w *PlanWorld) ClearEndDates() {
	for i := range w.tasks {
		w.tasks[i].ScheduledEndDate = nil
	}
}
