package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/adapters/persistence"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/application/planning/events"
	"github.com/riceops/production-planning/internal/application/planning/queries"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/cultivation"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/material"
	"github.com/riceops/production-planning/internal/domain/plan"
	"github.com/riceops/production-planning/internal/domain/shared"
	"github.com/riceops/production-planning/test/helpers"
)

var errTaskStoreUnavailable = errors.New("task store unavailable")

// flakyTaskRepository fails CreateBatch a set number of times before delegating
type flakyTaskRepository struct {
	cultivation.TaskRepository

	mu       sync.Mutex
	failures int
}

func (r *flakyTaskRepository) CreateBatch(ctx context.Context, tasks []*cultivation.CultivationTask) error {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return errTaskStoreUnavailable
	}
	r.mu.Unlock()
	return r.TaskRepository.CreateBatch(ctx, tasks)
}

type planActivationContext struct {
	world        *helpers.PlanWorld
	repos        *helpers.TestRepositories
	materials    map[string]*material.Material
	cultivations map[string]cultivation.PlotCultivation

	taskFailures int
	policy       activation.BackoffPolicy

	seeded     bool
	mediator   common.Mediator
	dispatcher *events.ActivationDispatcher

	expansion    *commands.ExpansionReport
	distribution *commands.DistributionReport
	activation   *events.ActivationResult
	retry        *commands.RetryReport
}

func (ctx *planActivationContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	*ctx = planActivationContext{
		world:        helpers.NewPlanWorld(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)),
		repos:        helpers.NewTestRepositories(helpers.SharedTestDB),
		materials:    make(map[string]*material.Material),
		cultivations: make(map[string]cultivation.PlotCultivation),
		policy:       activation.DefaultBackoffPolicy(),
	}
	return nil
}

// ensureSeeded writes the fixture world to the database and wires the handlers.
// Given steps that shape the world must run before the first action.
func (ctx *planActivationContext) ensureSeeded() error {
	if ctx.seeded {
		return nil
	}
	w := ctx.world
	w.Commit()
	if err := w.Seed(context.Background(), helpers.SharedTestDB); err != nil {
		return err
	}

	tasks := &flakyTaskRepository{TaskRepository: ctx.repos.Tasks, failures: ctx.taskFailures}
	cache := persistence.NewCachedSettingsStore(ctx.repos.Settings, w.Clock, time.Minute)
	loader := planning.NewActivationLoader(ctx.repos.Plans, ctx.repos.Cultivations)

	m := common.NewMediator()
	m.Use(common.LoggingMiddleware)
	registrations := []error{
		common.RegisterHandler[*commands.ExpandPlanCommand](m,
			commands.NewExpandPlanHandler(loader, tasks, ctx.repos.Materials, w.Clock, commands.PriceAsOfActivation)),
		common.RegisterHandler[*commands.ScheduleDistributionsCommand](m,
			commands.NewScheduleDistributionsHandler(loader, ctx.repos.Distributions, ctx.repos.Materials, cache,
				distribution.DefaultScheduleSettings(), w.Clock)),
		common.RegisterHandler[*commands.UpdateDistributionStatusCommand](m,
			commands.NewUpdateDistributionStatusHandler(ctx.repos.Distributions, w.Clock)),
		common.RegisterHandler[*commands.RetryFailedActivationsCommand](m,
			commands.NewRetryFailedActivationsHandler(ctx.repos.Failures, m, nil, ctx.policy, w.Clock)),
		common.RegisterHandler[*queries.GetPlanCostAnalysisQuery](m,
			queries.NewGetPlanCostAnalysisHandler(ctx.repos.Tasks)),
	}
	if err := errors.Join(registrations...); err != nil {
		return err
	}

	ctx.mediator = m
	ctx.dispatcher = events.NewActivationDispatcher(m, ctx.repos.Failures, ctx.policy, w.Clock)
	ctx.seeded = true
	return nil
}

func (ctx *planActivationContext) requireUnseeded(what string) error {
	if ctx.seeded {
		return fmt.Errorf("cannot change %s after the plan was activated", what)
	}
	return nil
}

// Given

func (ctx *planActivationContext) theCurrentTimeIs(value string) error {
	now, err := time.ParseInLocation(dateTimeLayout, value, time.UTC)
	if err != nil {
		return err
	}
	ctx.world.Clock.SetTime(now)
	return nil
}

func (ctx *planActivationContext) materialPricedAt(name, size, price string) error {
	if err := ctx.requireUnseeded("the catalog"); err != nil {
		return err
	}
	ctx.materials[name] = ctx.world.AddMaterial(name, size, false, price)
	return nil
}

func (ctx *planActivationContext) materialWithoutPrice(name, size string) error {
	return ctx.materialPricedAt(name, size, "")
}

func (ctx *planActivationContext) addTask(taskName, stageName, endDate string, reqs ...helpers.Requirement) error {
	if err := ctx.requireUnseeded("the plan"); err != nil {
		return err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return err
	}
	ctx.world.AddTask(stageName, taskName, shared.AddDays(end, -2), reqs...)
	return nil
}

func (ctx *planActivationContext) taskNeedsMaterial(taskName, stageName, endDate, perHa, materialName string) error {
	m, ok := ctx.materials[materialName]
	if !ok {
		return fmt.Errorf("unknown material %q", materialName)
	}
	return ctx.addTask(taskName, stageName, endDate, helpers.Requirement{Material: m, PerHa: perHa})
}

func (ctx *planActivationContext) taskNeedsNoMaterial(taskName, stageName, endDate string) error {
	return ctx.addTask(taskName, stageName, endDate)
}

func (ctx *planActivationContext) plotIsCultivated(label, area, withoutVersion string) error {
	if err := ctx.requireUnseeded("the cultivations"); err != nil {
		return err
	}
	ctx.cultivations[label] = ctx.world.AddCultivation(area, withoutVersion == "")
	return nil
}

func (ctx *planActivationContext) thePlanIsStillADraft() error {
	ctx.world.Status = plan.StatusDraft
	return ctx.requireUnseeded("the plan status")
}

func (ctx *planActivationContext) theGroupHasNoCurrentSeason() error {
	ctx.world.NoSeason = true
	return ctx.requireUnseeded("the group")
}

func (ctx *planActivationContext) noTaskHasAnEndDate() error {
	ctx.world.ClearEndDates()
	return ctx.requireUnseeded("the plan")
}

func (ctx *planActivationContext) systemSettingIs(key, value string) error {
	ctx.world.Settings[key] = value
	return ctx.requireUnseeded("the settings")
}

func (ctx *planActivationContext) theTaskStoreFails(times int) error {
	ctx.taskFailures = times
	return ctx.requireUnseeded("the task store")
}

func (ctx *planActivationContext) retriesGiveUpAfter(attempts int) error {
	ctx.policy.MaxAttempts = attempts
	return ctx.requireUnseeded("the retry policy")
}

// When

func (ctx *planActivationContext) thePlanIsExpanded() error {
	if err := ctx.ensureSeeded(); err != nil {
		return err
	}
	response, err := ctx.mediator.Send(context.Background(), &commands.ExpandPlanCommand{PlanID: ctx.world.PlanID})
	if err != nil {
		return err
	}
	report, ok := response.(*commands.ExpansionReport)
	if !ok {
		return fmt.Errorf("unexpected response %T", response)
	}
	ctx.expansion = report
	return nil
}

func (ctx *planActivationContext) thePlanHasBeenExpanded() error {
	if err := ctx.thePlanIsExpanded(); err != nil {
		return err
	}
	return ctx.theExpansionShouldSucceed()
}

func (ctx *planActivationContext) distributionsAreScheduled() error {
	if err := ctx.ensureSeeded(); err != nil {
		return err
	}
	response, err := ctx.mediator.Send(context.Background(), &commands.ScheduleDistributionsCommand{PlanID: ctx.world.PlanID})
	if err != nil {
		return err
	}
	report, ok := response.(*commands.DistributionReport)
	if !ok {
		return fmt.Errorf("unexpected response %T", response)
	}
	ctx.distribution = report
	return nil
}

func (ctx *planActivationContext) distributionsHaveBeenScheduled() error {
	if err := ctx.distributionsAreScheduled(); err != nil {
		return err
	}
	return ctx.theSchedulingShouldSucceed()
}

func (ctx *planActivationContext) thePlanIsApproved() error {
	if err := ctx.ensureSeeded(); err != nil {
		return err
	}
	result, err := ctx.dispatcher.HandlePlanApproved(context.Background(), activation.PlanApprovedEvent{
		PlanID:     ctx.world.PlanID,
		ApprovedAt: ctx.world.Clock.Now(),
	})
	if err != nil {
		return err
	}
	ctx.activation = result
	ctx.expansion = result.Expansion
	ctx.distribution = result.Distribution
	return nil
}

func (ctx *planActivationContext) timePasses(amount int, unit string) error {
	d := time.Duration(amount) * time.Second
	if strings.HasPrefix(unit, "minute") {
		d = time.Duration(amount) * time.Minute
	}
	ctx.world.Clock.Advance(d)
	return nil
}

func (ctx *planActivationContext) failedActivationsAreRetried() error {
	if err := ctx.ensureSeeded(); err != nil {
		return err
	}
	response, err := ctx.mediator.Send(context.Background(), &commands.RetryFailedActivationsCommand{Limit: 10})
	if err != nil {
		return err
	}
	report, ok := response.(*commands.RetryReport)
	if !ok {
		return fmt.Errorf("unexpected response %T", response)
	}
	ctx.retry = report
	return nil
}

func (ctx *planActivationContext) theDistributionIsRejected(materialName, plot, reason string) error {
	d, err := ctx.findDistribution(materialName, plot)
	if err != nil {
		return err
	}
	_, err = ctx.mediator.Send(context.Background(), &commands.UpdateDistributionStatusCommand{
		DistributionID: d.ID(),
		Action:         commands.ActionReject,
		Reason:         reason,
	})
	return err
}

// Then: outcomes

func checkSucceeded(what string, outcome *planning.Outcome) error {
	if !outcome.Succeeded() {
		return fmt.Errorf("expected %s to succeed, got %s", what, outcome.Label())
	}
	return nil
}

func checkAborted(what string, outcome *planning.Outcome, reason string) error {
	if !outcome.Aborted || outcome.AbortReason != reason {
		return fmt.Errorf("expected %s to abort with %q, got %s", what, reason, outcome.Label())
	}
	return nil
}

func checkWarned(what string, outcome *planning.Outcome, fragment string) error {
	for _, w := range outcome.Warnings {
		if strings.Contains(w, fragment) {
			return nil
		}
	}
	return fmt.Errorf("expected a %s warning containing %q, got %v", what, fragment, outcome.Warnings)
}

func (ctx *planActivationContext) expansionOutcome() (*planning.Outcome, error) {
	if ctx.expansion == nil {
		return nil, fmt.Errorf("the plan was not expanded")
	}
	return &ctx.expansion.Outcome, nil
}

func (ctx *planActivationContext) distributionOutcome() (*planning.Outcome, error) {
	if ctx.distribution == nil {
		return nil, fmt.Errorf("distributions were not scheduled")
	}
	return &ctx.distribution.Outcome, nil
}

func (ctx *planActivationContext) theExpansionShouldSucceed() error {
	outcome, err := ctx.expansionOutcome()
	if err != nil {
		return err
	}
	return checkSucceeded("expansion", outcome)
}

func (ctx *planActivationContext) theExpansionShouldAbortWith(reason string) error {
	outcome, err := ctx.expansionOutcome()
	if err != nil {
		return err
	}
	return checkAborted("expansion", outcome, reason)
}

func (ctx *planActivationContext) theExpansionShouldWarn(fragment string) error {
	outcome, err := ctx.expansionOutcome()
	if err != nil {
		return err
	}
	return checkWarned("expansion", outcome, fragment)
}

func (ctx *planActivationContext) theSchedulingShouldSucceed() error {
	outcome, err := ctx.distributionOutcome()
	if err != nil {
		return err
	}
	return checkSucceeded("scheduling", outcome)
}

func (ctx *planActivationContext) theSchedulingShouldAbortWith(reason string) error {
	outcome, err := ctx.distributionOutcome()
	if err != nil {
		return err
	}
	return checkAborted("scheduling", outcome, reason)
}

func (ctx *planActivationContext) theSchedulingShouldWarn(fragment string) error {
	outcome, err := ctx.distributionOutcome()
	if err != nil {
		return err
	}
	return checkWarned("scheduling", outcome, fragment)
}

func (ctx *planActivationContext) theSchedulingShouldReport(created, existing int) error {
	if ctx.distribution == nil {
		return fmt.Errorf("distributions were not scheduled")
	}
	if ctx.distribution.Created != created || ctx.distribution.SkippedExisting != existing {
		return fmt.Errorf("expected %d created and %d already scheduled, got %d and %d",
			created, existing, ctx.distribution.Created, ctx.distribution.SkippedExisting)
	}
	return nil
}

// Then: cultivation tasks and costs

func (ctx *planActivationContext) cultivationTasks() ([]*cultivation.CultivationTask, error) {
	snapshot, err := ctx.repos.Plans.FindSnapshot(context.Background(), ctx.world.PlanID)
	if err != nil {
		return nil, err
	}
	return ctx.repos.Tasks.FindByPlanTasks(context.Background(), snapshot.TaskIDs())
}

func (ctx *planActivationContext) cultivationTasksShouldExist(count int) error {
	tasks, err := ctx.cultivationTasks()
	if err != nil {
		return err
	}
	if len(tasks) != count {
		return fmt.Errorf("expected %d cultivation tasks, got %d", count, len(tasks))
	}
	return nil
}

func (ctx *planActivationContext) plotShouldHaveNoCultivationTasks(plot string) error {
	c, ok := ctx.cultivations[plot]
	if !ok {
		return fmt.Errorf("unknown plot %q", plot)
	}
	tasks, err := ctx.cultivationTasks()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.PlotCultivationID() == c.ID {
			return fmt.Errorf("plot %s has cultivation task %s", plot, t.Name())
		}
	}
	return nil
}

func (ctx *planActivationContext) exactlyOneTaskShouldBeInProgress() error {
	tasks, err := ctx.cultivationTasks()
	if err != nil {
		return err
	}
	inProgress := 0
	for _, t := range tasks {
		if t.Status() == cultivation.TaskStatusInProgress {
			inProgress++
		}
	}
	if inProgress != 1 {
		return fmt.Errorf("expected 1 task in progress, got %d", inProgress)
	}
	return nil
}

func (ctx *planActivationContext) plotShouldNeedPackages(plot, packages, materialName, cost string) error {
	c, ok := ctx.cultivations[plot]
	if !ok {
		return fmt.Errorf("unknown plot %q", plot)
	}
	m, ok := ctx.materials[materialName]
	if !ok {
		return fmt.Errorf("unknown material %q", materialName)
	}
	lines, err := ctx.repos.Tasks.FindMaterialLinesByPlan(context.Background(), ctx.world.PlanID)
	if err != nil {
		return err
	}
	totalPackages, totalCost := decimal.Zero, decimal.Zero
	found := false
	for _, line := range lines {
		if line.PlotCultivationID != c.ID || line.MaterialID != m.ID {
			continue
		}
		found = true
		totalPackages = totalPackages.Add(line.Packages)
		totalCost = totalCost.Add(line.TotalCost)
	}
	if !found {
		return fmt.Errorf("plot %s has no %s lines", plot, materialName)
	}
	if err := expectDecimal("packages", totalPackages, packages); err != nil {
		return err
	}
	return expectDecimal("cost", totalCost, cost)
}

func (ctx *planActivationContext) costAnalysis() (*queries.GetPlanCostAnalysisResponse, error) {
	response, err := ctx.mediator.Send(context.Background(), &queries.GetPlanCostAnalysisQuery{PlanID: ctx.world.PlanID})
	if err != nil {
		return nil, err
	}
	analysis, ok := response.(*queries.GetPlanCostAnalysisResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T", response)
	}
	return analysis, nil
}

func (ctx *planActivationContext) thePlanShouldCostInTotal(total string) error {
	analysis, err := ctx.costAnalysis()
	if err != nil {
		return err
	}
	return expectDecimal("grand total", analysis.Report.Overview.GrandTotal, total)
}

func (ctx *planActivationContext) theTaskTotalsShouldAddUp() error {
	analysis, err := ctx.costAnalysis()
	if err != nil {
		return err
	}
	sum := decimal.Zero
	for _, t := range analysis.Report.Tasks {
		sum = sum.Add(t.TotalCost)
	}
	if !sum.Equal(analysis.Report.Overview.GrandTotal) {
		return fmt.Errorf("task totals sum to %s, grand total is %s", sum, analysis.Report.Overview.GrandTotal)
	}
	return nil
}

// Then: distributions

func (ctx *planActivationContext) distributionsOf(plot string) ([]*distribution.MaterialDistribution, error) {
	c, ok := ctx.cultivations[plot]
	if !ok {
		return nil, fmt.Errorf("unknown plot %q", plot)
	}
	return ctx.repos.Distributions.FindByPlotCultivations(context.Background(), []uuid.UUID{c.ID})
}

func (ctx *planActivationContext) findDistribution(materialName, plot string) (*distribution.MaterialDistribution, error) {
	m, ok := ctx.materials[materialName]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", materialName)
	}
	distributions, err := ctx.distributionsOf(plot)
	if err != nil {
		return nil, err
	}
	for _, d := range distributions {
		if d.MaterialID() == m.ID && d.Status() != distribution.StatusRejected {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no active %s distribution for plot %s", materialName, plot)
}

func (ctx *planActivationContext) plotShouldHaveDistributions(plot string, count int) error {
	distributions, err := ctx.distributionsOf(plot)
	if err != nil {
		return err
	}
	if len(distributions) != count {
		return fmt.Errorf("expected %d distributions for plot %s, got %d", count, plot, len(distributions))
	}
	return nil
}

func (ctx *planActivationContext) theDistributionShouldCarry(materialName, plot, quantity, packages string) error {
	d, err := ctx.findDistribution(materialName, plot)
	if err != nil {
		return err
	}
	if err := expectDecimal("quantity", d.Quantity(), quantity); err != nil {
		return err
	}
	return expectDecimal("packages", d.Packages(), packages)
}

func (ctx *planActivationContext) theDistributionsShouldBeScheduledOn(scheduled, deadline, supervisor string) error {
	for plot := range ctx.cultivations {
		distributions, err := ctx.distributionsOf(plot)
		if err != nil {
			return err
		}
		for _, d := range distributions {
			if err := expectDate("scheduled date", d.ScheduledDate(), scheduled); err != nil {
				return err
			}
			if err := expectDate("distribution deadline", d.DistributionDeadline(), deadline); err != nil {
				return err
			}
			if err := expectDate("supervisor deadline", d.SupervisorConfirmationDeadline(), supervisor); err != nil {
				return err
			}
		}
	}
	return nil
}

// Then: retries

func (ctx *planActivationContext) pendingFailures() ([]*activation.FailedActivation, error) {
	return ctx.repos.Failures.FindDue(context.Background(), ctx.world.Clock.Now().AddDate(1, 0, 0), 0)
}

func (ctx *planActivationContext) noActivationShouldBeQueued() error {
	if ctx.activation != nil && len(ctx.activation.DeadLettered) > 0 {
		return fmt.Errorf("expected no dead-lettered engines, got %v", ctx.activation.DeadLettered)
	}
	pending, err := ctx.pendingFailures()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("expected no pending failures, got %d", len(pending))
	}
	return nil
}

func (ctx *planActivationContext) theExpansionRunShouldBeQueued() error {
	pending, err := ctx.pendingFailures()
	if err != nil {
		return err
	}
	for _, f := range pending {
		if f.PlanID() == ctx.world.PlanID && f.Engine() == activation.EngineExpansion {
			return nil
		}
	}
	return fmt.Errorf("expected a pending expansion failure, got %d pending", len(pending))
}

func (ctx *planActivationContext) retryReport() (*commands.RetryReport, error) {
	if ctx.retry == nil {
		return nil, fmt.Errorf("no retry sweep has run")
	}
	return ctx.retry, nil
}

func (ctx *planActivationContext) theRetryShouldFindDue(due int) error {
	report, err := ctx.retryReport()
	if err != nil {
		return err
	}
	if report.Due != due {
		return fmt.Errorf("expected %d due, got %d", due, report.Due)
	}
	return nil
}

func (ctx *planActivationContext) theRetryShouldResolve(resolved, rescheduled int) error {
	report, err := ctx.retryReport()
	if err != nil {
		return err
	}
	if report.Resolved != resolved || report.Rescheduled != rescheduled {
		return fmt.Errorf("expected %d resolved and %d rescheduled, got %d and %d",
			resolved, rescheduled, report.Resolved, report.Rescheduled)
	}
	return nil
}

func (ctx *planActivationContext) theRetryShouldAbandon(abandoned int) error {
	report, err := ctx.retryReport()
	if err != nil {
		return err
	}
	if report.Abandoned != abandoned {
		return fmt.Errorf("expected %d abandoned, got %d", abandoned, report.Abandoned)
	}
	return nil
}

// InitializePlanActivationScenario registers steps that run the engines against the shared database
func InitializePlanActivationScenario(sc *godog.ScenarioContext) {
	planCtx := &planActivationContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, planCtx.reset()
	})

	const date = `(\d{4}-\d{2}-\d{2})`

	sc.Step(`^the current time is (\d{4}-\d{2}-\d{2} \d{2}:\d{2})$`, planCtx.theCurrentTimeIs)
	sc.Step(`^material "([^"]*)" in packages of (\S+) kg priced at (\d+)$`, planCtx.materialPricedAt)
	sc.Step(`^material "([^"]*)" in packages of (\S+) kg without a price$`, planCtx.materialWithoutPrice)
	sc.Step(`^task "([^"]*)" in stage "([^"]*)" ends on `+date+` and needs (\S+) per hectare of "([^"]*)"$`, planCtx.taskNeedsMaterial)
	sc.Step(`^task "([^"]*)" in stage "([^"]*)" ends on `+date+` and needs no material$`, planCtx.taskNeedsNoMaterial)
	sc.Step(`^plot "([^"]*)" is cultivated on (\S+) ha( without an active version)?$`, planCtx.plotIsCultivated)
	sc.Step(`^the plan is still a draft$`, planCtx.thePlanIsStillADraft)
	sc.Step(`^the group has no current season$`, planCtx.theGroupHasNoCurrentSeason)
	sc.Step(`^no task has an end date$`, planCtx.noTaskHasAnEndDate)
	sc.Step(`^system setting "([^"]*)" is "([^"]*)"$`, planCtx.systemSettingIs)
	sc.Step(`^the task store fails (\d+) times?$`, planCtx.theTaskStoreFails)
	sc.Step(`^retries give up after (\d+) attempts$`, planCtx.retriesGiveUpAfter)
	sc.Step(`^the plan has been expanded$`, planCtx.thePlanHasBeenExpanded)
	sc.Step(`^distributions have been scheduled for the plan$`, planCtx.distributionsHaveBeenScheduled)
	sc.Step(`^the plan has been approved$`, planCtx.thePlanIsApproved)

	sc.Step(`^the plan is expanded$`, planCtx.thePlanIsExpanded)
	sc.Step(`^distributions are scheduled for the plan$`, planCtx.distributionsAreScheduled)
	sc.Step(`^the plan is approved$`, planCtx.thePlanIsApproved)
	sc.Step(`^(\d+) (seconds?|minutes?) pass(?:es)?$`, planCtx.timePasses)
	sc.Step(`^failed activations are retried$`, planCtx.failedActivationsAreRetried)
	sc.Step(`^the distribution of "([^"]*)" to plot "([^"]*)" is rejected because "([^"]*)"$`, planCtx.theDistributionIsRejected)

	sc.Step(`^the expansion should succeed$`, planCtx.theExpansionShouldSucceed)
	sc.Step(`^the expansion should abort with "([^"]*)"$`, planCtx.theExpansionShouldAbortWith)
	sc.Step(`^the expansion should warn "([^"]*)"$`, planCtx.theExpansionShouldWarn)
	sc.Step(`^the scheduling should succeed$`, planCtx.theSchedulingShouldSucceed)
	sc.Step(`^the scheduling should abort with "([^"]*)"$`, planCtx.theSchedulingShouldAbortWith)
	sc.Step(`^the scheduling should warn "([^"]*)"$`, planCtx.theSchedulingShouldWarn)
	sc.Step(`^the scheduling should report (\d+) created and (\d+) already scheduled$`, planCtx.theSchedulingShouldReport)

	sc.Step(`^(\d+) cultivation tasks should exist for the plan$`, planCtx.cultivationTasksShouldExist)
	sc.Step(`^plot "([^"]*)" should have no cultivation tasks$`, planCtx.plotShouldHaveNoCultivationTasks)
	sc.Step(`^exactly one cultivation task should be in progress$`, planCtx.exactlyOneTaskShouldBeInProgress)
	sc.Step(`^plot "([^"]*)" should need (\S+) packages of "([^"]*)" costing (\d+)$`, planCtx.plotShouldNeedPackages)
	sc.Step(`^the plan should cost (\d+) in total$`, planCtx.thePlanShouldCostInTotal)
	sc.Step(`^the task totals should add up to the grand total$`, planCtx.theTaskTotalsShouldAddUp)

	sc.Step(`^plot "([^"]*)" should have (\d+) distributions?$`, planCtx.plotShouldHaveDistributions)
	sc.Step(`^the distribution of "([^"]*)" to plot "([^"]*)" should carry (\S+) kg in (\S+) packages$`, planCtx.theDistributionShouldCarry)
	sc.Step(`^the distributions should be scheduled on `+date+` with deadline `+date+` and supervisor deadline `+date+`$`, planCtx.theDistributionsShouldBeScheduledOn)

	sc.Step(`^no activation should be queued for retry$`, planCtx.noActivationShouldBeQueued)
	sc.Step(`^the expansion run should be queued for retry$`, planCtx.theExpansionRunShouldBeQueued)
	sc.Step(`^the retry should find (\d+) due$`, planCtx.theRetryShouldFindDue)
	sc.Step(`^the retry should resolve (\d+) and reschedule (\d+)$`, planCtx.theRetryShouldResolve)
	sc.Step(`^the retry should abandon (\d+)$`, planCtx.theRetryShouldAbandon)
}
