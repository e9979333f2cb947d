package steps

import (
	"context"
	"time"

	"github.com/cucumber/godog"

	"github.com/riceops/production-planning/internal/domain/distribution"
)

type distributionScheduleContext struct {
	anchor   time.Time
	settings distribution.ScheduleSettings
	schedule distribution.Schedule
}

func (ctx *distributionScheduleContext) reset() {
	*ctx = distributionScheduleContext{settings: distribution.DefaultScheduleSettings()}
}

func (ctx *distributionScheduleContext) anEarliestTaskEndDateOf(date string) error {
	anchor, err := parseDate(date)
	ctx.anchor = anchor
	return err
}

func (ctx *distributionScheduleContext) distributionWindowsOf(before, supervisor, farmer, grace int) error {
	ctx.settings = distribution.ScheduleSettings{
		DaysBeforeTask:               before,
		SupervisorConfirmationWindow: supervisor,
		FarmerConfirmationWindow:     farmer,
		GracePeriod:                  grace,
	}
	return nil
}

func (ctx *distributionScheduleContext) theScheduleIsComputed() error {
	ctx.schedule = distribution.ComputeSchedule(ctx.anchor, ctx.settings)
	return nil
}

func (ctx *distributionScheduleContext) theScheduleShouldBe(scheduled, deadline, supervisor, farmer string) error {
	if err := expectDate("scheduled date", ctx.schedule.ScheduledDate, scheduled); err != nil {
		return err
	}
	if err := expectDate("distribution deadline", ctx.schedule.DistributionDeadline, deadline); err != nil {
		return err
	}
	if err := expectDate("supervisor deadline", ctx.schedule.SupervisorConfirmationDeadline, supervisor); err != nil {
		return err
	}
	return expectDate("farmer deadline", ctx.schedule.FarmerConfirmationDeadline, farmer)
}

func (ctx *distributionScheduleContext) noDeadlineShouldPrecedeTheScheduledDate() error {
	return ctx.schedule.Validate()
}

// InitializeDistributionScheduleScenario registers schedule computation steps
func InitializeDistributionScheduleScenario(sc *godog.ScenarioContext) {
	scheduleCtx := &distributionScheduleContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		scheduleCtx.reset()
		return ctx, nil
	})

	sc.Step(`^an earliest task end date of (\d{4}-\d{2}-\d{2})$`, scheduleCtx.anEarliestTaskEndDateOf)
	sc.Step(`^distribution windows of (\d+) days before, (\d+) supervisor, (\d+) farmer and (\d+) grace$`, scheduleCtx.distributionWindowsOf)
	sc.Step(`^the schedule is computed$`, scheduleCtx.theScheduleIsComputed)
	sc.Step(`^the schedule should be (\S+) with deadline (\S+), supervisor deadline (\S+) and farmer deadline (\S+)$`, scheduleCtx.theScheduleShouldBe)
	sc.Step(`^no deadline should precede the scheduled date$`, scheduleCtx.noDeadlineShouldPrecedeTheScheduledDate)
}
