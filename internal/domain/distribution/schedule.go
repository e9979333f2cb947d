package distribution

import (
	"fmt"
	"time"

	"github.com/riceops/production-planning/internal/domain/shared"
)

// Settings keys read from the system settings store
const (
	SettingDaysBeforeTask               = "distribution.days_before_task"
	SettingSupervisorConfirmationWindow = "distribution.supervisor_confirmation_window"
	SettingFarmerConfirmationWindow     = "distribution.farmer_confirmation_window"
	SettingGracePeriod                  = "distribution.grace_period"
)

// Default windows, in days
const (
	DefaultDaysBeforeTask               = 3
	DefaultSupervisorConfirmationWindow = 2
	DefaultFarmerConfirmationWindow     = 1
	DefaultGracePeriod                  = 1
)

// ScheduleSettings holds the configurable windows, in whole days
type ScheduleSettings struct {
	DaysBeforeTask               int
	SupervisorConfirmationWindow int
	FarmerConfirmationWindow     int
	GracePeriod                  int
}

// DefaultScheduleSettings returns the built-in windows
func DefaultScheduleSettings() ScheduleSettings {
	return ScheduleSettings{
		DaysBeforeTask:               DefaultDaysBeforeTask,
		SupervisorConfirmationWindow: DefaultSupervisorConfirmationWindow,
		FarmerConfirmationWindow:     DefaultFarmerConfirmationWindow,
		GracePeriod:                  DefaultGracePeriod,
	}
}

// Schedule is the set of dates every distribution of one plan shares
type Schedule struct {
	AnchorDate                     time.Time
	ScheduledDate                  time.Time
	DistributionDeadline           time.Time
	SupervisorConfirmationDeadline time.Time
	FarmerConfirmationDeadline     time.Time
}

// ComputeSchedule derives the distribution dates from the earliest task end date.
//
//	scheduled  = anchor - daysBeforeTask
//	deadline   = scheduled + gracePeriod
//	supervisor = scheduled + supervisorWindow
//	farmer     = deadline + farmerWindow
func ComputeSchedule(anchor time.Time, s ScheduleSettings) Schedule {
	scheduled := shared.AddDays(anchor, -s.DaysBeforeTask)
	deadline := shared.AddDays(scheduled, s.GracePeriod)
	return Schedule{
		AnchorDate:                     anchor,
		ScheduledDate:                  scheduled,
		DistributionDeadline:           deadline,
		SupervisorConfirmationDeadline: shared.AddDays(scheduled, s.SupervisorConfirmationWindow),
		FarmerConfirmationDeadline:     shared.AddDays(deadline, s.FarmerConfirmationWindow),
	}
}

// Validate checks that no deadline precedes the scheduled date
func (s Schedule) Validate() error {
	if s.DistributionDeadline.Before(s.ScheduledDate) {
		return fmt.Errorf("distribution deadline %s precedes scheduled date %s",
			s.DistributionDeadline.Format(time.DateOnly), s.ScheduledDate.Format(time.DateOnly))
	}
	if s.SupervisorConfirmationDeadline.Before(s.ScheduledDate) {
		return fmt.Errorf("supervisor deadline %s precedes scheduled date %s",
			s.SupervisorConfirmationDeadline.Format(time.DateOnly), s.ScheduledDate.Format(time.DateOnly))
	}
	return nil
}
