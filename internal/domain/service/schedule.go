package service

import (
	"time"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// Fixed intra-day tick times. Accrual runs first so a due calculation on the
// same day always sees the day's interest already accrued.
var (
	accrualTime     = tickTime{0, 0, 1}
	dueCalcTime     = tickTime{0, 0, 2}
	allowanceTime   = tickTime{0, 0, 3}
	delinquencyTime = tickTime{0, 0, 4}
)

type tickTime struct {
	hour, minute, second int
}

// ScheduleCoordinator owns all next-run-time arithmetic for the recurring
// event kinds. Dates are computed in the supplied timestamps' location.
type ScheduleCoordinator struct{}

// NewScheduleCoordinator creates the coordinator.
func NewScheduleCoordinator() *ScheduleCoordinator {
	return &ScheduleCoordinator{}
}

// InitialSchedule builds the schedule rows created at account activation.
// Accrual starts the next day, the first due calculation lands on the billing
// day at least one month out, the allowance check runs on the activation
// anniversary, and the delinquency check stays parked until an overdue event
// arms it.
func (c *ScheduleCoordinator) InitialSchedule(activatedAt time.Time, billingDay int) []valueobject.ScheduledEvent {
	return []valueobject.ScheduledEvent{
		{
			Kind:       valueobject.EventAccrueInterest,
			NextRunAt:  c.NextDaily(activatedAt),
			Recurrence: valueobject.RecurrenceRule{Hour: accrualTime.hour, Minute: accrualTime.minute, Second: accrualTime.second},
		},
		{
			Kind:       valueobject.EventDueCalculation,
			NextRunAt:  c.monthlyOnOrAfter(activatedAt.AddDate(0, 1, 0), billingDay, dueCalcTime),
			Recurrence: valueobject.RecurrenceRule{Day: billingDay, Hour: dueCalcTime.hour, Minute: dueCalcTime.minute, Second: dueCalcTime.second, LastValidDay: true},
		},
		{
			Kind:       valueobject.EventAllowanceCheck,
			NextRunAt:  c.NextAnnual(activatedAt),
			Recurrence: valueobject.RecurrenceRule{Day: activatedAt.Day(), Hour: allowanceTime.hour, Minute: allowanceTime.minute, Second: allowanceTime.second, LastValidDay: true},
		},
		{
			Kind:       valueobject.EventDelinquencyCheck,
			NextRunAt:  c.NextDaily(activatedAt),
			Skip:       true,
			Recurrence: valueobject.RecurrenceRule{Hour: delinquencyTime.hour, Minute: delinquencyTime.minute, Second: delinquencyTime.second},
		},
	}
}

// NextDaily returns the next daily accrual tick strictly after the given time.
func (c *ScheduleCoordinator) NextDaily(after time.Time) time.Time {
	candidate := atTickTime(after, after.Day(), accrualTime)
	if candidate.After(after) {
		return candidate
	}
	return candidate.AddDate(0, 0, 1)
}

// NextMonthly returns the next monthly occurrence of the given day strictly
// after the given time, clamping to the last day of months too short for it.
func (c *ScheduleCoordinator) NextMonthly(after time.Time, day int) time.Time {
	candidate := atTickTime(after, clampDay(after.Year(), after.Month(), day), dueCalcTime)
	for !candidate.After(after) {
		next := time.Date(after.Year(), after.Month(), 1, 0, 0, 0, 0, after.Location()).AddDate(0, 1, 0)
		candidate = atTickTime(next, clampDay(next.Year(), next.Month(), day), dueCalcTime)
		after = next
	}
	return candidate
}

// NextAnnual returns the same calendar day one year later, clamped for
// February 29th starts.
func (c *ScheduleCoordinator) NextAnnual(after time.Time) time.Time {
	year := after.Year() + 1
	return time.Date(
		year, after.Month(), clampDay(year, after.Month(), after.Day()),
		allowanceTime.hour, allowanceTime.minute, allowanceTime.second, 0, after.Location(),
	)
}

// DelinquencyCheckAt returns the one-shot delinquency evaluation time at the
// end of the grace period.
func (c *ScheduleCoordinator) DelinquencyCheckAt(overdueAt time.Time, gracePeriodDays int) time.Time {
	d := overdueAt.AddDate(0, 0, gracePeriodDays)
	return time.Date(
		d.Year(), d.Month(), d.Day(),
		delinquencyTime.hour, delinquencyTime.minute, delinquencyTime.second, 0, d.Location(),
	)
}

// ParkDelinquencyCheck returns the skipped placeholder run a month out, used
// after an evaluation so the schedule row survives without firing.
func (c *ScheduleCoordinator) ParkDelinquencyCheck(evaluatedAt time.Time) valueobject.ScheduleUpdate {
	return valueobject.ScheduleUpdate{
		Kind:      valueobject.EventDelinquencyCheck,
		NextRunAt: c.DelinquencyCheckAt(evaluatedAt.AddDate(0, 1, 0), 0),
		Skip:      true,
	}
}

// DueCalculationAfterBillingDayChange computes where the due-calculation
// schedule moves when the billing day changes: the next occurrence of the new
// day that is both past the change and at least one month after the previous
// due calculation, so no cycle is billed twice or skipped.
func (c *ScheduleCoordinator) DueCalculationAfterBillingDayChange(
	newBillingDay int,
	effectiveAt, lastDueCalcAt time.Time,
) time.Time {
	threshold := effectiveAt
	if earliest := lastDueCalcAt.AddDate(0, 1, 0); earliest.After(threshold) {
		threshold = earliest
	}
	return c.monthlyOnOrAfter(threshold, newBillingDay, dueCalcTime)
}

// monthlyOnOrAfter is NextMonthly with on-or-after semantics at the threshold.
func (c *ScheduleCoordinator) monthlyOnOrAfter(threshold time.Time, day int, at tickTime) time.Time {
	candidate := atTickTime(threshold, clampDay(threshold.Year(), threshold.Month(), day), at)
	if candidate.Before(threshold) {
		return c.NextMonthly(threshold, day)
	}
	return candidate
}

func atTickTime(base time.Time, day int, at tickTime) time.Time {
	return time.Date(base.Year(), base.Month(), day, at.hour, at.minute, at.second, 0, base.Location())
}

// clampDay maps a nominal day onto a month, pulling the 29th/30th/31st back
// to the month's last day when needed.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}
