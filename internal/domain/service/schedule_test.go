package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

func TestInitialSchedule(t *testing.T) {
	coord := service.NewScheduleCoordinator()
	activatedAt := time.Date(2026, time.January, 10, 14, 30, 0, 0, time.UTC)

	rows := coord.InitialSchedule(activatedAt, 15)
	require.Len(t, rows, 4)

	byKind := map[valueobject.EventKind]valueobject.ScheduledEvent{}
	for _, row := range rows {
		byKind[row.Kind] = row
	}

	accrual := byKind[valueobject.EventAccrueInterest]
	assert.Equal(t, time.Date(2026, time.January, 11, 0, 0, 1, 0, time.UTC), accrual.NextRunAt)
	assert.False(t, accrual.Skip)

	dueCalc := byKind[valueobject.EventDueCalculation]
	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 2, 0, time.UTC), dueCalc.NextRunAt)
	assert.Equal(t, 15, dueCalc.Recurrence.Day)
	assert.True(t, dueCalc.Recurrence.LastValidDay)

	allowance := byKind[valueobject.EventAllowanceCheck]
	assert.Equal(t, time.Date(2027, time.January, 10, 0, 0, 3, 0, time.UTC), allowance.NextRunAt)

	delinquency := byKind[valueobject.EventDelinquencyCheck]
	assert.True(t, delinquency.Skip, "delinquency stays parked until an overdue event arms it")
}

func TestNextDaily(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	// Before the tick time on the same day.
	at := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 1, 0, time.UTC), coord.NextDaily(at))

	// At or after the tick time rolls to the next day.
	at = time.Date(2026, time.March, 5, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 6, 0, 0, 1, 0, time.UTC), coord.NextDaily(at))

	at = time.Date(2026, time.March, 5, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 6, 0, 0, 1, 0, time.UTC), coord.NextDaily(at))
}

func TestNextMonthly_ClampsShortMonths(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	// Billing day 31 from the end of January lands on the last day of February.
	at := time.Date(2026, time.January, 31, 0, 0, 2, 0, time.UTC)
	next := coord.NextMonthly(at, 31)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 2, 0, time.UTC), next)

	// And from there back to the true day in March.
	next = coord.NextMonthly(next, 31)
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 2, 0, time.UTC), next)
}

func TestNextMonthly_StrictlyAfter(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	// Exactly on this month's occurrence moves to the next month.
	at := time.Date(2026, time.April, 15, 0, 0, 2, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.May, 15, 0, 0, 2, 0, time.UTC), coord.NextMonthly(at, 15))

	// Earlier in the month stays in the month.
	at = time.Date(2026, time.April, 3, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 2, 0, time.UTC), coord.NextMonthly(at, 15))
}

func TestNextAnnual_LeapDay(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	at := time.Date(2028, time.February, 29, 0, 0, 3, 0, time.UTC)
	assert.Equal(t, time.Date(2029, time.February, 28, 0, 0, 3, 0, time.UTC), coord.NextAnnual(at))
}

func TestDelinquencyCheckAt(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	overdueAt := time.Date(2026, time.May, 1, 0, 0, 2, 0, time.UTC)
	got := coord.DelinquencyCheckAt(overdueAt, 5)
	assert.Equal(t, time.Date(2026, time.May, 6, 0, 0, 4, 0, time.UTC), got)
}

func TestParkDelinquencyCheck(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	update := coord.ParkDelinquencyCheck(time.Date(2026, time.May, 6, 0, 0, 4, 0, time.UTC))
	assert.Equal(t, valueobject.EventDelinquencyCheck, update.Kind)
	assert.True(t, update.Skip)
	assert.Equal(t, time.Date(2026, time.June, 6, 0, 0, 4, 0, time.UTC), update.NextRunAt)
}

func TestDueCalculationAfterBillingDayChange(t *testing.T) {
	coord := service.NewScheduleCoordinator()

	t.Run("at least one month after the previous cycle", func(t *testing.T) {
		lastDueCalc := time.Date(2026, time.June, 15, 0, 0, 2, 0, time.UTC)
		effectiveAt := time.Date(2026, time.June, 20, 10, 0, 0, 0, time.UTC)

		// Day 25 would land only ten days after the last cycle; the one-month
		// floor pushes it to July.
		got := coord.DueCalculationAfterBillingDayChange(25, effectiveAt, lastDueCalc)
		assert.Equal(t, time.Date(2026, time.July, 25, 0, 0, 2, 0, time.UTC), got)
	})

	t.Run("change effective far in the future wins", func(t *testing.T) {
		lastDueCalc := time.Date(2026, time.June, 15, 0, 0, 2, 0, time.UTC)
		effectiveAt := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

		got := coord.DueCalculationAfterBillingDayChange(25, effectiveAt, lastDueCalc)
		assert.Equal(t, time.Date(2026, time.September, 25, 0, 0, 2, 0, time.UTC), got)
	})

	t.Run("clamps the new day in short months", func(t *testing.T) {
		lastDueCalc := time.Date(2026, time.January, 15, 0, 0, 2, 0, time.UTC)
		effectiveAt := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)

		got := coord.DueCalculationAfterBillingDayChange(31, effectiveAt, lastDueCalc)
		assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 2, 0, time.UTC), got)
	})
}
