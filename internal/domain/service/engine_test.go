package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

func newEngine() *service.LifecycleEngine {
	calc := service.NewAmortizationCalculator()
	schedule := service.NewScheduleCoordinator()
	return service.NewLifecycleEngine(
		service.NewInterestAccrualEngine(),
		service.NewBillingCycleStateMachine(calc),
		service.NewRepaymentAllocator(),
		service.NewDelinquencyMonitor(schedule),
		schedule,
	)
}

func invocation(t *testing.T, kind valueobject.EventKind, balances map[valueobject.BucketAddress]decimal.Decimal) service.Invocation {
	t.Helper()
	return service.Invocation{
		Kind:        kind,
		EffectiveAt: time.Date(2026, time.April, 15, 0, 0, 2, 0, time.UTC),
		Account:     testAccount(t, testParams()),
		Config:      testConfig(t),
		Balances:    testSnapshot(balances),
	}
}

func TestExecute_UnknownKindIsAnError(t *testing.T) {
	engine := newEngine()
	_, err := engine.Execute(invocation(t, "SOMETHING_ELSE", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event kind")
}

func TestExecute_Activation(t *testing.T) {
	engine := newEngine()
	out, err := engine.Execute(invocation(t, valueobject.EventActivated, nil))
	require.NoError(t, err)
	assertBalanced(t, out.Postings)

	after := testSnapshot(nil).Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipal).Equal(decimal.NewFromInt(300000)))

	// 10% of the principal seeds the annual overpayment allowance.
	assert.True(t, after.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Equal(decimal.NewFromInt(30000)))

	require.Len(t, out.NewSchedules, 4)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, valueobject.NotificationActivated, out.Notifications[0].Type)
}

func TestExecute_AccrualSchedulesNextDay(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventAccrueInterest, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal: decimal.NewFromInt(300000),
	})
	in.EffectiveAt = time.Date(2026, time.April, 15, 0, 0, 1, 0, time.UTC)

	out, err := engine.Execute(in)
	require.NoError(t, err)
	require.Len(t, out.Postings, 1)

	require.Len(t, out.ScheduleUpdates, 1)
	assert.Equal(t, valueobject.EventAccrueInterest, out.ScheduleUpdates[0].Kind)
	assert.Equal(t, time.Date(2026, time.April, 16, 0, 0, 1, 0, time.UTC), out.ScheduleUpdates[0].NextRunAt)
}

func TestExecute_DueCalculationArmsDelinquencyOnOverdue(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventDueCalculation, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:           decimal.NewFromInt(250000),
		valueobject.AddrPrincipalDue:        decimal.NewFromInt(1000),
		valueobject.AddrEMI:                 dec("25135.62"),
		valueobject.AddrDueCalcEventCounter: decimal.NewFromInt(3),
	})

	out, err := engine.Execute(in)
	require.NoError(t, err)

	kinds := map[valueobject.EventKind]valueobject.ScheduleUpdate{}
	for _, u := range out.ScheduleUpdates {
		kinds[u.Kind] = u
	}

	delinquency, ok := kinds[valueobject.EventDelinquencyCheck]
	require.True(t, ok, "an overdue cycle must arm the delinquency check")
	// Five grace days from the cycle date.
	assert.Equal(t, time.Date(2026, time.April, 20, 0, 0, 4, 0, time.UTC), delinquency.NextRunAt)

	dueCalc, ok := kinds[valueobject.EventDueCalculation]
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 2, 0, time.UTC), dueCalc.NextRunAt)
}

func TestExecute_AllowanceCheckChargesAndResets(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventAllowanceCheck, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal: decimal.NewFromInt(200000),
		// Overdrawn by 2000 during the closing year.
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(-2000),
	})

	out, err := engine.Execute(in)
	require.NoError(t, err)
	assertBalanced(t, out.Postings)

	after := in.Balances.Apply(out.Postings...)
	// 2000 excess at 5% lands on penalties.
	assert.True(t, after.BalanceAt(valueobject.AddrPenalties).Equal(decimal.NewFromInt(100)))
	// The tracker resets to 10% of the live principal.
	assert.True(t, after.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Equal(decimal.NewFromInt(20000)))

	require.Len(t, out.Notifications, 1)
	assert.Equal(t, valueobject.NotificationAllowanceFee, out.Notifications[0].Type)

	require.Len(t, out.ScheduleUpdates, 1)
	assert.Equal(t, valueobject.EventAllowanceCheck, out.ScheduleUpdates[0].Kind)
	assert.Equal(t, time.Date(2027, time.April, 15, 0, 0, 3, 0, time.UTC), out.ScheduleUpdates[0].NextRunAt)
}

func TestExecute_AllowanceCheckWithinAllowanceOnlyResets(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventAllowanceCheck, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(200000),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(12000),
	})

	out, err := engine.Execute(in)
	require.NoError(t, err)
	assert.Empty(t, out.Notifications)

	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrPenalties).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Equal(decimal.NewFromInt(20000)))
}

func TestExecute_PaymentRequiresDetails(t *testing.T) {
	engine := newEngine()
	_, err := engine.Execute(invocation(t, valueobject.EventPaymentReceived, nil))
	assert.Error(t, err)
}

func TestExecute_SettlingPaymentParksSchedules(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventPaymentReceived, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(20000),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(30000),
	})
	in.Payment = &service.PaymentDetails{
		Amount:       decimal.NewFromInt(20000),
		Denomination: "GBP",
	}

	out, err := engine.Execute(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)
	assert.True(t, out.CloseAccount)

	require.Len(t, out.ScheduleUpdates, len(valueobject.ScheduledKinds))
	for _, u := range out.ScheduleUpdates {
		assert.True(t, u.Skip)
	}
}

func TestExecute_PaymentRejectionPropagates(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventPaymentReceived, nil)
	in.Payment = &service.PaymentDetails{
		Amount:       decimal.NewFromInt(100),
		Denomination: "EUR",
	}

	out, err := engine.Execute(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, valueobject.RejectionWrongDenomination, out.Rejection.Category)
	assert.Empty(t, out.Postings)
	assert.False(t, out.CloseAccount)
}

func TestExecute_ParameterChange(t *testing.T) {
	engine := newEngine()

	// Changes are only accepted once at least one cycle has been billed.
	pastFirstCycle := map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrDueCalcEventCounter: decimal.NewFromInt(1),
	}

	t.Run("billing day out of range is rejected", func(t *testing.T) {
		in := invocation(t, valueobject.EventParameterChanged, pastFirstCycle)
		day := 32
		in.ParameterChange = &service.ParameterChange{BillingDay: &day}

		out, err := engine.Execute(in)
		require.NoError(t, err)
		require.NotNil(t, out.Rejection)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	})

	t.Run("billing day change moves the due calculation", func(t *testing.T) {
		in := invocation(t, valueobject.EventParameterChanged, pastFirstCycle)
		day := 25
		in.ParameterChange = &service.ParameterChange{BillingDay: &day}
		in.LastDueCalcAt = time.Date(2026, time.April, 1, 0, 0, 2, 0, time.UTC)

		out, err := engine.Execute(in)
		require.NoError(t, err)
		require.Nil(t, out.Rejection)
		require.Len(t, out.ScheduleUpdates, 1)
		assert.Equal(t, valueobject.EventDueCalculation, out.ScheduleUpdates[0].Kind)
		assert.Equal(t, time.Date(2026, time.May, 25, 0, 0, 2, 0, time.UTC), out.ScheduleUpdates[0].NextRunAt)
	})

	t.Run("rate adjustment change requests a re-amortization", func(t *testing.T) {
		in := invocation(t, valueobject.EventParameterChanged, pastFirstCycle)
		adjustment := dec("0.005")
		in.ParameterChange = &service.ParameterChange{VariableRateAdjustment: &adjustment}

		out, err := engine.Execute(in)
		require.NoError(t, err)
		require.Len(t, out.Notifications, 1)
		assert.Equal(t, valueobject.NotificationReamortisation, out.Notifications[0].Type)
	})

	t.Run("rejected during a repayment holiday", func(t *testing.T) {
		in := invocation(t, valueobject.EventParameterChanged, pastFirstCycle)
		in.Flags = model.Flags{DueCalculationBlocked: true}
		day := 25
		in.ParameterChange = &service.ParameterChange{BillingDay: &day}

		out, err := engine.Execute(in)
		require.NoError(t, err)
		require.NotNil(t, out.Rejection)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
		assert.Empty(t, out.ScheduleUpdates, "the schedule must not move on a rejected change")
	})

	t.Run("rejected before the first due calculation", func(t *testing.T) {
		in := invocation(t, valueobject.EventParameterChanged, nil)
		day := 25
		in.ParameterChange = &service.ParameterChange{BillingDay: &day}

		out, err := engine.Execute(in)
		require.NoError(t, err)
		require.NotNil(t, out.Rejection)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
		assert.Empty(t, out.ScheduleUpdates)
	})

	t.Run("missing change set is an error", func(t *testing.T) {
		_, err := engine.Execute(invocation(t, valueobject.EventParameterChanged, pastFirstCycle))
		assert.Error(t, err)
	})
}

func TestExecute_Deactivation(t *testing.T) {
	engine := newEngine()
	out, err := engine.Execute(invocation(t, valueobject.EventDeactivated, nil))
	require.NoError(t, err)

	require.Len(t, out.ScheduleUpdates, len(valueobject.ScheduledKinds))
	for _, u := range out.ScheduleUpdates {
		assert.True(t, u.Skip)
	}
}

func TestExecute_Conversion(t *testing.T) {
	engine := newEngine()
	in := invocation(t, valueobject.EventConverted, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(250000),
		valueobject.AddrEMI:                           dec("25135.62"),
		valueobject.AddrDueCalcEventCounter:           decimal.NewFromInt(3),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(1000),
	})
	in.LastDueCalcAt = time.Date(2026, time.April, 1, 0, 0, 2, 0, time.UTC)

	out, err := engine.Execute(in)
	require.NoError(t, err)
	assertBalanced(t, out.Postings)

	// The instalment re-amortises against the live balances at conversion
	// time, not at the next cycle.
	calc := service.NewAmortizationCalculator()
	wantEMI := calc.ComputeEMI(decimal.NewFromInt(250000), dec("0.01"), 9, 2)
	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrEMI).Equal(wantEMI),
		"got %s, want %s", after.BalanceAt(valueobject.AddrEMI), wantEMI)

	// A fresh allowance year opens, seeded from the live principal.
	assert.True(t, after.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Equal(decimal.NewFromInt(25000)))

	require.Len(t, out.Notifications, 1)
	assert.Equal(t, valueobject.NotificationProductConverted, out.Notifications[0].Type)
	assert.Equal(t, "12", out.Notifications[0].Details["total_term"])
	assert.Equal(t, wantEMI.String(), out.Notifications[0].Details["new_emi"])

	kinds := map[valueobject.EventKind]valueobject.ScheduleUpdate{}
	for _, u := range out.ScheduleUpdates {
		kinds[u.Kind] = u
	}
	require.Len(t, kinds, 2)

	allowance, ok := kinds[valueobject.EventAllowanceCheck]
	require.True(t, ok, "the allowance period must restart at conversion")
	assert.Equal(t, time.Date(2027, time.April, 15, 0, 0, 3, 0, time.UTC), allowance.NextRunAt)

	dueCalc, ok := kinds[valueobject.EventDueCalculation]
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 2, 0, time.UTC), dueCalc.NextRunAt)
}
