package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// Invocation is one engine call: an event kind plus the full state snapshot
// it operates on. The engine never reaches out for state; everything it may
// read is here.
type Invocation struct {
	Kind        valueobject.EventKind
	EffectiveAt time.Time

	Account  model.Account
	Config   model.ProductConfig
	Balances model.BalanceSnapshot
	Flags    model.Flags

	// ReamortisationRequested is set by the runtime when a rate parameter or
	// product conversion landed since the previous due calculation.
	ReamortisationRequested bool
	// LastDueCalcAt is when the previous due calculation ran; the billing-day
	// change rule needs it.
	LastDueCalcAt time.Time

	Payment         *PaymentDetails
	ParameterChange *ParameterChange
}

// PaymentDetails accompanies a PAYMENT_RECEIVED invocation.
type PaymentDetails struct {
	Amount             decimal.Decimal
	Denomination       string
	Outbound           bool
	PaymentType        string
	InterestAdjustment bool
}

// ParameterChange accompanies a PARAMETER_CHANGED invocation. Nil fields are
// unchanged.
type ParameterChange struct {
	BillingDay             *int
	VariableRateAdjustment *decimal.Decimal
}

// Result is everything one invocation wants persisted or emitted. The engine
// returns it whole; the application layer commits it atomically.
type Result struct {
	Postings        []valueobject.Posting
	Notifications   []valueobject.Notification
	ScheduleUpdates []valueobject.ScheduleUpdate
	// NewSchedules carries schedule rows to create, only set on activation.
	NewSchedules []valueobject.ScheduledEvent
	Rejection    *valueobject.Rejection
	// CloseAccount reports that the account settled in full.
	CloseAccount bool
}

// LifecycleEngine is the single entry point of the mortgage product logic.
// It is pure and stateless: given the same invocation it returns the same
// result, and it never reads back its own writes.
type LifecycleEngine struct {
	accrual   *InterestAccrualEngine
	billing   *BillingCycleStateMachine
	allocator *RepaymentAllocator
	monitor   *DelinquencyMonitor
	schedule  *ScheduleCoordinator
}

// NewLifecycleEngine wires the engine from its component services.
func NewLifecycleEngine(
	accrual *InterestAccrualEngine,
	billing *BillingCycleStateMachine,
	allocator *RepaymentAllocator,
	monitor *DelinquencyMonitor,
	schedule *ScheduleCoordinator,
) *LifecycleEngine {
	return &LifecycleEngine{
		accrual:   accrual,
		billing:   billing,
		allocator: allocator,
		monitor:   monitor,
		schedule:  schedule,
	}
}

// Execute dispatches one invocation. Unknown kinds are an error, not a
// rejection: they indicate a runtime wiring fault, not a borrower request.
func (e *LifecycleEngine) Execute(in Invocation) (Result, error) {
	switch in.Kind {
	case valueobject.EventAccrueInterest:
		return e.handleAccrual(in)
	case valueobject.EventDueCalculation:
		return e.handleDueCalculation(in)
	case valueobject.EventAllowanceCheck:
		return e.handleAllowanceCheck(in)
	case valueobject.EventDelinquencyCheck:
		return e.handleDelinquencyCheck(in)
	case valueobject.EventPaymentReceived:
		return e.handlePayment(in)
	case valueobject.EventParameterChanged:
		return e.handleParameterChange(in)
	case valueobject.EventActivated:
		return e.handleActivation(in)
	case valueobject.EventDeactivated:
		return e.handleDeactivation(in)
	case valueobject.EventConverted:
		return e.handleConversion(in)
	default:
		return Result{}, fmt.Errorf("unknown event kind %q", in.Kind)
	}
}

func (e *LifecycleEngine) batchID(in Invocation) string {
	return valueobject.MakeBatchID(in.Account.ID(), string(in.Kind), in.EffectiveAt)
}

// handleActivation disburses the principal, seeds the overpayment allowance
// and creates the recurring schedule.
func (e *LifecycleEngine) handleActivation(in Invocation) (Result, error) {
	var out Result
	batchID := e.batchID(in)
	denom := in.Account.Denomination()
	params := in.Account.Params()

	disburse, err := valueobject.NewTransfer(
		batchID, denom, params.Principal,
		in.Account.ID(), valueobject.AddrPrincipal,
		valueobject.InternalAccountID, valueobject.AddrPaymentsClearing,
		string(valueobject.EventActivated), "disburse principal",
	)
	if err != nil {
		return out, fmt.Errorf("disburse principal: %w", err)
	}
	out.Postings = append(out.Postings, disburse)

	period := model.NewAllowancePeriod(
		params.Principal,
		in.Config.OverpaymentAllowancePct,
		in.Config.OverpaymentAllowanceFeePct,
		in.EffectiveAt,
		in.Config.FulfilmentPrecision,
	)
	if period.Allowance.IsPositive() {
		seed, err := trackerAdjust(
			batchID, denom, in.Account.ID(),
			valueobject.AddrRemainingOverpaymentAllowance, period.Allowance,
			string(valueobject.EventActivated), "seed annual overpayment allowance",
		)
		if err != nil {
			return out, fmt.Errorf("seed overpayment allowance: %w", err)
		}
		out.Postings = append(out.Postings, seed)
	}

	out.NewSchedules = e.schedule.InitialSchedule(in.EffectiveAt, params.BillingDay)
	out.Notifications = append(out.Notifications, valueobject.NewNotification(
		valueobject.NotificationActivated, map[string]string{
			"account_id":   in.Account.ID(),
			"principal":    params.Principal.String(),
			"activated_at": in.EffectiveAt.Format(time.RFC3339),
		}))
	return out, nil
}

// handleDeactivation parks every recurring event. Balances are left to the
// closure flow; deactivation only stops the clock.
func (e *LifecycleEngine) handleDeactivation(in Invocation) (Result, error) {
	var out Result
	for _, kind := range valueobject.ScheduledKinds {
		out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
			Kind:      kind,
			NextRunAt: in.EffectiveAt.AddDate(0, 1, 0),
			Skip:      true,
		})
	}
	return out, nil
}

func (e *LifecycleEngine) handleAccrual(in Invocation) (Result, error) {
	var out Result

	elapsed := int(in.Balances.BalanceAt(valueobject.AddrDueCalcEventCounter).IntPart())
	postings, err := e.accrual.Accrue(AccrualInput{
		BatchID:     e.batchID(in),
		Account:     in.Account,
		Config:      in.Config,
		Balances:    in.Balances,
		Flags:       in.Flags,
		Rates:       RateSourceFor(in.Account, in.Config),
		ElapsedTerm: elapsed,
	})
	if err != nil {
		return out, fmt.Errorf("accrue interest: %w", err)
	}
	out.Postings = postings
	out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
		Kind:      valueobject.EventAccrueInterest,
		NextRunAt: e.schedule.NextDaily(in.EffectiveAt),
	})
	return out, nil
}

func (e *LifecycleEngine) handleDueCalculation(in Invocation) (Result, error) {
	var out Result

	cycle, err := e.billing.Run(BillingCycleInput{
		BatchID:                 e.batchID(in),
		Account:                 in.Account,
		Config:                  in.Config,
		Balances:                in.Balances,
		Flags:                   in.Flags,
		EffectiveAt:             in.EffectiveAt,
		Rates:                   RateSourceFor(in.Account, in.Config),
		ReamortisationRequested: in.ReamortisationRequested,
	})
	if err != nil {
		return out, fmt.Errorf("run billing cycle: %w", err)
	}
	out.Postings = cycle.Postings
	out.Notifications = cycle.Notifications

	if cycle.OverdueRaised {
		notifs, updates := e.monitor.OnOverdue(DelinquencyInput{
			AccountID:       in.Account.ID(),
			Balances:        in.Balances,
			Flags:           in.Flags,
			EffectiveAt:     in.EffectiveAt,
			GracePeriodDays: in.Config.GracePeriodDays,
		})
		out.Notifications = append(out.Notifications, notifs...)
		out.ScheduleUpdates = append(out.ScheduleUpdates, updates...)
	}

	out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
		Kind:      valueobject.EventDueCalculation,
		NextRunAt: e.schedule.NextMonthly(in.EffectiveAt, in.Account.Params().BillingDay),
	})
	return out, nil
}

// handleAllowanceCheck charges the fee for allowance overdrawn during the
// closing year and resets the tracker for the next one.
func (e *LifecycleEngine) handleAllowanceCheck(in Invocation) (Result, error) {
	var out Result
	batchID := e.batchID(in)
	denom := in.Account.Denomination()

	period := model.NewAllowancePeriod(
		in.Balances.BalanceAt(valueobject.AddrPrincipal),
		in.Config.OverpaymentAllowancePct,
		in.Config.OverpaymentAllowanceFeePct,
		in.EffectiveAt,
		in.Config.FulfilmentPrecision,
	)

	tracker := in.Balances.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance)
	fee := period.ExcessFee(tracker, in.Config.FulfilmentPrecision)
	if fee.IsPositive() {
		charge, err := valueobject.NewTransfer(
			batchID, denom, fee,
			in.Account.ID(), valueobject.AddrPenalties,
			valueobject.InternalAccountID, valueobject.AddrAllowanceFeeIncome,
			string(valueobject.EventAllowanceCheck), "overpayment allowance excess fee",
		)
		if err != nil {
			return out, fmt.Errorf("charge allowance excess fee: %w", err)
		}
		out.Postings = append(out.Postings, charge)
		out.Notifications = append(out.Notifications, valueobject.NewNotification(
			valueobject.NotificationAllowanceFee, map[string]string{
				"account_id": in.Account.ID(),
				"excess":     tracker.Neg().String(),
				"fee":        fee.String(),
			}))
	}

	// Reset to the new period's allowance, recomputed from the live principal.
	if delta := period.Allowance.Sub(tracker); !delta.IsZero() {
		reset, err := trackerAdjust(
			batchID, denom, in.Account.ID(),
			valueobject.AddrRemainingOverpaymentAllowance, delta,
			string(valueobject.EventAllowanceCheck), "reset annual overpayment allowance",
		)
		if err != nil {
			return out, fmt.Errorf("reset overpayment allowance: %w", err)
		}
		out.Postings = append(out.Postings, reset)
	}

	out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
		Kind:      valueobject.EventAllowanceCheck,
		NextRunAt: e.schedule.NextAnnual(in.EffectiveAt),
	})
	return out, nil
}

func (e *LifecycleEngine) handleDelinquencyCheck(in Invocation) (Result, error) {
	var out Result
	notifs, updates := e.monitor.RunCheck(DelinquencyInput{
		AccountID:       in.Account.ID(),
		Balances:        in.Balances,
		Flags:           in.Flags,
		EffectiveAt:     in.EffectiveAt,
		GracePeriodDays: in.Config.GracePeriodDays,
	})
	out.Notifications = notifs
	out.ScheduleUpdates = updates
	return out, nil
}

func (e *LifecycleEngine) handlePayment(in Invocation) (Result, error) {
	var out Result
	if in.Payment == nil {
		return out, fmt.Errorf("payment invocation carries no payment details")
	}

	result, err := e.allocator.Process(PaymentInput{
		BatchID:            e.batchID(in),
		Account:            in.Account,
		Config:             in.Config,
		Balances:           in.Balances,
		Flags:              in.Flags,
		EffectiveAt:        in.EffectiveAt,
		Amount:             in.Payment.Amount,
		Denomination:       in.Payment.Denomination,
		Outbound:           in.Payment.Outbound,
		PaymentType:        in.Payment.PaymentType,
		InterestAdjustment: in.Payment.InterestAdjustment,
	})
	if err != nil {
		return out, fmt.Errorf("process payment: %w", err)
	}

	out.Postings = result.Postings
	out.Notifications = result.Notifications
	out.Rejection = result.Rejection
	out.CloseAccount = result.Closed

	if result.Closed {
		deactivated, err := e.handleDeactivation(in)
		if err != nil {
			return out, err
		}
		out.ScheduleUpdates = append(out.ScheduleUpdates, deactivated.ScheduleUpdates...)
	}
	return out, nil
}

// handleParameterChange moves the due-calculation schedule on a billing-day
// change and flags a pending re-amortization on a rate adjustment change.
// Changes are refused during a repayment holiday and before the first
// due-calculation cycle has run.
func (e *LifecycleEngine) handleParameterChange(in Invocation) (Result, error) {
	var out Result
	if in.ParameterChange == nil {
		return out, fmt.Errorf("parameter change invocation carries no changes")
	}

	if in.Flags.DueCalculationBlocked {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionAgainstTerms,
			"parameter changes are not accepted during a repayment holiday",
		)
		return out, nil
	}
	if !in.Balances.BalanceAt(valueobject.AddrDueCalcEventCounter).IsPositive() {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionAgainstTerms,
			"parameter changes are not accepted before the first due calculation",
		)
		return out, nil
	}

	if in.ParameterChange.BillingDay != nil {
		day := *in.ParameterChange.BillingDay
		if day < 1 || day > 31 {
			out.Rejection = valueobject.NewRejection(
				valueobject.RejectionAgainstTerms, "billing day %d is out of range", day,
			)
			return out, nil
		}
		out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
			Kind:      valueobject.EventDueCalculation,
			NextRunAt: e.schedule.DueCalculationAfterBillingDayChange(day, in.EffectiveAt, in.LastDueCalcAt),
		})
	}

	if in.ParameterChange.VariableRateAdjustment != nil {
		out.Notifications = append(out.Notifications, valueobject.NewNotification(
			valueobject.NotificationReamortisation, map[string]string{
				"account_id": in.Account.ID(),
				"adjustment": in.ParameterChange.VariableRateAdjustment.String(),
				"reason":     "variable rate adjustment changed",
			}))
	}
	return out, nil
}

// handleConversion applies a product switch against the live balances. The
// new terms land on the account aggregate upstream; here the instalment is
// re-amortised immediately, the annual overpayment allowance restarts from
// the conversion date, and the due-calculation schedule realigns.
func (e *LifecycleEngine) handleConversion(in Invocation) (Result, error) {
	var out Result
	batchID := e.batchID(in)
	denom := in.Account.Denomination()
	params := in.Account.Params()

	elapsed := int(in.Balances.BalanceAt(valueobject.AddrDueCalcEventCounter).IntPart())
	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
	emi := in.Balances.BalanceAt(valueobject.AddrEMI)

	// Inside a converted-in interest-only term the instalment is zero; past
	// it, recompute from the live principal and the new term and rate.
	next := decimal.Zero
	if elapsed >= params.InterestOnlyTermMonths {
		terms := e.billing.calc.Terms(
			elapsed, params.TotalTermMonths,
			in.Balances.BalanceAt(valueobject.AddrOverpayment), emi,
			params.OverpaymentImpact,
		)
		annual := RateSourceFor(in.Account, in.Config).AnnualRate(elapsed)
		next = e.billing.calc.ComputeEMI(principal, annual, terms.Remaining, in.Config.FulfilmentPrecision)
	}
	if !next.Equal(emi) {
		adjust, err := trackerAdjust(
			batchID, denom, in.Account.ID(), valueobject.AddrEMI, next.Sub(emi),
			string(valueobject.EventConverted), "re-amortised instalment under converted terms",
		)
		if err != nil {
			return out, fmt.Errorf("adjust instalment: %w", err)
		}
		out.Postings = append(out.Postings, adjust)
	}

	// The conversion opens a fresh allowance year seeded from the live
	// principal.
	period := model.NewAllowancePeriod(
		principal,
		in.Config.OverpaymentAllowancePct,
		in.Config.OverpaymentAllowanceFeePct,
		in.EffectiveAt,
		in.Config.FulfilmentPrecision,
	)
	tracker := in.Balances.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance)
	if delta := period.Allowance.Sub(tracker); !delta.IsZero() {
		reseed, err := trackerAdjust(
			batchID, denom, in.Account.ID(),
			valueobject.AddrRemainingOverpaymentAllowance, delta,
			string(valueobject.EventConverted), "restart overpayment allowance period",
		)
		if err != nil {
			return out, fmt.Errorf("restart overpayment allowance: %w", err)
		}
		out.Postings = append(out.Postings, reseed)
	}

	out.Notifications = append(out.Notifications, valueobject.NewNotification(
		valueobject.NotificationProductConverted, map[string]string{
			"account_id":       in.Account.ID(),
			"total_term":       strconv.Itoa(params.TotalTermMonths),
			"fixed_rate_term":  strconv.Itoa(params.FixedRateTermMonths),
			"fixed_rate":       params.FixedAnnualRate.String(),
			"overpayment_mode": string(params.OverpaymentImpact),
			"new_emi":          next.String(),
		}))

	out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
		Kind:      valueobject.EventAllowanceCheck,
		NextRunAt: e.schedule.NextAnnual(in.EffectiveAt),
	})
	if billingDay := params.BillingDay; billingDay >= 1 {
		out.ScheduleUpdates = append(out.ScheduleUpdates, valueobject.ScheduleUpdate{
			Kind:      valueobject.EventDueCalculation,
			NextRunAt: e.schedule.DueCalculationAfterBillingDayChange(billingDay, in.EffectiveAt, in.LastDueCalcAt),
		})
	}
	return out, nil
}
