package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// BillingCycleStateMachine runs one due-calculation cycle: age the previous
// cycle's unpaid dues, capitalise holiday interest, re-amortise when a
// trigger fired, and raise the new cycle's interest and principal dues.
//
// Every balance is read from the pre-invocation snapshot; no step observes
// another step's postings.
type BillingCycleStateMachine struct {
	calc *AmortizationCalculator
}

// NewBillingCycleStateMachine creates the state machine.
func NewBillingCycleStateMachine(calc *AmortizationCalculator) *BillingCycleStateMachine {
	return &BillingCycleStateMachine{calc: calc}
}

// BillingCycleInput is the snapshot one due calculation operates on.
type BillingCycleInput struct {
	BatchID     string
	Account     model.Account
	Config      model.ProductConfig
	Balances    model.BalanceSnapshot
	Flags       model.Flags
	EffectiveAt time.Time
	Rates       InterestRateSource
	// ReamortisationRequested is set when a rate parameter changed or a
	// product conversion landed since the previous cycle.
	ReamortisationRequested bool
}

// BillingCycleResult carries the cycle's postings and notifications.
// OverdueRaised tells the caller to arm the delinquency check.
type BillingCycleResult struct {
	Postings      []valueobject.Posting
	Notifications []valueobject.Notification
	OverdueRaised bool
}

// Run executes one due-calculation cycle. During a repayment holiday the
// cycle reduces to a counter increment so the term keeps advancing while no
// dues are raised.
func (b *BillingCycleStateMachine) Run(in BillingCycleInput) (BillingCycleResult, error) {
	var out BillingCycleResult

	if in.Flags.DueCalculationBlocked {
		counter, err := b.counterIncrement(in)
		if err != nil {
			return out, err
		}
		out.Postings = append(out.Postings, counter)
		out.Notifications = append(out.Notifications, valueobject.NewNotification(
			valueobject.NotificationRepaymentHolidayOn, map[string]string{
				"account_id":   in.Account.ID(),
				"effective_at": in.EffectiveAt.Format(time.RFC3339),
			}))
		return out, nil
	}

	if err := b.agePreviousDues(in, &out); err != nil {
		return out, err
	}

	capitalised, err := b.applyCapitalisation(in, &out)
	if err != nil {
		return out, err
	}

	if err := b.raiseDues(in, capitalised, &out); err != nil {
		return out, err
	}

	counter, err := b.counterIncrement(in)
	if err != nil {
		return out, err
	}
	out.Postings = append(out.Postings, counter)

	return out, nil
}

// agePreviousDues moves any unpaid dues from the previous cycle into the
// overdue buckets and charges the late repayment fee.
func (b *BillingCycleStateMachine) agePreviousDues(in BillingCycleInput, out *BillingCycleResult) error {
	denom := in.Account.Denomination()
	principalDue := in.Balances.BalanceAt(valueobject.AddrPrincipalDue)
	interestDue := in.Balances.BalanceAt(valueobject.AddrInterestDue)
	if !principalDue.IsPositive() && !interestDue.IsPositive() {
		return nil
	}

	if principalDue.IsPositive() {
		p, err := valueobject.NewTransfer(
			in.BatchID, denom, principalDue,
			in.Account.ID(), valueobject.AddrPrincipalOverdue,
			in.Account.ID(), valueobject.AddrPrincipalDue,
			string(valueobject.EventDueCalculation), "age unpaid principal due",
		)
		if err != nil {
			return fmt.Errorf("age principal due: %w", err)
		}
		out.Postings = append(out.Postings, p)
	}
	if interestDue.IsPositive() {
		p, err := valueobject.NewTransfer(
			in.BatchID, denom, interestDue,
			in.Account.ID(), valueobject.AddrInterestOverdue,
			in.Account.ID(), valueobject.AddrInterestDue,
			string(valueobject.EventDueCalculation), "age unpaid interest due",
		)
		if err != nil {
			return fmt.Errorf("age interest due: %w", err)
		}
		out.Postings = append(out.Postings, p)
	}

	if in.Config.LateRepaymentFee.IsPositive() {
		p, err := valueobject.NewTransfer(
			in.BatchID, denom, in.Config.LateRepaymentFee,
			in.Account.ID(), valueobject.AddrPenalties,
			valueobject.InternalAccountID, valueobject.AddrLateRepaymentFeeIncome,
			string(valueobject.EventDueCalculation), "late repayment fee",
		)
		if err != nil {
			return fmt.Errorf("charge late repayment fee: %w", err)
		}
		out.Postings = append(out.Postings, p)
	}

	out.OverdueRaised = true
	out.Notifications = append(out.Notifications, valueobject.NewNotification(
		valueobject.NotificationRepaymentOverdue, map[string]string{
			"account_id":        in.Account.ID(),
			"overdue_principal": principalDue.String(),
			"overdue_interest":  interestDue.String(),
			"late_fee":          in.Config.LateRepaymentFee.String(),
		}))
	return nil
}

// applyCapitalisation folds holiday-parked interest into the principal. The
// capitalised amount is rounded to the fulfilment precision; the sub-unit
// residue is carried on the capitalised-interest tracker rather than dropped.
// Returns the amount added to principal.
func (b *BillingCycleStateMachine) applyCapitalisation(
	in BillingCycleInput,
	out *BillingCycleResult,
) (decimal.Decimal, error) {
	denom := in.Account.Denomination()
	pending := in.Balances.BalanceAt(valueobject.AddrAccruedInterestPendingCap)
	overduePending := in.Balances.BalanceAt(valueobject.AddrAccruedOverdueInterestPendingCap)
	total := pending.Add(overduePending)
	if !total.IsPositive() {
		return decimal.Zero, nil
	}

	rounded := total.Round(in.Config.FulfilmentPrecision)

	entries := []valueobject.PostingEntry{
		{Account: in.Account.ID(), Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: rounded},
	}
	if pending.IsPositive() {
		entries = append(entries, valueobject.PostingEntry{
			Account: in.Account.ID(), Address: valueobject.AddrAccruedInterestPendingCap,
			Side: valueobject.Credit, Amount: pending,
		})
	}
	if overduePending.IsPositive() {
		entries = append(entries, valueobject.PostingEntry{
			Account: in.Account.ID(), Address: valueobject.AddrAccruedOverdueInterestPendingCap,
			Side: valueobject.Credit, Amount: overduePending,
		})
	}
	entries = appendResidue(entries, in.Account.ID(), valueobject.AddrCapitalisedInterestTracker, total.Sub(rounded))

	p, err := valueobject.NewPosting(
		in.BatchID, denom, entries,
		string(valueobject.EventDueCalculation), "capitalise holiday interest", false,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("capitalise holiday interest: %w", err)
	}
	out.Postings = append(out.Postings, p)

	track, err := valueobject.NewTransfer(
		in.BatchID, denom, rounded,
		in.Account.ID(), valueobject.AddrCapitalisedInterestTracker,
		valueobject.InternalAccountID, valueobject.AddrCapitalisedInterestOffset,
		string(valueobject.EventDueCalculation), "record capitalised interest",
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("record capitalised interest: %w", err)
	}
	out.Postings = append(out.Postings, track)

	return rounded, nil
}

// raiseDues bills the new cycle: interest due from the accrued receivable,
// principal due from the instalment, and the EMI recompute when a
// re-amortization condition fired.
func (b *BillingCycleStateMachine) raiseDues(
	in BillingCycleInput,
	capitalised decimal.Decimal,
	out *BillingCycleResult,
) error {
	denom := in.Account.Denomination()
	params := in.Account.Params()
	elapsed := int(in.Balances.BalanceAt(valueobject.AddrDueCalcEventCounter).IntPart())
	inInterestOnly := elapsed < params.InterestOnlyTermMonths
	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal).Add(capitalised)

	// Interest due: the receivable billed whole, rounded to the fulfilment
	// precision, with the rounding residue swept to the internal account.
	accrued := in.Balances.BalanceAt(valueobject.AddrAccruedInterestReceivable)
	interestDue := decimal.Zero
	if accrued.IsPositive() {
		interestDue = accrued.Round(in.Config.FulfilmentPrecision)
		entries := []valueobject.PostingEntry{
			{Account: in.Account.ID(), Address: valueobject.AddrAccruedInterestReceivable, Side: valueobject.Credit, Amount: accrued},
		}
		if interestDue.IsPositive() {
			entries = append(entries, valueobject.PostingEntry{
				Account: in.Account.ID(), Address: valueobject.AddrInterestDue,
				Side: valueobject.Debit, Amount: interestDue,
			})
		} else {
			interestDue = decimal.Zero
		}
		entries = appendResidueInternal(entries, accrued.Sub(interestDue))

		p, err := valueobject.NewPosting(
			in.BatchID, denom, entries,
			string(valueobject.EventDueCalculation), "bill accrued interest", false,
		)
		if err != nil {
			return fmt.Errorf("bill accrued interest: %w", err)
		}
		out.Postings = append(out.Postings, p)
	}

	// EMI recompute on trigger.
	emi := in.Balances.BalanceAt(valueobject.AddrEMI)
	sincePrev := in.Balances.BalanceAt(valueobject.AddrOverpaymentSincePrevDueCalc)
	ctx := ReamortisationContext{
		ElapsedTerm:             elapsed,
		FixedRateTermMonths:     params.FixedRateTermMonths,
		InterestOnlyTermMonths:  params.InterestOnlyTermMonths,
		OverpaymentSincePrev:    sincePrev,
		OverpaymentImpact:       params.OverpaymentImpact,
		ReamortisationRequested: in.ReamortisationRequested,
	}
	triggered := false
	for _, cond := range DefaultReamortisationConditions {
		if cond.Triggered(ctx) {
			triggered = true
			break
		}
	}

	terms := b.calc.Terms(
		elapsed, params.TotalTermMonths,
		in.Balances.BalanceAt(valueobject.AddrOverpayment), emi,
		params.OverpaymentImpact,
	)

	if triggered && !inInterestOnly {
		annual := in.Rates.AnnualRate(elapsed)
		next := b.calc.ComputeEMI(principal, annual, terms.Remaining, in.Config.FulfilmentPrecision)
		if !next.Equal(emi) {
			adjust, err := trackerAdjust(
				in.BatchID, denom, in.Account.ID(), valueobject.AddrEMI, next.Sub(emi),
				string(valueobject.EventDueCalculation), "re-amortised instalment",
			)
			if err != nil {
				return fmt.Errorf("adjust instalment: %w", err)
			}
			out.Postings = append(out.Postings, adjust)
			out.Notifications = append(out.Notifications, valueobject.NewNotification(
				valueobject.NotificationReamortisation, map[string]string{
					"account_id":     in.Account.ID(),
					"previous_emi":   emi.String(),
					"new_emi":        next.String(),
					"remaining_term": fmt.Sprintf("%d", terms.Remaining),
				}))
		}
		emi = next
	}

	// Principal due: the instalment's principal slice, or the exact remaining
	// principal on the final cycle so the loan settles to zero.
	if !inInterestOnly && principal.IsPositive() {
		excess := in.Balances.BalanceAt(valueobject.AddrEMIPrincipalExcess)
		var principalDue decimal.Decimal
		if terms.Remaining <= 1 {
			principalDue = principal
		} else {
			principalDue = emi.Sub(interestDue).Add(excess)
			if principalDue.GreaterThan(principal) {
				principalDue = principal
			}
		}

		if principalDue.IsPositive() {
			p, err := valueobject.NewTransfer(
				in.BatchID, denom, principalDue,
				in.Account.ID(), valueobject.AddrPrincipalDue,
				in.Account.ID(), valueobject.AddrPrincipal,
				string(valueobject.EventDueCalculation), "raise principal due",
			)
			if err != nil {
				return fmt.Errorf("raise principal due: %w", err)
			}
			out.Postings = append(out.Postings, p)
		}

		if excess.IsPositive() {
			consume, err := trackerAdjust(
				in.BatchID, denom, in.Account.ID(), valueobject.AddrEMIPrincipalExcess, excess.Neg(),
				string(valueobject.EventDueCalculation), "fold instalment excess into principal due",
			)
			if err != nil {
				return fmt.Errorf("consume instalment excess: %w", err)
			}
			out.Postings = append(out.Postings, consume)
		}
	}

	// The since-previous-cycle overpayment tracker resets each cycle.
	if sincePrev.IsPositive() {
		reset, err := trackerAdjust(
			in.BatchID, denom, in.Account.ID(), valueobject.AddrOverpaymentSincePrevDueCalc, sincePrev.Neg(),
			string(valueobject.EventDueCalculation), "reset cycle overpayment tracker",
		)
		if err != nil {
			return fmt.Errorf("reset cycle overpayment tracker: %w", err)
		}
		out.Postings = append(out.Postings, reset)
	}

	return nil
}

// counterIncrement advances the due-calculation counter by one.
func (b *BillingCycleStateMachine) counterIncrement(in BillingCycleInput) (valueobject.Posting, error) {
	p, err := trackerAdjust(
		in.BatchID, in.Account.Denomination(), in.Account.ID(),
		valueobject.AddrDueCalcEventCounter, decimalOne,
		string(valueobject.EventDueCalculation), "advance due calculation counter",
	)
	if err != nil {
		return valueobject.Posting{}, fmt.Errorf("advance due calculation counter: %w", err)
	}
	return p, nil
}

// trackerAdjust moves a tracker bucket by delta against the internal offset
// address. Positive delta debits the bucket, negative credits it.
func trackerAdjust(
	batchID, denomination, account string,
	address valueobject.BucketAddress,
	delta decimal.Decimal,
	eventName, description string,
) (valueobject.Posting, error) {
	if delta.IsPositive() {
		return valueobject.NewTransfer(
			batchID, denomination, delta,
			account, address,
			valueobject.InternalAccountID, valueobject.AddrTrackerOffset,
			eventName, description,
		)
	}
	return valueobject.NewTransfer(
		batchID, denomination, delta.Neg(),
		valueobject.InternalAccountID, valueobject.AddrTrackerOffset,
		account, address,
		eventName, description,
	)
}

// appendResidue balances a posting by adding the signed residue on the given
// account bucket.
func appendResidue(
	entries []valueobject.PostingEntry,
	account string,
	address valueobject.BucketAddress,
	residue decimal.Decimal,
) []valueobject.PostingEntry {
	switch {
	case residue.IsPositive():
		return append(entries, valueobject.PostingEntry{
			Account: account, Address: address, Side: valueobject.Debit, Amount: residue,
		})
	case residue.IsNegative():
		return append(entries, valueobject.PostingEntry{
			Account: account, Address: address, Side: valueobject.Credit, Amount: residue.Neg(),
		})
	}
	return entries
}

// appendResidueInternal sweeps the signed residue to the internal
// rounding-residue address.
func appendResidueInternal(entries []valueobject.PostingEntry, residue decimal.Decimal) []valueobject.PostingEntry {
	return appendResidue(entries, valueobject.InternalAccountID, valueobject.AddrRoundingResidue, residue)
}
