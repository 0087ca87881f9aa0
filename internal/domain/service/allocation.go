package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// RepaymentAllocator applies an incoming payment across the outstanding
// buckets in the fixed repayment hierarchy, routes any surplus into the
// principal as an overpayment, and detects full settlement.
type RepaymentAllocator struct{}

// NewRepaymentAllocator creates the allocator.
func NewRepaymentAllocator() *RepaymentAllocator {
	return &RepaymentAllocator{}
}

// PaymentInput describes one inbound or outbound transfer hitting the
// account.
type PaymentInput struct {
	BatchID     string
	Account     model.Account
	Config      model.ProductConfig
	Balances    model.BalanceSnapshot
	Flags       model.Flags
	EffectiveAt time.Time

	Amount       decimal.Decimal
	Denomination string
	// Outbound marks a debit leaving the account (a disbursement or an ATM
	// style withdrawal), which the engine only fees, never allocates.
	Outbound bool
	// PaymentType is the scheme tag on an outbound transfer, looked up in the
	// product fee table.
	PaymentType string
	// InterestAdjustment marks an operational interest waiver: the billed
	// interest due is written off instead of allocated.
	InterestAdjustment bool
}

// PaymentResult is the outcome of processing one payment.
type PaymentResult struct {
	Postings      []valueobject.Posting
	Notifications []valueobject.Notification
	Rejection     *valueobject.Rejection
	// Closed reports that the payment settled the account in full and the
	// account should transition to CLOSED.
	Closed bool
}

// Process validates and allocates one payment. Rejections are decided before
// any posting is built; a rejected payment changes no state.
func (a *RepaymentAllocator) Process(in PaymentInput) (PaymentResult, error) {
	var out PaymentResult

	if in.Denomination != in.Account.Denomination() {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionWrongDenomination,
			"payments must be in %s, got %s", in.Account.Denomination(), in.Denomination,
		)
		return out, nil
	}
	if !in.Amount.IsPositive() {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionAgainstTerms, "payment amount must be positive, got %s", in.Amount,
		)
		return out, nil
	}

	if in.Outbound {
		return a.processOutbound(in)
	}
	if in.InterestAdjustment {
		return a.processInterestWaiver(in)
	}
	return a.processRepayment(in)
}

// processOutbound charges the payment-type fee on a debit leaving the
// account. Untagged debits are refused: the engine cannot tell a legitimate
// disbursement from a mistake without the tag.
func (a *RepaymentAllocator) processOutbound(in PaymentInput) (PaymentResult, error) {
	var out PaymentResult

	if in.PaymentType == "" {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionInsufficientDetail,
			"outbound transfer carries no payment type",
		)
		return out, nil
	}

	fee := in.Config.PaymentTypeFees.FeeFor(in.PaymentType, in.Amount)
	if !fee.IsPositive() {
		return out, nil
	}

	p, err := valueobject.NewTransfer(
		in.BatchID, in.Denomination, fee,
		in.Account.ID(), valueobject.AddrPrincipal,
		valueobject.InternalAccountID, valueobject.AddrPaymentTypeFeeIncome,
		string(valueobject.EventPaymentReceived),
		fmt.Sprintf("%s payment type fee", in.PaymentType),
	)
	if err != nil {
		return out, fmt.Errorf("charge payment type fee: %w", err)
	}
	out.Postings = append(out.Postings, p)
	return out, nil
}

// processInterestWaiver writes off billed interest due up to the waived
// amount, reversing it against interest income.
func (a *RepaymentAllocator) processInterestWaiver(in PaymentInput) (PaymentResult, error) {
	var out PaymentResult

	interestDue := in.Balances.BalanceAt(valueobject.AddrInterestDue)
	waived := decimal.Min(in.Amount, interestDue)
	if !waived.IsPositive() {
		out.Rejection = valueobject.NewRejection(
			valueobject.RejectionAgainstTerms, "no billed interest to waive",
		)
		return out, nil
	}

	p, err := valueobject.NewTransfer(
		in.BatchID, in.Denomination, waived,
		valueobject.InternalAccountID, valueobject.AddrInterestReceived,
		in.Account.ID(), valueobject.AddrInterestDue,
		string(valueobject.EventPaymentReceived), "interest adjustment write-off",
	)
	if err != nil {
		return out, fmt.Errorf("waive interest due: %w", err)
	}
	out.Postings = append(out.Postings, p)
	return out, nil
}

// processRepayment walks the hierarchy and handles overpayment and full
// settlement.
func (a *RepaymentAllocator) processRepayment(in PaymentInput) (PaymentResult, error) {
	var out PaymentResult

	totalDebt := in.Balances.TotalOutstandingDebt()
	earlyFee := a.earlyRepaymentFee(in)
	allowanceFee := a.projectedAllowanceFee(in)
	settlement := totalDebt.Add(earlyFee).Add(allowanceFee)

	fullSettlement := false
	switch {
	case in.Amount.GreaterThan(totalDebt):
		// Only the exact settlement figure may exceed the outstanding debt.
		if !in.Amount.Equal(settlement) {
			out.Rejection = valueobject.NewRejection(
				valueobject.RejectionAgainstTerms,
				"amount %s exceeds outstanding debt %s and is not the settlement amount %s",
				in.Amount, totalDebt, settlement,
			)
			return out, nil
		}
		fullSettlement = true
	case in.Amount.Equal(totalDebt):
		// Paying the exact debt zeroes every outstanding bucket, which is a
		// full repayment; it is refused when closure fees would go unpaid.
		if !settlement.Equal(totalDebt) {
			out.Rejection = valueobject.NewRejection(
				valueobject.RejectionAgainstTerms,
				"amount %s clears the outstanding debt but omits closure fees; full settlement requires %s",
				in.Amount, settlement,
			)
			return out, nil
		}
		fullSettlement = true
	}

	allocatable := in.Amount
	if fullSettlement {
		allocatable = totalDebt
	}

	entries := []valueobject.PostingEntry{{
		Account: valueobject.InternalAccountID,
		Address: valueobject.AddrPaymentsClearing,
		Side:    valueobject.Debit,
		Amount:  allocatable,
	}}

	remaining := allocatable
	for _, addr := range valueobject.RepaymentHierarchy {
		if !remaining.IsPositive() {
			break
		}
		// The excess tier is a tracker mirroring prepaid principal, not debt;
		// money reaching it is an overpayment and is routed below.
		if addr == valueobject.AddrEMIPrincipalExcess {
			continue
		}
		owed := in.Balances.BalanceAt(addr)
		if !owed.IsPositive() {
			continue
		}
		applied := decimal.Min(remaining, owed)
		entries = append(entries, valueobject.PostingEntry{
			Account: in.Account.ID(), Address: addr, Side: valueobject.Credit, Amount: applied,
		})
		remaining = remaining.Sub(applied)
	}

	// Whatever survives the hierarchy prepays principal, then clears any
	// holiday interest still pending capitalisation.
	overpaid := decimal.Zero
	if remaining.IsPositive() {
		principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
		overpaid = decimal.Min(remaining, principal)
		if overpaid.IsPositive() {
			entries = append(entries, valueobject.PostingEntry{
				Account: in.Account.ID(), Address: valueobject.AddrPrincipal,
				Side: valueobject.Credit, Amount: overpaid,
			})
			remaining = remaining.Sub(overpaid)
		}
		for _, addr := range []valueobject.BucketAddress{
			valueobject.AddrAccruedInterestPendingCap,
			valueobject.AddrAccruedOverdueInterestPendingCap,
		} {
			if !remaining.IsPositive() {
				break
			}
			pending := in.Balances.BalanceAt(addr)
			if !pending.IsPositive() {
				continue
			}
			applied := decimal.Min(remaining, pending)
			entries = append(entries, valueobject.PostingEntry{
				Account: in.Account.ID(), Address: addr, Side: valueobject.Credit, Amount: applied,
			})
			remaining = remaining.Sub(applied)
		}
	}

	allocation, err := valueobject.NewPosting(
		in.BatchID, in.Denomination, entries,
		string(valueobject.EventPaymentReceived), "allocate repayment", false,
	)
	if err != nil {
		return out, fmt.Errorf("allocate repayment: %w", err)
	}
	out.Postings = append(out.Postings, allocation)

	if overpaid.IsPositive() {
		trackers, err := a.overpaymentTrackers(in, overpaid)
		if err != nil {
			return out, err
		}
		out.Postings = append(out.Postings, trackers...)
	}

	if fullSettlement {
		closure, err := a.settle(in, earlyFee, allowanceFee)
		if err != nil {
			return out, err
		}
		out.Postings = append(out.Postings, closure...)
		out.Closed = true
		out.Notifications = append(out.Notifications, valueobject.NewNotification(
			valueobject.NotificationClosure, map[string]string{
				"account_id":          in.Account.ID(),
				"settled_amount":      in.Amount.String(),
				"early_repayment_fee": earlyFee.String(),
				"allowance_fee":       allowanceFee.String(),
			}))
	}

	return out, nil
}

// overpaymentTrackers records a principal prepayment on the three overpayment
// trackers: lifetime total, since the previous due calculation, and the
// annual allowance draw-down (which may push the allowance negative; the fee
// for that lands at the next allowance check, not here).
func (a *RepaymentAllocator) overpaymentTrackers(in PaymentInput, overpaid decimal.Decimal) ([]valueobject.Posting, error) {
	var postings []valueobject.Posting
	for _, addr := range []valueobject.BucketAddress{
		valueobject.AddrOverpayment,
		valueobject.AddrOverpaymentSincePrevDueCalc,
	} {
		p, err := trackerAdjust(
			in.BatchID, in.Denomination, in.Account.ID(), addr, overpaid,
			string(valueobject.EventPaymentReceived), "record overpayment",
		)
		if err != nil {
			return nil, fmt.Errorf("record overpayment: %w", err)
		}
		postings = append(postings, p)
	}

	draw, err := trackerAdjust(
		in.BatchID, in.Denomination, in.Account.ID(),
		valueobject.AddrRemainingOverpaymentAllowance, overpaid.Neg(),
		string(valueobject.EventPaymentReceived), "draw down overpayment allowance",
	)
	if err != nil {
		return nil, fmt.Errorf("draw down overpayment allowance: %w", err)
	}
	return append(postings, draw), nil
}

// settle charges the closure fees on a full settlement. The fee portion of
// the payment lands straight on the income buckets.
func (a *RepaymentAllocator) settle(in PaymentInput, earlyFee, allowanceFee decimal.Decimal) ([]valueobject.Posting, error) {
	var postings []valueobject.Posting

	if earlyFee.IsPositive() {
		p, err := valueobject.NewTransfer(
			in.BatchID, in.Denomination, earlyFee,
			valueobject.InternalAccountID, valueobject.AddrPaymentsClearing,
			valueobject.InternalAccountID, valueobject.AddrEarlyRepaymentFeeIncome,
			string(valueobject.EventPaymentReceived), "early repayment fee",
		)
		if err != nil {
			return nil, fmt.Errorf("charge early repayment fee: %w", err)
		}
		postings = append(postings, p)
	}

	if allowanceFee.IsPositive() {
		p, err := valueobject.NewTransfer(
			in.BatchID, in.Denomination, allowanceFee,
			valueobject.InternalAccountID, valueobject.AddrPaymentsClearing,
			valueobject.InternalAccountID, valueobject.AddrAllowanceFeeIncome,
			string(valueobject.EventPaymentReceived), "overpayment allowance excess fee",
		)
		if err != nil {
			return nil, fmt.Errorf("charge allowance excess fee: %w", err)
		}
		postings = append(postings, p)
	}

	return postings, nil
}

// earlyRepaymentFee resolves the flat closure fee, or the configured
// percentage of the remaining principal when the flat fee is set negative.
func (a *RepaymentAllocator) earlyRepaymentFee(in PaymentInput) decimal.Decimal {
	fee := in.Config.EarlyRepaymentFee
	if fee.GreaterThanOrEqual(decimal.Zero) {
		return fee
	}
	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
	return principal.Mul(in.Config.OverpaymentAllowanceFeePct).Round(in.Config.FulfilmentPrecision)
}

// projectedAllowanceFee computes the allowance-excess fee a full settlement
// would trigger: paying off the whole principal counts as an overpayment
// against the annual allowance.
func (a *RepaymentAllocator) projectedAllowanceFee(in PaymentInput) decimal.Decimal {
	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
	projected := in.Balances.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Sub(principal)
	if projected.GreaterThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return projected.Neg().Mul(in.Config.OverpaymentAllowanceFeePct).Round(in.Config.FulfilmentPrecision)
}
