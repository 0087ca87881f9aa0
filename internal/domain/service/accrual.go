package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// InterestAccrualEngine produces the daily interest postings. It is pure:
// all state arrives in the input and all effects leave as postings.
type InterestAccrualEngine struct{}

// NewInterestAccrualEngine creates the accrual engine.
func NewInterestAccrualEngine() *InterestAccrualEngine {
	return &InterestAccrualEngine{}
}

// DailyAmount computes one day's interest on a balance. The daily rate is the
// annual rate divided by the configured days-in-year at full decimal
// precision; only the final amount is rounded, which keeps repeated accruals
// on the same balance identical.
func (e *InterestAccrualEngine) DailyAmount(
	balance, annualRate, daysInYear decimal.Decimal,
	precision int32,
) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) || annualRate.IsZero() {
		return decimal.Zero
	}
	return annualRate.Div(daysInYear).Mul(balance).Round(precision)
}

// AccrualInput is the snapshot an accrual tick operates on.
type AccrualInput struct {
	BatchID     string
	Account     model.Account
	Config      model.ProductConfig
	Balances    model.BalanceSnapshot
	Flags       model.Flags
	Rates       InterestRateSource
	ElapsedTerm int
}

// Accrue builds the postings for one daily accrual tick: standard interest on
// the live principal, the expected-interest delta feeding the reduce-term
// excess tracker, and penalty interest on overdue balances. During a
// repayment holiday interest lands in the pending-capitalisation buckets
// instead of the receivable ones.
func (e *InterestAccrualEngine) Accrue(in AccrualInput) ([]valueobject.Posting, error) {
	var postings []valueobject.Posting

	annualRate := in.Rates.AnnualRate(in.ElapsedTerm)
	denom := in.Account.Denomination()

	standard, err := e.standardInterest(in, annualRate, denom)
	if err != nil {
		return nil, err
	}
	postings = append(postings, standard...)

	excess, err := e.expectedInterestExcess(in, annualRate, denom)
	if err != nil {
		return nil, err
	}
	postings = append(postings, excess...)

	penalty, err := e.penaltyInterest(in, annualRate, denom)
	if err != nil {
		return nil, err
	}
	postings = append(postings, penalty...)

	return postings, nil
}

// standardInterest accrues on the live principal into the receivable bucket,
// or into the pending-capitalisation bucket during a repayment holiday.
func (e *InterestAccrualEngine) standardInterest(
	in AccrualInput,
	annualRate decimal.Decimal,
	denom string,
) ([]valueobject.Posting, error) {
	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
	amount := e.DailyAmount(principal, annualRate, in.Config.DaysInYear, in.Config.AccrualPrecision)
	if !amount.IsPositive() {
		return nil, nil
	}

	target := valueobject.AddrAccruedInterestReceivable
	if in.Flags.DueCalculationBlocked {
		target = valueobject.AddrAccruedInterestPendingCap
	}

	p, err := valueobject.NewTransfer(
		in.BatchID, denom, amount,
		in.Account.ID(), target,
		valueobject.InternalAccountID, valueobject.AddrInterestReceived,
		"ACCRUE_INTEREST",
		fmt.Sprintf("daily interest accrual at %s", annualRate),
	)
	if err != nil {
		return nil, fmt.Errorf("build standard accrual posting: %w", err)
	}
	return []valueobject.Posting{p}, nil
}

// expectedInterestExcess accrues the difference between interest on the
// pre-overpayment principal and the actual accrual. With the reduce-term
// preference this delta is the slice of each EMI freed up for principal; it
// builds in the excess bucket until the next due calculation folds it into
// the principal due.
func (e *InterestAccrualEngine) expectedInterestExcess(
	in AccrualInput,
	annualRate decimal.Decimal,
	denom string,
) ([]valueobject.Posting, error) {
	if in.Account.Params().OverpaymentImpact != model.OverpaymentReducesTerm {
		return nil, nil
	}
	overpayment := in.Balances.BalanceAt(valueobject.AddrOverpayment)
	if !overpayment.IsPositive() {
		return nil, nil
	}

	principal := in.Balances.BalanceAt(valueobject.AddrPrincipal)
	actual := e.DailyAmount(principal, annualRate, in.Config.DaysInYear, in.Config.AccrualPrecision)
	expected := e.DailyAmount(principal.Add(overpayment), annualRate, in.Config.DaysInYear, in.Config.AccrualPrecision)
	delta := expected.Sub(actual)
	if !delta.IsPositive() {
		return nil, nil
	}

	p, err := valueobject.NewTransfer(
		in.BatchID, denom, delta,
		in.Account.ID(), valueobject.AddrEMIPrincipalExcess,
		valueobject.InternalAccountID, valueobject.AddrTrackerOffset,
		"ACCRUE_INTEREST",
		"expected-interest delta from overpaid principal",
	)
	if err != nil {
		return nil, fmt.Errorf("build expected-interest posting: %w", err)
	}
	return []valueobject.Posting{p}, nil
}

// penaltyInterest accrues on the overdue balances at the penalty rate,
// optionally stacked on the standard rate. Rounded at the fulfilment
// precision because penalties are immediately payable.
func (e *InterestAccrualEngine) penaltyInterest(
	in AccrualInput,
	annualRate decimal.Decimal,
	denom string,
) ([]valueobject.Posting, error) {
	if in.Flags.PenaltyBlocked {
		return nil, nil
	}

	base := in.Balances.BalanceAt(valueobject.AddrPrincipalOverdue)
	if in.Config.PenaltyCompoundsOverdueInterest {
		base = base.Add(in.Balances.BalanceAt(valueobject.AddrInterestOverdue))
	}

	rate := in.Config.PenaltyRate
	if in.Config.PenaltyIncludesBase {
		rate = rate.Add(annualRate)
	}

	amount := e.DailyAmount(base, rate, in.Config.DaysInYear, in.Config.FulfilmentPrecision)
	if !amount.IsPositive() {
		return nil, nil
	}

	target := valueobject.AddrPenalties
	if in.Flags.DueCalculationBlocked {
		target = valueobject.AddrAccruedOverdueInterestPendingCap
	}

	p, err := valueobject.NewTransfer(
		in.BatchID, denom, amount,
		in.Account.ID(), target,
		valueobject.InternalAccountID, valueobject.AddrPenaltyInterestReceived,
		"ACCRUE_PENALTY_INTEREST",
		fmt.Sprintf("daily penalty accrual at %s", rate),
	)
	if err != nil {
		return nil, fmt.Errorf("build penalty accrual posting: %w", err)
	}
	return []valueobject.Posting{p}, nil
}
