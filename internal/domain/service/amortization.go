package service

import (
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
)

var (
	decimalOne    = decimal.NewFromInt(1)
	decimalTwelve = decimal.NewFromInt(12)
)

// monthlyRatePrecision pins the monthly-rate division so the EMI is stable
// across re-runs regardless of the annual rate's scale.
const monthlyRatePrecision = 10

// AmortizationCalculator derives the equated monthly instalment and the
// remaining-term view of an account.
type AmortizationCalculator struct{}

// NewAmortizationCalculator creates the calculator.
func NewAmortizationCalculator() *AmortizationCalculator {
	return &AmortizationCalculator{}
}

// MonthlyRate converts an annual rate into the per-cycle rate.
func (c *AmortizationCalculator) MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.DivRound(decimalTwelve, monthlyRatePrecision)
}

// ComputeEMI returns the equated monthly instalment for the given principal,
// annual rate and remaining term:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate degrades to straight-line principal division. The result is
// rounded half-up at the given precision.
func (c *AmortizationCalculator) ComputeEMI(
	principal, annualRate decimal.Decimal,
	remainingTermMonths int,
	precision int32,
) decimal.Decimal {
	if remainingTermMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	r := c.MonthlyRate(annualRate)
	if r.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(remainingTermMonths)), precision)
	}

	factor := decimalOne.Add(r).Pow(decimal.NewFromInt(int64(remainingTermMonths)))
	return principal.Mul(r).Mul(factor).
		Div(factor.Sub(decimalOne)).
		Round(precision)
}

// TermDetails is the elapsed/remaining cycle count at a due calculation, with
// the current cycle counted as remaining.
type TermDetails struct {
	Elapsed   int
	Remaining int
}

// Terms derives the term position from the due-calculation counter. With the
// reduce-term overpayment preference, accumulated overpayments shorten the
// remaining term by one whole cycle per EMI covered; anything below one EMI
// leaves the term unchanged.
func (c *AmortizationCalculator) Terms(
	elapsed, totalTermMonths int,
	overpayment, emi decimal.Decimal,
	impact model.OverpaymentImpact,
) TermDetails {
	remaining := totalTermMonths - elapsed
	if remaining < 0 {
		remaining = 0
	}

	if impact == model.OverpaymentReducesTerm && emi.IsPositive() && overpayment.GreaterThanOrEqual(emi) {
		cut := int(overpayment.Div(emi).Floor().IntPart())
		remaining -= cut
		if remaining < 0 {
			remaining = 0
		}
	}

	return TermDetails{Elapsed: elapsed, Remaining: remaining}
}
