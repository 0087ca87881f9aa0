package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllowancePeriod describes one annual fee-free overpayment window. The used
// amount is derived from the allowance tracker bucket, which overpayments
// draw down and which may go negative; the excess is charged at the next
// allowance-check tick, not immediately.
type AllowancePeriod struct {
	StartedAt time.Time
	Allowance decimal.Decimal
	FeePct    decimal.Decimal
}

// NewAllowancePeriod computes the period allowance from the live principal
// and the configured percentage, rounded to the billing precision.
func NewAllowancePeriod(
	principal, allowancePct, feePct decimal.Decimal,
	startedAt time.Time,
	precision int32,
) AllowancePeriod {
	return AllowancePeriod{
		StartedAt: startedAt,
		Allowance: principal.Mul(allowancePct).Round(precision),
		FeePct:    feePct,
	}
}

// ExcessFee returns the fee owed for the given tracker balance. A
// non-negative tracker means the allowance was not exhausted and no fee is
// due.
func (p AllowancePeriod) ExcessFee(trackerBalance decimal.Decimal, precision int32) decimal.Decimal {
	if trackerBalance.GreaterThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return trackerBalance.Neg().Mul(p.FeePct).Round(precision)
}
