package model

import (
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// ProductConfig carries the product-level parameters resolved from the
// configuration store at the invocation's effective time. It is supplied
// fresh on every call; the engine holds no mutable global state.
type ProductConfig struct {
	Denomination string

	DaysInYear          decimal.Decimal
	AccrualPrecision    int32
	FulfilmentPrecision int32

	VariableBaseRate decimal.Decimal

	PenaltyRate decimal.Decimal
	// PenaltyIncludesBase adds the current standard rate on top of the
	// penalty rate.
	PenaltyIncludesBase bool
	// PenaltyCompoundsOverdueInterest accrues penalty interest on overdue
	// interest as well as overdue principal.
	PenaltyCompoundsOverdueInterest bool

	GracePeriodDays  int
	LateRepaymentFee decimal.Decimal

	// EarlyRepaymentFee is the flat closure fee. A negative value selects the
	// percentage fallback: OverpaymentAllowanceFeePct of remaining principal.
	EarlyRepaymentFee decimal.Decimal

	OverpaymentAllowancePct    decimal.Decimal
	OverpaymentAllowanceFeePct decimal.Decimal

	PaymentTypeFees valueobject.PaymentTypeFeeTable
}

// Flags is the point-in-time answer from the flag store for the blocking
// conditions this engine reacts to.
type Flags struct {
	// DueCalculationBlocked is the repayment-holiday flag: it reroutes
	// accrual into pending-capitalisation buckets and reduces due
	// calculation to a counter increment.
	DueCalculationBlocked bool
	PenaltyBlocked        bool
	DelinquencyBlocked    bool
	AlreadyDelinquent     bool
}
