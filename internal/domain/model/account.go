package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of a mortgage account.
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// OverpaymentImpact selects how an overpayment feeds back into the
// amortization: either the EMI is recomputed downward at the next due
// calculation, or the EMI is held and the remaining term shrinks.
type OverpaymentImpact string

const (
	OverpaymentReducesEMI  OverpaymentImpact = "REDUCE_EMI"
	OverpaymentReducesTerm OverpaymentImpact = "REDUCE_TERM"
)

// InstanceParams are the per-account configuration values fixed at
// origination (and adjusted only through explicit parameter changes).
type InstanceParams struct {
	Principal              decimal.Decimal
	TotalTermMonths        int
	InterestOnlyTermMonths int
	FixedRateTermMonths    int
	FixedAnnualRate        decimal.Decimal
	VariableRateAdjustment decimal.Decimal
	BillingDay             int
	OverpaymentImpact      OverpaymentImpact
}

// Account is the aggregate the engine operates on. It is owned exclusively by
// the engine for the duration of one invocation and is immutable; mutations
// return a new copy.
type Account struct {
	id           string
	denomination string
	status       AccountStatus
	params       InstanceParams
	createdAt    time.Time
	updatedAt    time.Time
}

// NewAccount creates an account in PENDING status.
func NewAccount(denomination string, params InstanceParams, now time.Time) (Account, error) {
	if denomination == "" {
		return Account{}, errors.New("denomination is required")
	}
	if params.Principal.LessThanOrEqual(decimal.Zero) {
		return Account{}, errors.New("principal must be positive")
	}
	if params.TotalTermMonths <= 0 {
		return Account{}, errors.New("total term must be positive")
	}
	if params.InterestOnlyTermMonths < 0 || params.InterestOnlyTermMonths >= params.TotalTermMonths {
		return Account{}, errors.New("interest-only term must be shorter than the total term")
	}
	if params.BillingDay < 1 || params.BillingDay > 31 {
		return Account{}, errors.New("billing day must be between 1 and 31")
	}
	if params.OverpaymentImpact == "" {
		params.OverpaymentImpact = OverpaymentReducesEMI
	}

	return Account{
		id:           uuid.New().String(),
		denomination: denomination,
		status:       AccountStatusPending,
		params:       params,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructAccount rebuilds an Account from persistence.
func ReconstructAccount(
	id, denomination string,
	status AccountStatus,
	params InstanceParams,
	createdAt, updatedAt time.Time,
) Account {
	return Account{
		id:           id,
		denomination: denomination,
		status:       status,
		params:       params,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Activate transitions PENDING -> ACTIVE.
func (a Account) Activate(now time.Time) (Account, error) {
	if a.status != AccountStatusPending {
		return a, errors.New("only pending accounts can be activated")
	}
	next := a
	next.status = AccountStatusActive
	next.updatedAt = now
	return next, nil
}

// Close transitions ACTIVE -> CLOSED.
func (a Account) Close(now time.Time) (Account, error) {
	if a.status != AccountStatusActive {
		return a, errors.New("only active accounts can be closed")
	}
	next := a
	next.status = AccountStatusClosed
	next.updatedAt = now
	return next, nil
}

// WithBillingDay returns a copy with the billing day replaced.
func (a Account) WithBillingDay(day int, now time.Time) (Account, error) {
	if day < 1 || day > 31 {
		return a, errors.New("billing day must be between 1 and 31")
	}
	next := a
	next.params.BillingDay = day
	next.updatedAt = now
	return next, nil
}

// WithVariableRateAdjustment returns a copy with the per-account variable
// rate adjustment replaced.
func (a Account) WithVariableRateAdjustment(adjustment decimal.Decimal, now time.Time) Account {
	next := a
	next.params.VariableRateAdjustment = adjustment
	next.updatedAt = now
	return next
}

// Convert replaces the term and rate configuration on a product switch.
func (a Account) Convert(params InstanceParams, now time.Time) (Account, error) {
	if a.status != AccountStatusActive {
		return a, errors.New("only active accounts can be converted")
	}
	next := a
	next.params = params
	next.updatedAt = now
	return next, nil
}

// Accessors
func (a Account) ID() string             { return a.id }
func (a Account) Denomination() string   { return a.denomination }
func (a Account) Status() AccountStatus  { return a.status }
func (a Account) Params() InstanceParams { return a.params }
func (a Account) CreatedAt() time.Time   { return a.createdAt }
func (a Account) UpdatedAt() time.Time   { return a.updatedAt }
