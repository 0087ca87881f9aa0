package service

import (
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
)

// InterestRateSource yields the annual interest rate effective for a given
// point in the amortization, measured in elapsed due-calculation cycles.
// Injected as a strategy so rate behaviour stays swappable per product.
type InterestRateSource interface {
	AnnualRate(elapsedTermMonths int) decimal.Decimal
}

// FixedThenVariableRate applies a fixed rate for an initial term, then the
// variable base rate plus a per-account adjustment.
type FixedThenVariableRate struct {
	FixedRate       decimal.Decimal
	BaseRate        decimal.Decimal
	Adjustment      decimal.Decimal
	FixedTermMonths int
}

// AnnualRate returns the rate for the cycle following elapsedTermMonths
// completed cycles.
func (r FixedThenVariableRate) AnnualRate(elapsedTermMonths int) decimal.Decimal {
	if elapsedTermMonths < r.FixedTermMonths {
		return r.FixedRate
	}
	return r.BaseRate.Add(r.Adjustment)
}

// RateSourceFor builds the product's rate strategy from account and product
// configuration.
func RateSourceFor(account model.Account, cfg model.ProductConfig) InterestRateSource {
	params := account.Params()
	return FixedThenVariableRate{
		FixedRate:       params.FixedAnnualRate,
		BaseRate:        cfg.VariableBaseRate,
		Adjustment:      params.VariableRateAdjustment,
		FixedTermMonths: params.FixedRateTermMonths,
	}
}

// ReamortisationContext carries the state the re-amortization trigger
// conditions inspect at a due-calculation cycle.
type ReamortisationContext struct {
	ElapsedTerm             int
	FixedRateTermMonths     int
	InterestOnlyTermMonths  int
	OverpaymentSincePrev    decimal.Decimal
	OverpaymentImpact       model.OverpaymentImpact
	ReamortisationRequested bool
}

// ReamortisationCondition decides whether the EMI must be recomputed at this
// due-calculation cycle. Conditions are independent; any one firing triggers
// a recompute.
type ReamortisationCondition interface {
	Triggered(ctx ReamortisationContext) bool
}

// RateTransitionCondition fires when the fixed-rate term ends or a variable
// rate parameter was updated since the previous cycle. Suppressed inside the
// interest-only term, where the EMI is zero regardless of rate.
type RateTransitionCondition struct{}

func (RateTransitionCondition) Triggered(ctx ReamortisationContext) bool {
	if ctx.ElapsedTerm < ctx.InterestOnlyTermMonths {
		return false
	}
	return ctx.ReamortisationRequested ||
		(ctx.FixedRateTermMonths > 0 && ctx.ElapsedTerm == ctx.FixedRateTermMonths)
}

// InterestOnlyEndCondition fires at the first due calculation after the
// interest-only term, when amortization begins.
type InterestOnlyEndCondition struct{}

func (InterestOnlyEndCondition) Triggered(ctx ReamortisationContext) bool {
	return ctx.ElapsedTerm == ctx.InterestOnlyTermMonths
}

// OverpaymentCondition fires when an overpayment landed since the previous
// cycle and the product prefers a lower EMI over a shorter term.
type OverpaymentCondition struct{}

func (OverpaymentCondition) Triggered(ctx ReamortisationContext) bool {
	if ctx.ElapsedTerm < ctx.InterestOnlyTermMonths {
		return false
	}
	return ctx.OverpaymentImpact == model.OverpaymentReducesEMI &&
		ctx.OverpaymentSincePrev.IsPositive()
}

// DefaultReamortisationConditions is the product's fixed condition set.
var DefaultReamortisationConditions = []ReamortisationCondition{
	RateTransitionCondition{},
	InterestOnlyEndCondition{},
	OverpaymentCondition{},
}
