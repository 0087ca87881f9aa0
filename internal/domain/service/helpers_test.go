package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

const testAccountID = "acc-test"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testConfig(t *testing.T) model.ProductConfig {
	t.Helper()
	fees, err := valueobject.ParsePaymentTypeFeeTable(
		`{"ATM_MEPS": "1", "DIRECT_DEBIT": {"fee": "5", "threshold": "5000"}}`,
	)
	require.NoError(t, err)
	return model.ProductConfig{
		Denomination:                    "GBP",
		DaysInYear:                      decimal.NewFromInt(365),
		AccrualPrecision:                5,
		FulfilmentPrecision:             2,
		VariableBaseRate:                dec("0.0399"),
		PenaltyRate:                     dec("0.24"),
		PenaltyIncludesBase:             false,
		PenaltyCompoundsOverdueInterest: false,
		GracePeriodDays:                 5,
		LateRepaymentFee:                decimal.NewFromInt(25),
		EarlyRepaymentFee:               decimal.Zero,
		OverpaymentAllowancePct:         dec("0.1"),
		OverpaymentAllowanceFeePct:      dec("0.05"),
		PaymentTypeFees:                 fees,
	}
}

func testAccount(t *testing.T, params model.InstanceParams) model.Account {
	t.Helper()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return model.ReconstructAccount(
		testAccountID, "GBP", model.AccountStatusActive, params, now, now,
	)
}

func testParams() model.InstanceParams {
	return model.InstanceParams{
		Principal:              decimal.NewFromInt(300000),
		TotalTermMonths:        12,
		InterestOnlyTermMonths: 0,
		FixedRateTermMonths:    12,
		FixedAnnualRate:        dec("0.01"),
		VariableRateAdjustment: decimal.Zero,
		BillingDay:             1,
		OverpaymentImpact:      model.OverpaymentReducesEMI,
	}
}

func testSnapshot(balances map[valueobject.BucketAddress]decimal.Decimal) model.BalanceSnapshot {
	return model.NewBalanceSnapshot(testAccountID, "GBP", balances)
}

// sumEntries nets the debit minus credit amounts a posting set applies to one
// bucket of one account.
func sumEntries(postings []valueobject.Posting, account string, address valueobject.BucketAddress) decimal.Decimal {
	total := decimal.Zero
	for _, p := range postings {
		for _, e := range p.Entries() {
			if e.Account != account || e.Address != address {
				continue
			}
			if e.Side == valueobject.Debit {
				total = total.Add(e.Amount)
			} else {
				total = total.Sub(e.Amount)
			}
		}
	}
	return total
}

func assertBalanced(t *testing.T, postings []valueobject.Posting) {
	t.Helper()
	for _, p := range postings {
		debits := decimal.Zero
		credits := decimal.Zero
		for _, e := range p.Entries() {
			if e.Side == valueobject.Debit {
				debits = debits.Add(e.Amount)
			} else {
				credits = credits.Add(e.Amount)
			}
		}
		require.True(t, debits.Equal(credits), "posting %s is unbalanced", p)
	}
}
