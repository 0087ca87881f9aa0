package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

func paymentInput(t *testing.T, balances map[valueobject.BucketAddress]decimal.Decimal, amount decimal.Decimal) service.PaymentInput {
	t.Helper()
	account := testAccount(t, testParams())
	return service.PaymentInput{
		BatchID:      "batch-payment",
		Account:      account,
		Config:       testConfig(t),
		Balances:     testSnapshot(balances),
		EffectiveAt:  time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		Amount:       amount,
		Denomination: "GBP",
	}
}

func TestProcess_RejectsWrongDenomination(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, nil, decimal.NewFromInt(100))
	in.Denomination = "EUR"

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, valueobject.RejectionWrongDenomination, out.Rejection.Category)
	assert.Empty(t, out.Postings)
}

func TestProcess_RejectsNonPositiveAmount(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		out, err := allocator.Process(paymentInput(t, nil, amount))
		require.NoError(t, err)
		require.NotNil(t, out.Rejection, "amount %s", amount)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	}
}

func TestProcess_OutboundWithoutTypeIsRejected(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, nil, decimal.NewFromInt(100))
	in.Outbound = true

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, valueobject.RejectionInsufficientDetail, out.Rejection.Category)
}

func TestProcess_OutboundFee(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	t.Run("flat fee", func(t *testing.T) {
		in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
			valueobject.AddrPrincipal: decimal.NewFromInt(1000),
		}, decimal.NewFromInt(200))
		in.Outbound = true
		in.PaymentType = "ATM_MEPS"

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.Nil(t, out.Rejection)
		require.Len(t, out.Postings, 1)

		fee := sumEntries(out.Postings, testAccountID, valueobject.AddrPrincipal)
		assert.True(t, fee.Equal(decimal.NewFromInt(1)), "got %s", fee)
	})

	t.Run("below threshold charges nothing", func(t *testing.T) {
		in := paymentInput(t, nil, decimal.NewFromInt(4999))
		in.Outbound = true
		in.PaymentType = "DIRECT_DEBIT"

		out, err := allocator.Process(in)
		require.NoError(t, err)
		assert.Nil(t, out.Rejection)
		assert.Empty(t, out.Postings)
	})

	t.Run("at threshold charges the fee", func(t *testing.T) {
		in := paymentInput(t, nil, decimal.NewFromInt(5000))
		in.Outbound = true
		in.PaymentType = "DIRECT_DEBIT"

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.Len(t, out.Postings, 1)
		fee := sumEntries(out.Postings, testAccountID, valueobject.AddrPrincipal)
		assert.True(t, fee.Equal(decimal.NewFromInt(5)))
	})
}

func TestProcess_InterestWaiver(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	t.Run("waives up to the billed interest", func(t *testing.T) {
		in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
			valueobject.AddrInterestDue: decimal.NewFromInt(50),
		}, decimal.NewFromInt(80))
		in.InterestAdjustment = true

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.Nil(t, out.Rejection)

		after := in.Balances.Apply(out.Postings...)
		assert.True(t, after.BalanceAt(valueobject.AddrInterestDue).IsZero())
	})

	t.Run("nothing to waive is a rejection", func(t *testing.T) {
		in := paymentInput(t, nil, decimal.NewFromInt(80))
		in.InterestAdjustment = true

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.NotNil(t, out.Rejection)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	})
}

func TestProcess_AllocatesInHierarchyOrder(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:        decimal.NewFromInt(1000),
		valueobject.AddrPenalties:        decimal.NewFromInt(5),
		valueobject.AddrInterestOverdue:  decimal.NewFromInt(10),
		valueobject.AddrPrincipalOverdue: decimal.NewFromInt(20),
		valueobject.AddrInterestDue:      decimal.NewFromInt(30),
		valueobject.AddrPrincipalDue:     decimal.NewFromInt(40),
	}, decimal.NewFromInt(50))

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)
	assert.False(t, out.Closed)
	assertBalanced(t, out.Postings)

	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrPenalties).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrInterestOverdue).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipalOverdue).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrInterestDue).Equal(decimal.NewFromInt(15)),
		"50 covers 5+10+20 then 15 of the 30 interest due")
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipalDue).Equal(decimal.NewFromInt(40)))
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipal).Equal(decimal.NewFromInt(1000)))
}

func TestProcess_SurplusPrepaysPrincipalAndTracksOverpayment(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(1000),
		valueobject.AddrInterestDue:                   decimal.NewFromInt(30),
		valueobject.AddrEMIPrincipalExcess:            decimal.NewFromInt(100),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(500),
	}, decimal.NewFromInt(75))

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)
	assertBalanced(t, out.Postings)

	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrInterestDue).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipal).Equal(decimal.NewFromInt(955)),
		"45 surplus prepays principal, got %s", after.BalanceAt(valueobject.AddrPrincipal))

	// The instalment-excess tracker is not cash debt and must not absorb the
	// payment.
	assert.True(t, after.BalanceAt(valueobject.AddrEMIPrincipalExcess).Equal(decimal.NewFromInt(100)))

	assert.True(t, after.BalanceAt(valueobject.AddrOverpayment).Equal(decimal.NewFromInt(45)))
	assert.True(t, after.BalanceAt(valueobject.AddrOverpaymentSincePrevDueCalc).Equal(decimal.NewFromInt(45)))
	assert.True(t, after.BalanceAt(valueobject.AddrRemainingOverpaymentAllowance).Equal(decimal.NewFromInt(455)))
}

func TestProcess_SurplusClearsPendingCapitalisation(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                 decimal.NewFromInt(100),
		valueobject.AddrAccruedInterestPendingCap: decimal.NewFromInt(40),
	}, decimal.NewFromInt(130))

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)

	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.BalanceAt(valueobject.AddrPrincipal).IsZero())
	assert.True(t, after.BalanceAt(valueobject.AddrAccruedInterestPendingCap).Equal(decimal.NewFromInt(10)))
}

func TestProcess_OverpaymentBeyondSettlementIsRejected(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:   decimal.NewFromInt(1000),
		valueobject.AddrInterestDue: decimal.NewFromInt(30),
	}, decimal.NewFromInt(1031))

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	assert.Empty(t, out.Postings)
}

func TestProcess_FullSettlementClosesAccount(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(20000),
		valueobject.AddrInterestDue:                   decimal.NewFromInt(50),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(30000),
	}, decimal.NewFromInt(20050))

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)
	assert.True(t, out.Closed)
	assertBalanced(t, out.Postings)

	after := in.Balances.Apply(out.Postings...)
	assert.True(t, after.TotalOutstandingDebt().IsZero())

	require.Len(t, out.Notifications, 1)
	assert.Equal(t, valueobject.NotificationClosure, out.Notifications[0].Type)
}

func TestProcess_FullSettlementChargesClosureFees(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	// Principal 40000 against a 30000 remaining allowance projects a 10000
	// overdraw -> 500 allowance fee at 5%, plus a 100 flat early repayment fee.
	balances := map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(40000),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(30000),
	}

	t.Run("exact settlement closes with fee postings", func(t *testing.T) {
		in := paymentInput(t, balances, decimal.NewFromInt(40600))
		in.Config.EarlyRepaymentFee = decimal.NewFromInt(100)

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.Nil(t, out.Rejection)
		assert.True(t, out.Closed)

		early := sumEntries(out.Postings, valueobject.InternalAccountID, valueobject.AddrEarlyRepaymentFeeIncome)
		assert.True(t, early.Equal(decimal.NewFromInt(-100)), "got %s", early)
		allowance := sumEntries(out.Postings, valueobject.InternalAccountID, valueobject.AddrAllowanceFeeIncome)
		assert.True(t, allowance.Equal(decimal.NewFromInt(-500)), "got %s", allowance)

		after := in.Balances.Apply(out.Postings...)
		assert.True(t, after.TotalOutstandingDebt().IsZero())
	})

	t.Run("near miss is rejected", func(t *testing.T) {
		in := paymentInput(t, balances, decimal.NewFromInt(40599))
		in.Config.EarlyRepaymentFee = decimal.NewFromInt(100)

		out, err := allocator.Process(in)
		require.NoError(t, err)
		require.NotNil(t, out.Rejection)
		assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	})
}

func TestProcess_DebtOnlyAmountLeavingFeesUnpaidIsRejected(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	// 40000 would zero every outstanding bucket, but the 100 early repayment
	// fee and 500 allowance fee would go unpaid; the account must not settle
	// silently without them.
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(40000),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(30000),
	}, decimal.NewFromInt(40000))
	in.Config.EarlyRepaymentFee = decimal.NewFromInt(100)

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, valueobject.RejectionAgainstTerms, out.Rejection.Category)
	assert.Empty(t, out.Postings)
	assert.False(t, out.Closed)
}

func TestProcess_PercentageEarlyRepaymentFee(t *testing.T) {
	allocator := service.NewRepaymentAllocator()

	// A negative flat fee selects the percentage fallback: 5% of the principal.
	in := paymentInput(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:                     decimal.NewFromInt(10000),
		valueobject.AddrRemainingOverpaymentAllowance: decimal.NewFromInt(20000),
	}, decimal.NewFromInt(10500))
	in.Config.EarlyRepaymentFee = decimal.NewFromInt(-1)

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.Nil(t, out.Rejection)
	assert.True(t, out.Closed)

	early := sumEntries(out.Postings, valueobject.InternalAccountID, valueobject.AddrEarlyRepaymentFeeIncome)
	assert.True(t, early.Equal(decimal.NewFromInt(-500)), "got %s", early)
}

func TestProcess_RejectionLeavesFlagsAlone(t *testing.T) {
	allocator := service.NewRepaymentAllocator()
	in := paymentInput(t, nil, decimal.NewFromInt(100))
	in.Denomination = "USD"
	in.Flags = model.Flags{AlreadyDelinquent: true}

	out, err := allocator.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Empty(t, out.Postings)
	assert.Empty(t, out.Notifications)
	assert.False(t, out.Closed)
}
