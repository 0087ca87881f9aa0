package valueobject_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

func TestNewPosting_Balanced(t *testing.T) {
	p, err := valueobject.NewPosting("batch-1", "GBP", []valueobject.PostingEntry{
		{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: decimal.NewFromInt(100)},
		{Account: valueobject.InternalAccountID, Address: valueobject.AddrPaymentsClearing, Side: valueobject.Credit, Amount: decimal.NewFromInt(100)},
	}, "ACCOUNT_ACTIVATED", "disburse principal", false)
	require.NoError(t, err)

	assert.Equal(t, "batch-1", p.BatchID())
	assert.Equal(t, "GBP", p.Denomination())
	assert.Len(t, p.Entries(), 2)
	assert.NotEqual(t, "", p.ID().String())
}

func TestNewPosting_Unbalanced(t *testing.T) {
	_, err := valueobject.NewPosting("batch-1", "GBP", []valueobject.PostingEntry{
		{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: decimal.NewFromInt(100)},
		{Account: valueobject.InternalAccountID, Address: valueobject.AddrPaymentsClearing, Side: valueobject.Credit, Amount: decimal.NewFromInt(99)},
	}, "ACCOUNT_ACTIVATED", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestNewPosting_RejectsNonPositiveAmounts(t *testing.T) {
	cases := []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)}
	for _, amount := range cases {
		_, err := valueobject.NewPosting("batch-1", "GBP", []valueobject.PostingEntry{
			{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: amount},
			{Account: "acc-1", Address: valueobject.AddrPrincipalDue, Side: valueobject.Credit, Amount: amount},
		}, "X", "", false)
		assert.Error(t, err, "amount %s must be rejected", amount)
	}
}

func TestNewPosting_RequiresDenomination(t *testing.T) {
	_, err := valueobject.NewPosting("batch-1", "", []valueobject.PostingEntry{
		{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: decimal.NewFromInt(1)},
		{Account: "acc-1", Address: valueobject.AddrPrincipalDue, Side: valueobject.Credit, Amount: decimal.NewFromInt(1)},
	}, "X", "", false)
	assert.Error(t, err)
}

func TestNewPosting_RejectsUnknownSide(t *testing.T) {
	_, err := valueobject.NewPosting("batch-1", "GBP", []valueobject.PostingEntry{
		{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: "BOTH", Amount: decimal.NewFromInt(1)},
	}, "X", "", false)
	assert.Error(t, err)
}

func TestNewTransfer_TwoLegs(t *testing.T) {
	p, err := valueobject.NewTransfer(
		"batch-1", "GBP", decimal.NewFromInt(50),
		"acc-1", valueobject.AddrPrincipalDue,
		"acc-1", valueobject.AddrPrincipal,
		"DUE_AMOUNT_CALCULATION", "raise principal due",
	)
	require.NoError(t, err)

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, valueobject.Debit, entries[0].Side)
	assert.Equal(t, valueobject.AddrPrincipalDue, entries[0].Address)
	assert.Equal(t, valueobject.Credit, entries[1].Side)
	assert.Equal(t, valueobject.AddrPrincipal, entries[1].Address)
}

func TestPosting_EntriesAreCopied(t *testing.T) {
	entries := []valueobject.PostingEntry{
		{Account: "acc-1", Address: valueobject.AddrPrincipal, Side: valueobject.Debit, Amount: decimal.NewFromInt(10)},
		{Account: "acc-1", Address: valueobject.AddrPrincipalDue, Side: valueobject.Credit, Amount: decimal.NewFromInt(10)},
	}
	p, err := valueobject.NewPosting("batch-1", "GBP", entries, "X", "", false)
	require.NoError(t, err)

	entries[0].Account = "mutated"
	got := p.Entries()
	assert.Equal(t, "acc-1", got[0].Account)

	got[1].Account = "mutated"
	assert.Equal(t, "acc-1", p.Entries()[1].Account)
}

func TestMakeBatchID_Deterministic(t *testing.T) {
	at := time.Date(2026, time.March, 1, 0, 0, 2, 0, time.UTC)
	a := valueobject.MakeBatchID("acc-1", "DUE_AMOUNT_CALCULATION", at)
	b := valueobject.MakeBatchID("acc-1", "DUE_AMOUNT_CALCULATION", at)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "acc-1")
	assert.Contains(t, a, "due_amount_calculation")
}
