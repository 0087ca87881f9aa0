package model

import (
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// BalanceSnapshot is a read-only point-in-time view of the named balance
// buckets for one account and denomination. Every component reads state
// through it; nothing queries persistence directly. Applying a posting
// returns a new snapshot, the input is never mutated.
type BalanceSnapshot struct {
	accountID    string
	denomination string
	balances     map[valueobject.BucketAddress]decimal.Decimal
}

// NewBalanceSnapshot builds a snapshot, copying the supplied balances.
func NewBalanceSnapshot(
	accountID, denomination string,
	balances map[valueobject.BucketAddress]decimal.Decimal,
) BalanceSnapshot {
	copied := make(map[valueobject.BucketAddress]decimal.Decimal, len(balances))
	for addr, amount := range balances {
		copied[addr] = amount
	}
	return BalanceSnapshot{
		accountID:    accountID,
		denomination: denomination,
		balances:     copied,
	}
}

// AccountID returns the account this snapshot belongs to.
func (s BalanceSnapshot) AccountID() string { return s.accountID }

// Denomination returns the snapshot's denomination.
func (s BalanceSnapshot) Denomination() string { return s.denomination }

// BalanceAt returns the balance of one bucket, zero when the bucket has no
// entries.
func (s BalanceSnapshot) BalanceAt(address valueobject.BucketAddress) decimal.Decimal {
	if amount, ok := s.balances[address]; ok {
		return amount
	}
	return decimal.Zero
}

// Sum returns the combined balance of the given buckets.
func (s BalanceSnapshot) Sum(addresses ...valueobject.BucketAddress) decimal.Decimal {
	total := decimal.Zero
	for _, addr := range addresses {
		total = total.Add(s.BalanceAt(addr))
	}
	return total
}

// Apply returns a new snapshot with the posting's own-account entries
// applied. Debits increase a bucket, credits decrease it. Entries on other
// accounts are ignored; the snapshot only tracks its own account.
func (s BalanceSnapshot) Apply(postings ...valueobject.Posting) BalanceSnapshot {
	next := NewBalanceSnapshot(s.accountID, s.denomination, s.balances)
	for _, p := range postings {
		for _, e := range p.Entries() {
			if e.Account != s.accountID {
				continue
			}
			current := next.BalanceAt(e.Address)
			switch e.Side {
			case valueobject.Debit:
				next.balances[e.Address] = current.Add(e.Amount)
			case valueobject.Credit:
				next.balances[e.Address] = current.Sub(e.Amount)
			}
		}
	}
	return next
}

// TotalOutstandingDebt sums every bucket that counts toward what the borrower
// currently owes.
func (s BalanceSnapshot) TotalOutstandingDebt() decimal.Decimal {
	return s.Sum(valueobject.OutstandingDebtAddresses...)
}

// LateRepaymentTotal sums the overdue buckets that drive delinquency and
// penalty interest.
func (s BalanceSnapshot) LateRepaymentTotal() decimal.Decimal {
	return s.Sum(valueobject.LateRepaymentAddresses...)
}
