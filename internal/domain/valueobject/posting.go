package valueobject

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySide marks a posting entry as a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// PostingEntry is one leg of a double-entry posting.
type PostingEntry struct {
	Account string
	Address BucketAddress
	Side    EntrySide
	Amount  decimal.Decimal
}

// Posting is an atomic, immutable set of debit/credit entries across buckets.
// Once constructed it is final; the engine composes new postings rather than
// mutating existing ones.
type Posting struct {
	id                   uuid.UUID
	batchID              string
	denomination         string
	entries              []PostingEntry
	eventName            string
	description          string
	overrideRestrictions bool
}

// NewPosting validates and builds a posting. Every entry amount must be
// strictly positive and the sum of debits must equal the sum of credits.
func NewPosting(
	batchID, denomination string,
	entries []PostingEntry,
	eventName, description string,
	overrideRestrictions bool,
) (Posting, error) {
	if denomination == "" {
		return Posting{}, fmt.Errorf("denomination is required")
	}
	if len(entries) == 0 {
		return Posting{}, fmt.Errorf("at least one entry is required")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		if e.Account == "" {
			return Posting{}, fmt.Errorf("entry account is required")
		}
		if e.Address == "" {
			return Posting{}, fmt.Errorf("entry address is required")
		}
		if e.Amount.LessThanOrEqual(decimal.Zero) {
			return Posting{}, fmt.Errorf("entry amount must be positive, got %s", e.Amount)
		}
		switch e.Side {
		case Debit:
			debits = debits.Add(e.Amount)
		case Credit:
			credits = credits.Add(e.Amount)
		default:
			return Posting{}, fmt.Errorf("entry side must be DEBIT or CREDIT, got %q", e.Side)
		}
	}
	if !debits.Equal(credits) {
		return Posting{}, fmt.Errorf("posting is unbalanced: debits %s != credits %s", debits, credits)
	}

	out := Posting{
		id:                   uuid.New(),
		batchID:              batchID,
		denomination:         denomination,
		eventName:            eventName,
		description:          description,
		overrideRestrictions: overrideRestrictions,
	}
	out.entries = make([]PostingEntry, len(entries))
	copy(out.entries, entries)
	return out, nil
}

// ReconstructPosting rebuilds a posting from persistence without
// re-validating or re-identifying it.
func ReconstructPosting(
	id uuid.UUID,
	batchID, denomination string,
	entries []PostingEntry,
	eventName, description string,
	overrideRestrictions bool,
) Posting {
	out := Posting{
		id:                   id,
		batchID:              batchID,
		denomination:         denomination,
		eventName:            eventName,
		description:          description,
		overrideRestrictions: overrideRestrictions,
	}
	out.entries = make([]PostingEntry, len(entries))
	copy(out.entries, entries)
	return out
}

// NewTransfer builds the common two-legged posting moving amount from one
// bucket to another.
func NewTransfer(
	batchID, denomination string,
	amount decimal.Decimal,
	debitAccount string, debitAddress BucketAddress,
	creditAccount string, creditAddress BucketAddress,
	eventName, description string,
) (Posting, error) {
	return NewPosting(batchID, denomination, []PostingEntry{
		{Account: debitAccount, Address: debitAddress, Side: Debit, Amount: amount},
		{Account: creditAccount, Address: creditAddress, Side: Credit, Amount: amount},
	}, eventName, description, false)
}

// MakeBatchID derives the batch identifier every posting of one invocation is
// tagged with.
func MakeBatchID(accountID, eventName string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", accountID, strings.ToLower(eventName), at.Unix())
}

// Accessors
func (p Posting) ID() uuid.UUID              { return p.id }
func (p Posting) BatchID() string            { return p.batchID }
func (p Posting) Denomination() string       { return p.denomination }
func (p Posting) EventName() string          { return p.eventName }
func (p Posting) Description() string        { return p.description }
func (p Posting) OverrideRestrictions() bool { return p.overrideRestrictions }

// Entries returns a defensive copy.
func (p Posting) Entries() []PostingEntry {
	out := make([]PostingEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p Posting) String() string {
	parts := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		parts = append(parts, fmt.Sprintf("%s %s/%s %s", e.Side, e.Account, e.Address, e.Amount))
	}
	return fmt.Sprintf("[%s] %s", p.eventName, strings.Join(parts, "; "))
}
