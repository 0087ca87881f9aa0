package valueobject

import "fmt"

// RejectionCategory classifies why an inbound request was refused.
type RejectionCategory string

const (
	RejectionAgainstTerms       RejectionCategory = "AGAINST_TERMS"
	RejectionWrongDenomination  RejectionCategory = "WRONG_DENOMINATION"
	RejectionInsufficientDetail RejectionCategory = "INSUFFICIENT_DETAIL"
)

// Rejection is the typed refuse-without-state-change result. It is returned
// as a value on the invocation result, never raised as an error, and is
// always decided before any posting is constructed.
type Rejection struct {
	Category RejectionCategory
	Reason   string
}

// NewRejection builds a rejection with a formatted human-readable reason.
func NewRejection(category RejectionCategory, format string, args ...any) *Rejection {
	return &Rejection{Category: category, Reason: fmt.Sprintf(format, args...)}
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Category, r.Reason)
}
