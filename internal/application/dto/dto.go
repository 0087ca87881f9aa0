package dto

import "time"

// OpenAccountInput creates a mortgage account in PENDING status.
type OpenAccountInput struct {
	Denomination           string `json:"denomination"`
	Principal              string `json:"principal"`
	TotalTermMonths        int    `json:"total_term_months"`
	InterestOnlyTermMonths int    `json:"interest_only_term_months"`
	FixedRateTermMonths    int    `json:"fixed_rate_term_months"`
	FixedAnnualRate        string `json:"fixed_annual_rate"`
	VariableRateAdjustment string `json:"variable_rate_adjustment"`
	BillingDay             int    `json:"billing_day"`
	OverpaymentImpact      string `json:"overpayment_impact"`
}

type OpenAccountOutput struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// ActivateAccountInput disburses the principal and starts the schedule.
type ActivateAccountInput struct {
	AccountID   string    `json:"account_id"`
	EffectiveAt time.Time `json:"effective_at"`
}

type ActivateAccountOutput struct {
	AccountID    string    `json:"account_id"`
	Status       string    `json:"status"`
	FirstDueCalc time.Time `json:"first_due_calc"`
}

// ProcessPaymentInput applies one transfer to the account.
type ProcessPaymentInput struct {
	AccountID          string    `json:"account_id"`
	Amount             string    `json:"amount"`
	Denomination       string    `json:"denomination"`
	Outbound           bool      `json:"outbound"`
	PaymentType        string    `json:"payment_type"`
	InterestAdjustment bool      `json:"interest_adjustment"`
	EffectiveAt        time.Time `json:"effective_at"`
}

type ProcessPaymentOutput struct {
	AccountID         string `json:"account_id"`
	Accepted          bool   `json:"accepted"`
	RejectionCategory string `json:"rejection_category,omitempty"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
	Closed            bool   `json:"closed"`
	PostingCount      int    `json:"posting_count"`
}

// RunScheduledTickInput fires one scheduled event kind for an account, used
// by the schedule runner and by operational replays.
type RunScheduledTickInput struct {
	AccountID   string    `json:"account_id"`
	Kind        string    `json:"kind"`
	EffectiveAt time.Time `json:"effective_at"`
}

type RunScheduledTickOutput struct {
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	PostingCount  int    `json:"posting_count"`
	Notifications int    `json:"notifications"`
}

// ChangeParametersInput adjusts per-account parameters. Nil fields are left
// unchanged.
type ChangeParametersInput struct {
	AccountID              string    `json:"account_id"`
	BillingDay             *int      `json:"billing_day,omitempty"`
	VariableRateAdjustment *string   `json:"variable_rate_adjustment,omitempty"`
	EffectiveAt            time.Time `json:"effective_at"`
}

type ChangeParametersOutput struct {
	AccountID         string `json:"account_id"`
	Accepted          bool   `json:"accepted"`
	RejectionCategory string `json:"rejection_category,omitempty"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
}

// ConvertProductInput switches the account onto new term and rate
// configuration, preserving balances and schedule history.
type ConvertProductInput struct {
	AccountID              string    `json:"account_id"`
	TotalTermMonths        int       `json:"total_term_months"`
	InterestOnlyTermMonths int       `json:"interest_only_term_months"`
	FixedRateTermMonths    int       `json:"fixed_rate_term_months"`
	FixedAnnualRate        string    `json:"fixed_annual_rate"`
	VariableRateAdjustment string    `json:"variable_rate_adjustment"`
	OverpaymentImpact      string    `json:"overpayment_impact"`
	EffectiveAt            time.Time `json:"effective_at"`
}

type ConvertProductOutput struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// CloseAccountInput requests an operational closure; it is refused while debt
// is outstanding.
type CloseAccountInput struct {
	AccountID   string    `json:"account_id"`
	EffectiveAt time.Time `json:"effective_at"`
}

type CloseAccountOutput struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// GetBalancesInput reads the live balance snapshot.
type GetBalancesInput struct {
	AccountID string `json:"account_id"`
}

type GetBalancesOutput struct {
	AccountID        string            `json:"account_id"`
	Denomination     string            `json:"denomination"`
	Balances         map[string]string `json:"balances"`
	TotalOutstanding string            `json:"total_outstanding"`
}
