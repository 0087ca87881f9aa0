package grpc

// messages.go defines the request/response payloads for
// lumen.mortgage.v1.MortgageService. They mirror the proto message shapes and
// travel over the JSON codec until buf-generated code replaces them.

type OpenAccountRequest struct {
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

type OpenAccountResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

type ActivateAccountRequest struct {
	AccountID   string `json:"account_id"`
	EffectiveAt string `json:"effective_at"`
}

type ActivateAccountResponse struct {
	AccountID    string `json:"account_id"`
	Status       string `json:"status"`
	FirstDueCalc string `json:"first_due_calc"`
}

type ProcessPaymentRequest struct {
	AccountID          string `json:"account_id"`
	Amount             string `json:"amount"`
	Denomination       string `json:"denomination"`
	Outbound           bool   `json:"outbound"`
	PaymentType        string `json:"payment_type"`
	InterestAdjustment bool   `json:"interest_adjustment"`
	EffectiveAt        string `json:"effective_at"`
}

type ProcessPaymentResponse struct {
	AccountID         string `json:"account_id"`
	Accepted          bool   `json:"accepted"`
	RejectionCategory string `json:"rejection_category,omitempty"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
	Closed            bool   `json:"closed"`
	PostingCount      int    `json:"posting_count"`
}

type RunScheduledTickRequest struct {
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	EffectiveAt string `json:"effective_at"`
}

type RunScheduledTickResponse struct {
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	PostingCount  int    `json:"posting_count"`
	Notifications int    `json:"notifications"`
}

type ChangeParametersRequest struct {
	AccountID              string  `json:"account_id"`
	BillingDay             *int    `json:"billing_day,omitempty"`
	VariableRateAdjustment *string `json:"variable_rate_adjustment,omitempty"`
	EffectiveAt            string  `json:"effective_at"`
}

type ChangeParametersResponse struct {
	AccountID         string `json:"account_id"`
	Accepted          bool   `json:"accepted"`
	RejectionCategory string `json:"rejection_category,omitempty"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
}

type ConvertProductRequest struct {
	AccountID              string `json:"account_id"`
	TotalTermMonths        int    `json:"total_term_months"`
	InterestOnlyTermMonths int    `json:"interest_only_term_months"`
	FixedRateTermMonths    int    `json:"fixed_rate_term_months"`
	FixedAnnualRate        string `json:"fixed_annual_rate"`
	VariableRateAdjustment string `json:"variable_rate_adjustment"`
	OverpaymentImpact      string `json:"overpayment_impact"`
	EffectiveAt            string `json:"effective_at"`
}

type ConvertProductResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

type CloseAccountRequest struct {
	AccountID   string `json:"account_id"`
	EffectiveAt string `json:"effective_at"`
}

type CloseAccountResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

type GetBalancesRequest struct {
	AccountID string `json:"account_id"`
}

type GetBalancesResponse struct {
	AccountID        string            `json:"account_id"`
	Denomination     string            `json:"denomination"`
	Balances         map[string]string `json:"balances"`
	TotalOutstanding string            `json:"total_outstanding"`
}
