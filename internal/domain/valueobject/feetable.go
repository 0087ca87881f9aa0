package valueobject

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentTypeFee is the charge applied to an outbound transfer tagged with a
// payment type. A zero threshold means the fee applies to any amount.
type PaymentTypeFee struct {
	FlatFee   decimal.Decimal
	Threshold decimal.Decimal
}

// PaymentTypeFeeTable maps a payment-type tag to its fee rule. It is parsed
// once from configuration; handlers never re-parse the raw JSON.
type PaymentTypeFeeTable map[string]PaymentTypeFee

// ParsePaymentTypeFeeTable parses the configured fee table. Two shapes are
// accepted: {"ATM_MEPS": "1"} for a bare flat fee, and
// {"ATM_MEPS": {"fee": "1", "threshold": "5000"}}.
func ParsePaymentTypeFeeTable(raw string) (PaymentTypeFeeTable, error) {
	if raw == "" {
		return PaymentTypeFeeTable{}, nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &outer); err != nil {
		return nil, fmt.Errorf("parse payment type fee table: %w", err)
	}

	table := make(PaymentTypeFeeTable, len(outer))
	for paymentType, rawRule := range outer {
		var flat string
		if err := json.Unmarshal(rawRule, &flat); err == nil {
			fee, err := decimal.NewFromString(flat)
			if err != nil {
				return nil, fmt.Errorf("payment type %q: invalid fee %q: %w", paymentType, flat, err)
			}
			table[paymentType] = PaymentTypeFee{FlatFee: fee}
			continue
		}

		var rule struct {
			Fee       string `json:"fee"`
			Threshold string `json:"threshold"`
		}
		if err := json.Unmarshal(rawRule, &rule); err != nil {
			return nil, fmt.Errorf("payment type %q: unrecognised fee rule: %w", paymentType, err)
		}
		fee, err := decimal.NewFromString(rule.Fee)
		if err != nil {
			return nil, fmt.Errorf("payment type %q: invalid fee %q: %w", paymentType, rule.Fee, err)
		}
		threshold := decimal.Zero
		if rule.Threshold != "" {
			threshold, err = decimal.NewFromString(rule.Threshold)
			if err != nil {
				return nil, fmt.Errorf("payment type %q: invalid threshold %q: %w", paymentType, rule.Threshold, err)
			}
		}
		table[paymentType] = PaymentTypeFee{FlatFee: fee, Threshold: threshold}
	}

	return table, nil
}

// FeeFor returns the fee owed for an outbound transfer of the given amount,
// or zero when the payment type is unknown or the amount is under the
// threshold.
func (t PaymentTypeFeeTable) FeeFor(paymentType string, amount decimal.Decimal) decimal.Decimal {
	rule, ok := t[paymentType]
	if !ok {
		return decimal.Zero
	}
	if rule.Threshold.IsPositive() && amount.LessThan(rule.Threshold) {
		return decimal.Zero
	}
	return rule.FlatFee
}
