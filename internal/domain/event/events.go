package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
	"github.com/lumenbank/mortgage-engine/pkg/events"
)

const aggregateType = "MortgageAccount"

// AccountActivated is published when a pending account goes live and its
// principal is disbursed.
type AccountActivated struct {
	events.BaseEvent
	Principal   decimal.Decimal `json:"principal"`
	TermMonths  int             `json:"term_months"`
	ActivatedAt time.Time       `json:"activated_at"`
}

func NewAccountActivated(accountID string, principal decimal.Decimal, termMonths int, at time.Time) AccountActivated {
	return AccountActivated{
		BaseEvent:   events.NewBaseEvent("mortgage.account.activated", accountID, aggregateType, at),
		Principal:   principal,
		TermMonths:  termMonths,
		ActivatedAt: at,
	}
}

// PaymentAllocated is published after a repayment was applied to the account.
type PaymentAllocated struct {
	events.BaseEvent
	Amount       decimal.Decimal `json:"amount"`
	Denomination string          `json:"denomination"`
	BatchID      string          `json:"batch_id"`
	Settled      bool            `json:"settled"`
}

func NewPaymentAllocated(accountID string, amount decimal.Decimal, denomination, batchID string, settled bool, at time.Time) PaymentAllocated {
	return PaymentAllocated{
		BaseEvent:    events.NewBaseEvent("mortgage.payment.allocated", accountID, aggregateType, at),
		Amount:       amount,
		Denomination: denomination,
		BatchID:      batchID,
		Settled:      settled,
	}
}

// PaymentRejected is published when an inbound request was refused without a
// state change.
type PaymentRejected struct {
	events.BaseEvent
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

func NewPaymentRejected(accountID string, rejection valueobject.Rejection, at time.Time) PaymentRejected {
	return PaymentRejected{
		BaseEvent: events.NewBaseEvent("mortgage.payment.rejected", accountID, aggregateType, at),
		Category:  string(rejection.Category),
		Reason:    rejection.Reason,
	}
}

// AccountClosed is published when a full settlement closes the account.
type AccountClosed struct {
	events.BaseEvent
	ClosedAt time.Time `json:"closed_at"`
}

func NewAccountClosed(accountID string, at time.Time) AccountClosed {
	return AccountClosed{
		BaseEvent: events.NewBaseEvent("mortgage.account.closed", accountID, aggregateType, at),
		ClosedAt:  at,
	}
}

// NotificationRaised wraps an engine notification for the outbound stream.
// The notification types are the product's own vocabulary; the event envelope
// stays uniform.
type NotificationRaised struct {
	events.BaseEvent
	NotificationType string            `json:"notification_type"`
	Details          map[string]string `json:"details"`
}

func NewNotificationRaised(accountID string, n valueobject.Notification, at time.Time) NotificationRaised {
	return NotificationRaised{
		BaseEvent:        events.NewBaseEvent("mortgage.notification.raised", accountID, aggregateType, at),
		NotificationType: n.Type,
		Details:          n.Details,
	}
}
