package valueobject

import "time"

// EventKind tags the inbound invocation the engine is asked to handle.
// Scheduled kinds recur on the account's schedule; the remaining kinds are
// raised by the hosting runtime on external activity.
type EventKind string

const (
	EventAccrueInterest   EventKind = "ACCRUE_INTEREST"
	EventDueCalculation   EventKind = "DUE_AMOUNT_CALCULATION"
	EventAllowanceCheck   EventKind = "OVERPAYMENT_ALLOWANCE_CHECK"
	EventDelinquencyCheck EventKind = "CHECK_DELINQUENCY"

	EventPaymentReceived  EventKind = "PAYMENT_RECEIVED"
	EventParameterChanged EventKind = "PARAMETER_CHANGED"
	EventActivated        EventKind = "ACCOUNT_ACTIVATED"
	EventDeactivated      EventKind = "ACCOUNT_DEACTIVATED"
	EventConverted        EventKind = "PRODUCT_CONVERTED"
)

// ScheduledKinds lists the event kinds that carry a recurring schedule.
var ScheduledKinds = []EventKind{
	EventAccrueInterest,
	EventDueCalculation,
	EventAllowanceCheck,
	EventDelinquencyCheck,
}

// RecurrenceRule describes when a scheduled event recurs. A Day of 0 means
// daily. LastValidDay selects end-of-month clamping for billing days that do
// not exist in a given month.
type RecurrenceRule struct {
	Day          int
	Hour         int
	Minute       int
	Second       int
	LastValidDay bool
}

// ScheduledEvent is the persisted schedule row for one event kind on one
// account. Only the schedule coordinator mutates it; it is created on
// activation and never deleted while the account is open.
type ScheduledEvent struct {
	Kind       EventKind
	NextRunAt  time.Time
	Skip       bool
	Recurrence RecurrenceRule
}

// ScheduleUpdate is the engine's instruction to move or skip a scheduled
// event.
type ScheduleUpdate struct {
	Kind      EventKind
	NextRunAt time.Time
	Skip      bool
}
