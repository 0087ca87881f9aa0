package valueobject

// Notification types emitted by the engine. One-way outputs; no
// acknowledgement is tracked.
const (
	NotificationActivated          = "MORTGAGE_ACCOUNT_ACTIVATED"
	NotificationClosure            = "MORTGAGE_CLOSURE"
	NotificationMarkedDelinquent   = "MORTGAGE_MARKED_DELINQUENT"
	NotificationRepaymentOverdue   = "MORTGAGE_REPAYMENT_OVERDUE"
	NotificationAllowanceFee       = "MORTGAGE_OVERPAYMENT_ALLOWANCE_FEE_CHARGED"
	NotificationReamortisation     = "MORTGAGE_REAMORTISATION_REQUESTED"
	NotificationProductConverted   = "MORTGAGE_PRODUCT_CONVERTED"
	NotificationRepaymentHolidayOn = "MORTGAGE_REPAYMENT_HOLIDAY_IMPACT"
)

// Notification is a type tag plus a key/value payload.
type Notification struct {
	Type    string
	Details map[string]string
}

// NewNotification builds a notification, copying the details map.
func NewNotification(notificationType string, details map[string]string) Notification {
	copied := make(map[string]string, len(details))
	for k, v := range details {
		copied[k] = v
	}
	return Notification{Type: notificationType, Details: copied}
}
