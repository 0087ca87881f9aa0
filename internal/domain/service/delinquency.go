package service

import (
	"time"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// DelinquencyMonitor decides when an account is marked delinquent. Marking is
// a notification only; flag state is owned by the hosting runtime and read
// back through Flags on later invocations.
type DelinquencyMonitor struct {
	schedule *ScheduleCoordinator
}

// NewDelinquencyMonitor creates the monitor.
func NewDelinquencyMonitor(schedule *ScheduleCoordinator) *DelinquencyMonitor {
	return &DelinquencyMonitor{schedule: schedule}
}

// DelinquencyInput is the state one delinquency decision operates on.
type DelinquencyInput struct {
	AccountID       string
	Balances        model.BalanceSnapshot
	Flags           model.Flags
	EffectiveAt     time.Time
	GracePeriodDays int
}

// OnOverdue reacts to a due calculation that just aged amounts into the
// overdue buckets. With a grace period the check is armed for the end of the
// period; without one the account is evaluated immediately.
func (m *DelinquencyMonitor) OnOverdue(in DelinquencyInput) ([]valueobject.Notification, []valueobject.ScheduleUpdate) {
	if in.GracePeriodDays > 0 {
		return nil, []valueobject.ScheduleUpdate{{
			Kind:      valueobject.EventDelinquencyCheck,
			NextRunAt: m.schedule.DelinquencyCheckAt(in.EffectiveAt, in.GracePeriodDays),
		}}
	}

	notifs := m.evaluate(in)
	return notifs, []valueobject.ScheduleUpdate{m.schedule.ParkDelinquencyCheck(in.EffectiveAt)}
}

// RunCheck handles the scheduled end-of-grace evaluation, then parks the
// schedule row again.
func (m *DelinquencyMonitor) RunCheck(in DelinquencyInput) ([]valueobject.Notification, []valueobject.ScheduleUpdate) {
	notifs := m.evaluate(in)
	return notifs, []valueobject.ScheduleUpdate{m.schedule.ParkDelinquencyCheck(in.EffectiveAt)}
}

// evaluate emits the marked-delinquent notification when late amounts remain
// outstanding and nothing blocks the marking. Accounts already marked are not
// re-notified.
func (m *DelinquencyMonitor) evaluate(in DelinquencyInput) []valueobject.Notification {
	if in.Flags.DelinquencyBlocked || in.Flags.AlreadyDelinquent {
		return nil
	}

	late := in.Balances.LateRepaymentTotal()
	if !late.IsPositive() {
		return nil
	}

	return []valueobject.Notification{
		valueobject.NewNotification(valueobject.NotificationMarkedDelinquent, map[string]string{
			"account_id":   in.AccountID,
			"late_amount":  late.String(),
			"evaluated_at": in.EffectiveAt.Format(time.RFC3339),
		}),
	}
}
