package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
	"github.com/lumenbank/mortgage-engine/pkg/events"
)

type mockAccountRepo struct {
	SaveFn     func(ctx context.Context, account model.Account) error
	FindByIDFn func(ctx context.Context, id string) (model.Account, error)
	UpdateFn   func(ctx context.Context, account model.Account) error

	saved   []model.Account
	updated []model.Account
}

func (m *mockAccountRepo) Save(ctx context.Context, account model.Account) error {
	m.saved = append(m.saved, account)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (model.Account, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return model.Account{}, port.ErrNotFound
}

func (m *mockAccountRepo) Update(ctx context.Context, account model.Account) error {
	m.updated = append(m.updated, account)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, account)
	}
	return nil
}

type mockBalanceStore struct {
	SnapshotFn func(ctx context.Context, accountID, denomination string) (model.BalanceSnapshot, error)
}

func (m *mockBalanceStore) Snapshot(ctx context.Context, accountID, denomination string) (model.BalanceSnapshot, error) {
	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx, accountID, denomination)
	}
	return model.NewBalanceSnapshot(accountID, denomination, nil), nil
}

type mockJournal struct {
	AppendFn func(ctx context.Context, postings []valueobject.Posting) error

	appended []valueobject.Posting
}

func (m *mockJournal) Append(ctx context.Context, postings []valueobject.Posting) error {
	m.appended = append(m.appended, postings...)
	if m.AppendFn != nil {
		return m.AppendFn(ctx, postings)
	}
	return nil
}

func (m *mockJournal) ListByAccount(context.Context, string, int) ([]valueobject.Posting, error) {
	return nil, nil
}

type mockScheduleStore struct {
	LastRunAtFn func(ctx context.Context, accountID string, kind valueobject.EventKind) (time.Time, error)

	created []valueobject.ScheduledEvent
	applied []valueobject.ScheduleUpdate
	runs    []valueobject.EventKind
}

func (m *mockScheduleStore) Create(_ context.Context, _ string, rows []valueobject.ScheduledEvent) error {
	m.created = append(m.created, rows...)
	return nil
}

func (m *mockScheduleStore) Apply(_ context.Context, _ string, updates []valueobject.ScheduleUpdate) error {
	m.applied = append(m.applied, updates...)
	return nil
}

func (m *mockScheduleStore) FindByAccount(context.Context, string) ([]valueobject.ScheduledEvent, error) {
	return nil, nil
}

func (m *mockScheduleStore) FindDue(context.Context, time.Time, int) ([]port.DueScheduleEntry, error) {
	return nil, nil
}

func (m *mockScheduleStore) LastRunAt(ctx context.Context, accountID string, kind valueobject.EventKind) (time.Time, error) {
	if m.LastRunAtFn != nil {
		return m.LastRunAtFn(ctx, accountID, kind)
	}
	return time.Time{}, nil
}

func (m *mockScheduleStore) MarkRun(_ context.Context, _ string, kind valueobject.EventKind, _ time.Time) error {
	m.runs = append(m.runs, kind)
	return nil
}

type mockParameterStore struct {
	ProductConfigFn func(ctx context.Context, productCode string) (model.ProductConfig, error)
}

func (m *mockParameterStore) ProductConfig(ctx context.Context, productCode string) (model.ProductConfig, error) {
	if m.ProductConfigFn != nil {
		return m.ProductConfigFn(ctx, productCode)
	}
	return testProductConfig(), nil
}

type mockFlagStore struct {
	FlagsFn                 func(ctx context.Context, accountID string) (model.Flags, error)
	PendingReamortisationFn func(ctx context.Context, accountID string) (bool, error)

	pendingSet []bool
}

func (m *mockFlagStore) Flags(ctx context.Context, accountID string) (model.Flags, error) {
	if m.FlagsFn != nil {
		return m.FlagsFn(ctx, accountID)
	}
	return model.Flags{}, nil
}

func (m *mockFlagStore) SetDelinquent(context.Context, string, bool) error { return nil }

func (m *mockFlagStore) PendingReamortisation(ctx context.Context, accountID string) (bool, error) {
	if m.PendingReamortisationFn != nil {
		return m.PendingReamortisationFn(ctx, accountID)
	}
	return false, nil
}

func (m *mockFlagStore) SetPendingReamortisation(_ context.Context, _ string, pending bool) error {
	m.pendingSet = append(m.pendingSet, pending)
	return nil
}

type mockPublisher struct {
	PublishFn func(ctx context.Context, event events.DomainEvent) error

	published []events.DomainEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	m.published = append(m.published, event)
	if m.PublishFn != nil {
		return m.PublishFn(ctx, event)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProductConfig() model.ProductConfig {
	fees, _ := valueobject.ParsePaymentTypeFeeTable(`{"ATM_MEPS": "1"}`)
	return model.ProductConfig{
		Denomination:               "GBP",
		DaysInYear:                 decimal.NewFromInt(365),
		AccrualPrecision:           5,
		FulfilmentPrecision:        2,
		VariableBaseRate:           decimal.NewFromFloat(0.0399),
		PenaltyRate:                decimal.NewFromFloat(0.24),
		GracePeriodDays:            5,
		LateRepaymentFee:           decimal.NewFromInt(25),
		EarlyRepaymentFee:          decimal.Zero,
		OverpaymentAllowancePct:    decimal.NewFromFloat(0.1),
		OverpaymentAllowanceFeePct: decimal.NewFromFloat(0.05),
		PaymentTypeFees:            fees,
	}
}

func testEngine() *service.LifecycleEngine {
	calc := service.NewAmortizationCalculator()
	schedule := service.NewScheduleCoordinator()
	return service.NewLifecycleEngine(
		service.NewInterestAccrualEngine(),
		service.NewBillingCycleStateMachine(calc),
		service.NewRepaymentAllocator(),
		service.NewDelinquencyMonitor(schedule),
		schedule,
	)
}

func balancesWith(balances map[valueobject.BucketAddress]decimal.Decimal) *mockBalanceStore {
	return &mockBalanceStore{
		SnapshotFn: func(_ context.Context, accountID, denomination string) (model.BalanceSnapshot, error) {
			return model.NewBalanceSnapshot(accountID, denomination, balances), nil
		},
	}
}

func eventTypes(published []events.DomainEvent) []string {
	types := make([]string, 0, len(published))
	for _, evt := range published {
		types = append(types, evt.EventType())
	}
	return types
}

func activeAccount(t *testing.T) model.Account {
	t.Helper()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	account := model.ReconstructAccount(
		"acc-1", "GBP", model.AccountStatusActive,
		model.InstanceParams{
			Principal:              decimal.NewFromInt(300000),
			TotalTermMonths:        300,
			FixedRateTermMonths:    24,
			FixedAnnualRate:        decimal.NewFromFloat(0.0349),
			VariableRateAdjustment: decimal.Zero,
			BillingDay:             15,
			OverpaymentImpact:      model.OverpaymentReducesEMI,
		},
		now, now,
	)
	require.Equal(t, model.AccountStatusActive, account.Status())
	return account
}
