package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/application/usecase"
	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

type tickFixture struct {
	journal   *mockJournal
	schedules *mockScheduleStore
	flags     *mockFlagStore
	publisher *mockPublisher
	uc        *usecase.RunScheduledTickUseCase
}

func newTickFixture(t *testing.T, balances map[valueobject.BucketAddress]decimal.Decimal) tickFixture {
	t.Helper()
	f := tickFixture{
		journal:   &mockJournal{},
		schedules: &mockScheduleStore{},
		flags:     &mockFlagStore{},
		publisher: &mockPublisher{},
	}
	repo := &mockAccountRepo{
		FindByIDFn: func(context.Context, string) (model.Account, error) {
			return activeAccount(t), nil
		},
	}
	f.uc = usecase.NewRunScheduledTickUseCase(
		repo, balancesWith(balances), &mockParameterStore{}, f.flags,
		f.journal, f.schedules, testEngine(), f.publisher, testLogger(),
	)
	return f
}

func tickInput(kind valueobject.EventKind, at time.Time) dto.RunScheduledTickInput {
	return dto.RunScheduledTickInput{
		AccountID:   "acc-1",
		Kind:        string(kind),
		EffectiveAt: at,
	}
}

func TestRunScheduledTick_RejectsNonSchedulableKind(t *testing.T) {
	f := newTickFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), tickInput(valueobject.EventPaymentReceived, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not schedulable")
}

func TestRunScheduledTick_AccrualCommitsAndMarksRun(t *testing.T) {
	f := newTickFixture(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal: decimal.NewFromInt(300000),
	})

	at := time.Date(2026, time.June, 3, 0, 0, 1, 0, time.UTC)
	out, err := f.uc.Execute(context.Background(), tickInput(valueobject.EventAccrueInterest, at))
	require.NoError(t, err)

	assert.Equal(t, 1, out.PostingCount)
	require.Len(t, f.journal.appended, 1)

	require.Len(t, f.schedules.applied, 1)
	assert.Equal(t, valueobject.EventAccrueInterest, f.schedules.applied[0].Kind)

	require.Len(t, f.schedules.runs, 1)
	assert.Equal(t, valueobject.EventAccrueInterest, f.schedules.runs[0])

	assert.Empty(t, f.flags.pendingSet, "only a due calculation touches the marker")
}

func TestRunScheduledTick_DueCalculationConsumesReamortisationMarker(t *testing.T) {
	f := newTickFixture(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:           decimal.NewFromInt(250000),
		valueobject.AddrEMI:                 decimal.NewFromFloat(1424.99),
		valueobject.AddrDueCalcEventCounter: decimal.NewFromInt(3),
	})
	f.flags.PendingReamortisationFn = func(context.Context, string) (bool, error) {
		return true, nil
	}

	at := time.Date(2026, time.June, 15, 0, 0, 2, 0, time.UTC)
	out, err := f.uc.Execute(context.Background(), tickInput(valueobject.EventDueCalculation, at))
	require.NoError(t, err)

	assert.Positive(t, out.PostingCount)
	require.Len(t, f.flags.pendingSet, 1, "the marker must be cleared after the cycle")
	assert.False(t, f.flags.pendingSet[0])

	require.Len(t, f.schedules.runs, 1)
	assert.Equal(t, valueobject.EventDueCalculation, f.schedules.runs[0])
}

func TestRunScheduledTick_DueCalculationWithoutMarkerLeavesIt(t *testing.T) {
	f := newTickFixture(t, map[valueobject.BucketAddress]decimal.Decimal{
		valueobject.AddrPrincipal:           decimal.NewFromInt(250000),
		valueobject.AddrEMI:                 decimal.NewFromFloat(1424.99),
		valueobject.AddrDueCalcEventCounter: decimal.NewFromInt(3),
	})

	at := time.Date(2026, time.June, 15, 0, 0, 2, 0, time.UTC)
	_, err := f.uc.Execute(context.Background(), tickInput(valueobject.EventDueCalculation, at))
	require.NoError(t, err)

	assert.Empty(t, f.flags.pendingSet)
}
