package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// RunScheduledTickUseCase fires one scheduled event kind for one account:
// daily accrual, due calculation, the annual allowance check or the
// delinquency check.
type RunScheduledTickUseCase struct {
	loader    stateLoader
	schedules port.ScheduleStore
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewRunScheduledTickUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RunScheduledTickUseCase {
	return &RunScheduledTickUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		schedules: schedules,
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *RunScheduledTickUseCase) Execute(ctx context.Context, input dto.RunScheduledTickInput) (dto.RunScheduledTickOutput, error) {
	var out dto.RunScheduledTickOutput
	out.AccountID = input.AccountID
	out.Kind = input.Kind

	kind := valueobject.EventKind(input.Kind)
	if !isScheduledKind(kind) {
		return out, fmt.Errorf("event kind %q is not schedulable", input.Kind)
	}

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	invocation := service.Invocation{
		Kind:        kind,
		EffectiveAt: input.EffectiveAt,
		Account:     state.Account,
		Config:      state.Config,
		Balances:    state.Balances,
		Flags:       state.Flags,
	}

	// A due calculation consumes the pending re-amortization marker set by
	// parameter changes and conversions since the previous cycle.
	pendingReamortisation := false
	if kind == valueobject.EventDueCalculation {
		pendingReamortisation, err = uc.loader.flags.PendingReamortisation(ctx, input.AccountID)
		if err != nil {
			return out, fmt.Errorf("load re-amortization marker: %w", err)
		}
		invocation.ReamortisationRequested = pendingReamortisation
	}

	result, err := uc.engine.Execute(invocation)
	if err != nil {
		return out, fmt.Errorf("execute %s: %w", kind, err)
	}

	if err := uc.committer.commit(ctx, input.AccountID, result, input.EffectiveAt); err != nil {
		return out, err
	}
	if err := uc.schedules.MarkRun(ctx, input.AccountID, kind, input.EffectiveAt); err != nil {
		return out, fmt.Errorf("mark schedule run: %w", err)
	}
	if pendingReamortisation {
		if err := uc.loader.flags.SetPendingReamortisation(ctx, input.AccountID, false); err != nil {
			return out, fmt.Errorf("clear re-amortization marker: %w", err)
		}
	}

	uc.logger.Info("scheduled tick executed",
		"account_id", input.AccountID,
		"kind", kind,
		"postings", len(result.Postings),
		"notifications", len(result.Notifications),
	)

	out.PostingCount = len(result.Postings)
	out.Notifications = len(result.Notifications)
	return out, nil
}

func isScheduledKind(kind valueobject.EventKind) bool {
	for _, k := range valueobject.ScheduledKinds {
		if k == kind {
			return true
		}
	}
	return false
}
