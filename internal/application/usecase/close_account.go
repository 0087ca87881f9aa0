package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/event"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// CloseAccountUseCase handles operational closure of a settled account. It is
// refused while any debt is outstanding; repayment is the only way to clear
// it.
type CloseAccountUseCase struct {
	loader    stateLoader
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewCloseAccountUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *CloseAccountUseCase {
	return &CloseAccountUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *CloseAccountUseCase) Execute(ctx context.Context, input dto.CloseAccountInput) (dto.CloseAccountOutput, error) {
	var out dto.CloseAccountOutput
	out.AccountID = input.AccountID

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	if outstanding := state.Balances.TotalOutstandingDebt(); outstanding.IsPositive() {
		return out, fmt.Errorf("account has outstanding debt %s", outstanding)
	}

	closed, err := state.Account.Close(input.EffectiveAt)
	if err != nil {
		return out, fmt.Errorf("close account: %w", err)
	}

	result, err := uc.engine.Execute(service.Invocation{
		Kind:        valueobject.EventDeactivated,
		EffectiveAt: input.EffectiveAt,
		Account:     closed,
		Config:      state.Config,
		Balances:    state.Balances,
		Flags:       state.Flags,
	})
	if err != nil {
		return out, fmt.Errorf("run deactivation: %w", err)
	}

	if err := uc.committer.commit(ctx, input.AccountID, result, input.EffectiveAt); err != nil {
		return out, err
	}
	if err := uc.loader.accounts.Update(ctx, closed); err != nil {
		return out, fmt.Errorf("update account: %w", err)
	}

	evt := event.NewAccountClosed(input.AccountID, input.EffectiveAt)
	if err := uc.committer.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Warn("publish account closed", "account_id", input.AccountID, "error", err)
	}

	uc.logger.Info("account closed", "account_id", input.AccountID)

	out.Status = string(closed.Status())
	return out, nil
}
