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

// ActivateAccountUseCase transitions a pending account to ACTIVE, disburses
// the principal and creates the recurring schedule.
type ActivateAccountUseCase struct {
	loader    stateLoader
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewActivateAccountUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ActivateAccountUseCase {
	return &ActivateAccountUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *ActivateAccountUseCase) Execute(ctx context.Context, input dto.ActivateAccountInput) (dto.ActivateAccountOutput, error) {
	var out dto.ActivateAccountOutput

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	activated, err := state.Account.Activate(input.EffectiveAt)
	if err != nil {
		return out, fmt.Errorf("activate account: %w", err)
	}

	result, err := uc.engine.Execute(service.Invocation{
		Kind:        valueobject.EventActivated,
		EffectiveAt: input.EffectiveAt,
		Account:     activated,
		Config:      state.Config,
		Balances:    state.Balances,
		Flags:       state.Flags,
	})
	if err != nil {
		return out, fmt.Errorf("run activation: %w", err)
	}

	if err := uc.committer.commit(ctx, activated.ID(), result, input.EffectiveAt); err != nil {
		return out, err
	}
	if err := uc.loader.accounts.Update(ctx, activated); err != nil {
		return out, fmt.Errorf("update account: %w", err)
	}

	params := activated.Params()
	evt := event.NewAccountActivated(activated.ID(), params.Principal, params.TotalTermMonths, input.EffectiveAt)
	if err := uc.committer.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Warn("publish account activated", "account_id", activated.ID(), "error", err)
	}

	uc.logger.Info("account activated", "account_id", activated.ID(), "principal", params.Principal)

	out.AccountID = activated.ID()
	out.Status = string(activated.Status())
	for _, row := range result.NewSchedules {
		if row.Kind == valueobject.EventDueCalculation {
			out.FirstDueCalc = row.NextRunAt
		}
	}
	return out, nil
}
