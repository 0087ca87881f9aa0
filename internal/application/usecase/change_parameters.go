package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// ChangeParametersUseCase adjusts the billing day or the variable rate
// adjustment on a live account. A billing-day change moves the
// due-calculation schedule; a rate change arms a re-amortization for the next
// cycle.
type ChangeParametersUseCase struct {
	loader    stateLoader
	schedules port.ScheduleStore
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewChangeParametersUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ChangeParametersUseCase {
	return &ChangeParametersUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		schedules: schedules,
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *ChangeParametersUseCase) Execute(ctx context.Context, input dto.ChangeParametersInput) (dto.ChangeParametersOutput, error) {
	var out dto.ChangeParametersOutput
	out.AccountID = input.AccountID

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	change := service.ParameterChange{BillingDay: input.BillingDay}
	if input.VariableRateAdjustment != nil {
		adj, err := decimal.NewFromString(*input.VariableRateAdjustment)
		if err != nil {
			return out, fmt.Errorf("parse variable rate adjustment: %w", err)
		}
		change.VariableRateAdjustment = &adj
	}

	lastDueCalc, err := uc.schedules.LastRunAt(ctx, input.AccountID, valueobject.EventDueCalculation)
	if err != nil {
		return out, fmt.Errorf("load last due calculation: %w", err)
	}

	result, err := uc.engine.Execute(service.Invocation{
		Kind:            valueobject.EventParameterChanged,
		EffectiveAt:     input.EffectiveAt,
		Account:         state.Account,
		Config:          state.Config,
		Balances:        state.Balances,
		Flags:           state.Flags,
		LastDueCalcAt:   lastDueCalc,
		ParameterChange: &change,
	})
	if err != nil {
		return out, fmt.Errorf("apply parameter change: %w", err)
	}

	if result.Rejection != nil {
		out.RejectionCategory = string(result.Rejection.Category)
		out.RejectionReason = result.Rejection.Reason
		return out, nil
	}

	account := state.Account
	if input.BillingDay != nil {
		account, err = account.WithBillingDay(*input.BillingDay, input.EffectiveAt)
		if err != nil {
			return out, fmt.Errorf("change billing day: %w", err)
		}
	}
	if change.VariableRateAdjustment != nil {
		account = account.WithVariableRateAdjustment(*change.VariableRateAdjustment, input.EffectiveAt)
		if err := uc.loader.flags.SetPendingReamortisation(ctx, input.AccountID, true); err != nil {
			return out, fmt.Errorf("arm re-amortization: %w", err)
		}
	}
	if err := uc.loader.accounts.Update(ctx, account); err != nil {
		return out, fmt.Errorf("update account: %w", err)
	}

	if err := uc.committer.commit(ctx, input.AccountID, result, input.EffectiveAt); err != nil {
		return out, err
	}

	uc.logger.Info("parameters changed",
		"account_id", input.AccountID,
		"billing_day_changed", input.BillingDay != nil,
		"rate_adjustment_changed", change.VariableRateAdjustment != nil,
	)

	out.Accepted = true
	return out, nil
}
