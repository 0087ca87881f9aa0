package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// ConvertProductUseCase switches a live account onto new term and rate
// configuration. Balances, the posting history and the schedule carry over;
// the instalment is re-amortised against the live balances at conversion
// time and the allowance period restarts.
type ConvertProductUseCase struct {
	loader    stateLoader
	schedules port.ScheduleStore
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewConvertProductUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ConvertProductUseCase {
	return &ConvertProductUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		schedules: schedules,
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *ConvertProductUseCase) Execute(ctx context.Context, input dto.ConvertProductInput) (dto.ConvertProductOutput, error) {
	var out dto.ConvertProductOutput
	out.AccountID = input.AccountID

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	current := state.Account.Params()
	next, err := parseInstanceParams(
		current.Principal.String(), input.FixedAnnualRate, input.VariableRateAdjustment,
		input.TotalTermMonths, input.InterestOnlyTermMonths, input.FixedRateTermMonths,
		current.BillingDay, input.OverpaymentImpact,
	)
	if err != nil {
		return out, err
	}
	if next.OverpaymentImpact == "" {
		next.OverpaymentImpact = model.OverpaymentReducesEMI
	}

	converted, err := state.Account.Convert(next, input.EffectiveAt)
	if err != nil {
		return out, fmt.Errorf("convert account: %w", err)
	}

	lastDueCalc, err := uc.schedules.LastRunAt(ctx, input.AccountID, valueobject.EventDueCalculation)
	if err != nil {
		return out, fmt.Errorf("load last due calculation: %w", err)
	}

	result, err := uc.engine.Execute(service.Invocation{
		Kind:          valueobject.EventConverted,
		EffectiveAt:   input.EffectiveAt,
		Account:       converted,
		Config:        state.Config,
		Balances:      state.Balances,
		Flags:         state.Flags,
		LastDueCalcAt: lastDueCalc,
	})
	if err != nil {
		return out, fmt.Errorf("run conversion: %w", err)
	}

	if err := uc.loader.accounts.Update(ctx, converted); err != nil {
		return out, fmt.Errorf("update account: %w", err)
	}
	if err := uc.committer.commit(ctx, input.AccountID, result, input.EffectiveAt); err != nil {
		return out, err
	}

	uc.logger.Info("product converted",
		"account_id", input.AccountID,
		"total_term", next.TotalTermMonths,
		"fixed_rate_term", next.FixedRateTermMonths,
	)

	out.Status = string(converted.Status())
	return out, nil
}
