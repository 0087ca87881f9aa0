package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/event"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// ProcessPaymentUseCase runs one transfer through the allocator and commits
// the outcome. A rejection is a successful execution with no state change.
type ProcessPaymentUseCase struct {
	loader    stateLoader
	engine    *service.LifecycleEngine
	committer resultCommitter
	logger    *slog.Logger
}

func NewProcessPaymentUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	params port.ParameterStore,
	flags port.FlagStore,
	journal port.PostingJournal,
	schedules port.ScheduleStore,
	engine *service.LifecycleEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		loader:    stateLoader{accounts: accounts, balances: balances, params: params, flags: flags},
		engine:    engine,
		committer: resultCommitter{journal: journal, schedules: schedules, publisher: publisher, logger: logger},
		logger:    logger,
	}
}

func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, input dto.ProcessPaymentInput) (dto.ProcessPaymentOutput, error) {
	var out dto.ProcessPaymentOutput
	out.AccountID = input.AccountID

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return out, fmt.Errorf("parse amount: %w", err)
	}

	state, err := uc.loader.load(ctx, input.AccountID)
	if err != nil {
		return out, err
	}

	result, err := uc.engine.Execute(service.Invocation{
		Kind:        valueobject.EventPaymentReceived,
		EffectiveAt: input.EffectiveAt,
		Account:     state.Account,
		Config:      state.Config,
		Balances:    state.Balances,
		Flags:       state.Flags,
		Payment: &service.PaymentDetails{
			Amount:             amount,
			Denomination:       input.Denomination,
			Outbound:           input.Outbound,
			PaymentType:        input.PaymentType,
			InterestAdjustment: input.InterestAdjustment,
		},
	})
	if err != nil {
		return out, fmt.Errorf("process payment: %w", err)
	}

	if result.Rejection != nil {
		uc.logger.Info("payment rejected",
			"account_id", input.AccountID,
			"category", result.Rejection.Category,
			"reason", result.Rejection.Reason,
		)
		evt := event.NewPaymentRejected(input.AccountID, *result.Rejection, input.EffectiveAt)
		if err := uc.committer.publisher.Publish(ctx, evt); err != nil {
			uc.logger.Warn("publish payment rejected", "account_id", input.AccountID, "error", err)
		}
		out.RejectionCategory = string(result.Rejection.Category)
		out.RejectionReason = result.Rejection.Reason
		return out, nil
	}

	if err := uc.committer.commit(ctx, input.AccountID, result, input.EffectiveAt); err != nil {
		return out, err
	}

	batchID := ""
	if len(result.Postings) > 0 {
		batchID = result.Postings[0].BatchID()
	}

	if result.CloseAccount {
		closed, err := state.Account.Close(input.EffectiveAt)
		if err != nil {
			return out, fmt.Errorf("close account: %w", err)
		}
		if err := uc.loader.accounts.Update(ctx, closed); err != nil {
			return out, fmt.Errorf("update account: %w", err)
		}
		evt := event.NewAccountClosed(input.AccountID, input.EffectiveAt)
		if err := uc.committer.publisher.Publish(ctx, evt); err != nil {
			uc.logger.Warn("publish account closed", "account_id", input.AccountID, "error", err)
		}
	}

	evt := event.NewPaymentAllocated(
		input.AccountID, amount, input.Denomination, batchID, result.CloseAccount, input.EffectiveAt,
	)
	if err := uc.committer.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Warn("publish payment allocated", "account_id", input.AccountID, "error", err)
	}

	uc.logger.Info("payment processed",
		"account_id", input.AccountID,
		"amount", amount,
		"postings", len(result.Postings),
		"closed", result.CloseAccount,
	)

	out.Accepted = true
	out.Closed = result.CloseAccount
	out.PostingCount = len(result.Postings)
	return out, nil
}
