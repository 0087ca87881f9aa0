package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
)

// OpenAccountUseCase creates a mortgage account in PENDING status. No money
// moves until activation.
type OpenAccountUseCase struct {
	accounts port.AccountRepository
	logger   *slog.Logger
}

func NewOpenAccountUseCase(accounts port.AccountRepository, logger *slog.Logger) *OpenAccountUseCase {
	return &OpenAccountUseCase{accounts: accounts, logger: logger}
}

func (uc *OpenAccountUseCase) Execute(ctx context.Context, input dto.OpenAccountInput) (dto.OpenAccountOutput, error) {
	var out dto.OpenAccountOutput

	params, err := parseInstanceParams(
		input.Principal, input.FixedAnnualRate, input.VariableRateAdjustment,
		input.TotalTermMonths, input.InterestOnlyTermMonths, input.FixedRateTermMonths,
		input.BillingDay, input.OverpaymentImpact,
	)
	if err != nil {
		return out, err
	}

	account, err := model.NewAccount(input.Denomination, params, time.Now().UTC())
	if err != nil {
		return out, fmt.Errorf("create account: %w", err)
	}
	if err := uc.accounts.Save(ctx, account); err != nil {
		return out, fmt.Errorf("save account: %w", err)
	}

	uc.logger.Info("account opened",
		"account_id", account.ID(),
		"principal", params.Principal,
		"term_months", params.TotalTermMonths,
	)

	out.AccountID = account.ID()
	out.Status = string(account.Status())
	return out, nil
}

func parseInstanceParams(
	principal, fixedRate, adjustment string,
	totalTerm, interestOnlyTerm, fixedRateTerm, billingDay int,
	impact string,
) (model.InstanceParams, error) {
	var params model.InstanceParams

	p, err := decimal.NewFromString(principal)
	if err != nil {
		return params, fmt.Errorf("parse principal: %w", err)
	}
	rate, err := decimal.NewFromString(fixedRate)
	if err != nil {
		return params, fmt.Errorf("parse fixed annual rate: %w", err)
	}
	adj := decimal.Zero
	if adjustment != "" {
		adj, err = decimal.NewFromString(adjustment)
		if err != nil {
			return params, fmt.Errorf("parse variable rate adjustment: %w", err)
		}
	}

	params = model.InstanceParams{
		Principal:              p,
		TotalTermMonths:        totalTerm,
		InterestOnlyTermMonths: interestOnlyTerm,
		FixedRateTermMonths:    fixedRateTerm,
		FixedAnnualRate:        rate,
		VariableRateAdjustment: adj,
		BillingDay:             billingDay,
		OverpaymentImpact:      model.OverpaymentImpact(impact),
	}
	return params, nil
}
