package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// reportedAddresses is the customer-visible bucket set, in presentation
// order.
var reportedAddresses = []valueobject.BucketAddress{
	valueobject.AddrPrincipal,
	valueobject.AddrPrincipalDue,
	valueobject.AddrPrincipalOverdue,
	valueobject.AddrInterestDue,
	valueobject.AddrInterestOverdue,
	valueobject.AddrAccruedInterestReceivable,
	valueobject.AddrAccruedInterestPendingCap,
	valueobject.AddrAccruedOverdueInterestPendingCap,
	valueobject.AddrPenalties,
	valueobject.AddrEMI,
	valueobject.AddrEMIPrincipalExcess,
	valueobject.AddrOverpayment,
	valueobject.AddrOverpaymentSincePrevDueCalc,
	valueobject.AddrRemainingOverpaymentAllowance,
	valueobject.AddrCapitalisedInterestTracker,
	valueobject.AddrDueCalcEventCounter,
}

// GetBalancesUseCase reads the account's live bucket balances.
type GetBalancesUseCase struct {
	accounts port.AccountRepository
	balances port.BalanceStore
	logger   *slog.Logger
}

func NewGetBalancesUseCase(
	accounts port.AccountRepository,
	balances port.BalanceStore,
	logger *slog.Logger,
) *GetBalancesUseCase {
	return &GetBalancesUseCase{accounts: accounts, balances: balances, logger: logger}
}

func (uc *GetBalancesUseCase) Execute(ctx context.Context, input dto.GetBalancesInput) (dto.GetBalancesOutput, error) {
	var out dto.GetBalancesOutput
	out.AccountID = input.AccountID

	account, err := uc.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return out, fmt.Errorf("find account: %w", err)
	}
	snapshot, err := uc.balances.Snapshot(ctx, account.ID(), account.Denomination())
	if err != nil {
		return out, fmt.Errorf("load balance snapshot: %w", err)
	}

	out.Denomination = account.Denomination()
	out.Balances = make(map[string]string, len(reportedAddresses))
	for _, addr := range reportedAddresses {
		out.Balances[string(addr)] = snapshot.BalanceAt(addr).String()
	}
	out.TotalOutstanding = snapshot.TotalOutstandingDebt().String()
	return out, nil
}
