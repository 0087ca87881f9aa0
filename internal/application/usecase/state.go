package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenbank/mortgage-engine/internal/domain/event"
	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
)

// DefaultProductCode identifies the single product this engine serves.
const DefaultProductCode = "residential_mortgage"

// stateLoader assembles the full state snapshot an engine invocation needs.
type stateLoader struct {
	accounts port.AccountRepository
	balances port.BalanceStore
	params   port.ParameterStore
	flags    port.FlagStore
}

type invocationState struct {
	Account  model.Account
	Config   model.ProductConfig
	Balances model.BalanceSnapshot
	Flags    model.Flags
}

func (l stateLoader) load(ctx context.Context, accountID string) (invocationState, error) {
	var state invocationState

	account, err := l.accounts.FindByID(ctx, accountID)
	if err != nil {
		return state, fmt.Errorf("find account: %w", err)
	}
	cfg, err := l.params.ProductConfig(ctx, DefaultProductCode)
	if err != nil {
		return state, fmt.Errorf("load product config: %w", err)
	}
	snapshot, err := l.balances.Snapshot(ctx, account.ID(), account.Denomination())
	if err != nil {
		return state, fmt.Errorf("load balance snapshot: %w", err)
	}
	flags, err := l.flags.Flags(ctx, account.ID())
	if err != nil {
		return state, fmt.Errorf("load flags: %w", err)
	}

	state.Account = account
	state.Config = cfg
	state.Balances = snapshot
	state.Flags = flags
	return state, nil
}

// resultCommitter persists an engine result and streams its notifications.
// Postings go first so a publish failure never loses ledger state; event
// publishing is best effort and only logged.
type resultCommitter struct {
	journal   port.PostingJournal
	schedules port.ScheduleStore
	publisher port.EventPublisher
	logger    *slog.Logger
}

func (c resultCommitter) commit(ctx context.Context, accountID string, res service.Result, at time.Time) error {
	if len(res.Postings) > 0 {
		if err := c.journal.Append(ctx, res.Postings); err != nil {
			return fmt.Errorf("append postings: %w", err)
		}
	}
	if len(res.NewSchedules) > 0 {
		if err := c.schedules.Create(ctx, accountID, res.NewSchedules); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
	}
	if len(res.ScheduleUpdates) > 0 {
		if err := c.schedules.Apply(ctx, accountID, res.ScheduleUpdates); err != nil {
			return fmt.Errorf("apply schedule updates: %w", err)
		}
	}
	for _, n := range res.Notifications {
		if err := c.publisher.Publish(ctx, event.NewNotificationRaised(accountID, n, at)); err != nil {
			c.logger.Warn("publish notification", "account_id", accountID, "type", n.Type, "error", err)
		}
	}
	return nil
}
