package port

import (
	"context"
	"errors"
	"time"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
	"github.com/lumenbank/mortgage-engine/pkg/events"
)

// ErrNotFound is returned by repositories when the requested row does not
// exist.
var ErrNotFound = errors.New("not found")

// AccountRepository persists the account aggregate.
type AccountRepository interface {
	Save(ctx context.Context, account model.Account) error
	FindByID(ctx context.Context, id string) (model.Account, error)
	Update(ctx context.Context, account model.Account) error
}

// BalanceStore materialises the balance snapshot an invocation runs against.
type BalanceStore interface {
	Snapshot(ctx context.Context, accountID, denomination string) (model.BalanceSnapshot, error)
}

// PostingJournal is the append-only double-entry journal. Applied postings
// are never amended; corrections are new postings.
type PostingJournal interface {
	Append(ctx context.Context, postings []valueobject.Posting) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]valueobject.Posting, error)
}

// DueScheduleEntry pairs a schedule row with its account for the tick runner.
type DueScheduleEntry struct {
	AccountID string
	Event     valueobject.ScheduledEvent
}

// ScheduleStore persists the recurring schedule rows per account.
type ScheduleStore interface {
	Create(ctx context.Context, accountID string, rows []valueobject.ScheduledEvent) error
	Apply(ctx context.Context, accountID string, updates []valueobject.ScheduleUpdate) error
	FindByAccount(ctx context.Context, accountID string) ([]valueobject.ScheduledEvent, error)
	// FindDue lists non-skipped rows whose next run is at or before asOf.
	FindDue(ctx context.Context, asOf time.Time, limit int) ([]DueScheduleEntry, error)
	// LastRunAt returns when the given kind last ran for the account, zero
	// time when it never did.
	LastRunAt(ctx context.Context, accountID string, kind valueobject.EventKind) (time.Time, error)
	MarkRun(ctx context.Context, accountID string, kind valueobject.EventKind, ranAt time.Time) error
}

// ParameterStore resolves product-level configuration effective at a point in
// time.
type ParameterStore interface {
	ProductConfig(ctx context.Context, productCode string) (model.ProductConfig, error)
}

// FlagStore answers the blocking-condition flags and the pending
// re-amortization marker.
type FlagStore interface {
	Flags(ctx context.Context, accountID string) (model.Flags, error)
	SetDelinquent(ctx context.Context, accountID string, delinquent bool) error
	PendingReamortisation(ctx context.Context, accountID string) (bool, error)
	SetPendingReamortisation(ctx context.Context, accountID string, pending bool) error
}

// EventPublisher pushes domain events to the outbound stream.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
