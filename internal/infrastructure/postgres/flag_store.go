package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
)

// FlagStore implements port.FlagStore. A missing row means no flags are set;
// rows appear lazily on the first write.
type FlagStore struct {
	pool *pgxpool.Pool
}

// NewFlagStore creates a PostgreSQL-backed flag store.
func NewFlagStore(pool *pgxpool.Pool) *FlagStore {
	return &FlagStore{pool: pool}
}

// Flags reads the account's blocking flags.
func (s *FlagStore) Flags(ctx context.Context, accountID string) (model.Flags, error) {
	var flags model.Flags
	err := s.pool.QueryRow(ctx, `
		SELECT due_calculation_blocked, penalty_blocked, delinquency_blocked, delinquent
		FROM account_flags
		WHERE account_id = $1
	`, accountID).Scan(
		&flags.DueCalculationBlocked, &flags.PenaltyBlocked,
		&flags.DelinquencyBlocked, &flags.AlreadyDelinquent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Flags{}, nil
	}
	if err != nil {
		return model.Flags{}, fmt.Errorf("query flags: %w", err)
	}
	return flags, nil
}

// SetDelinquent marks or unmarks the account delinquent.
func (s *FlagStore) SetDelinquent(ctx context.Context, accountID string, delinquent bool) error {
	return s.upsert(ctx, accountID, "delinquent", delinquent)
}

// PendingReamortisation reads the pending re-amortization marker.
func (s *FlagStore) PendingReamortisation(ctx context.Context, accountID string) (bool, error) {
	var pending bool
	err := s.pool.QueryRow(ctx, `
		SELECT pending_reamortisation FROM account_flags WHERE account_id = $1
	`, accountID).Scan(&pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query re-amortization marker: %w", err)
	}
	return pending, nil
}

// SetPendingReamortisation arms or clears the re-amortization marker.
func (s *FlagStore) SetPendingReamortisation(ctx context.Context, accountID string, pending bool) error {
	return s.upsert(ctx, accountID, "pending_reamortisation", pending)
}

func (s *FlagStore) upsert(ctx context.Context, accountID, column string, value bool) error {
	// column comes from a fixed call-site set, never from input.
	query := fmt.Sprintf(`
		INSERT INTO account_flags (account_id, %s, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET %s = $2, updated_at = $3
	`, column, column)

	if _, err := s.pool.Exec(ctx, query, accountID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set flag %s: %w", column, err)
	}
	return nil
}
