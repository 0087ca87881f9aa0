package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// BalanceStore implements port.BalanceStore by aggregating the posting
// journal: a bucket's balance is its debits minus its credits. Balances are
// derived state; the journal stays the single source of truth.
type BalanceStore struct {
	pool *pgxpool.Pool
}

// NewBalanceStore creates a journal-backed balance store.
func NewBalanceStore(pool *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Snapshot materialises the account's bucket balances.
func (s *BalanceStore) Snapshot(ctx context.Context, accountID, denomination string) (model.BalanceSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.address,
		       COALESCE(SUM(CASE WHEN e.side = 'DEBIT' THEN e.amount ELSE -e.amount END), 0)
		FROM posting_entries e
		JOIN postings p ON p.id = e.posting_id
		WHERE e.account_id = $1 AND p.denomination = $2
		GROUP BY e.address
	`, accountID, denomination)
	if err != nil {
		return model.BalanceSnapshot{}, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[valueobject.BucketAddress]decimal.Decimal)
	for rows.Next() {
		var address string
		var amount decimal.Decimal
		if err := rows.Scan(&address, &amount); err != nil {
			return model.BalanceSnapshot{}, fmt.Errorf("scan balance: %w", err)
		}
		balances[valueobject.BucketAddress(address)] = amount
	}
	if err := rows.Err(); err != nil {
		return model.BalanceSnapshot{}, err
	}

	return model.NewBalanceSnapshot(accountID, denomination, balances), nil
}
