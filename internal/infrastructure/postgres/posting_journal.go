package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
	pkgpostgres "github.com/lumenbank/mortgage-engine/pkg/postgres"
)

// PostingJournal implements port.PostingJournal on an append-only pair of
// tables. One invocation's postings commit in a single transaction; applied
// rows are never updated.
type PostingJournal struct {
	pool *pgxpool.Pool
}

// NewPostingJournal creates a PostgreSQL-backed posting journal.
func NewPostingJournal(pool *pgxpool.Pool) *PostingJournal {
	return &PostingJournal{pool: pool}
}

// Append writes the postings and their entries atomically.
func (j *PostingJournal) Append(ctx context.Context, postings []valueobject.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	return pkgpostgres.WithTransaction(ctx, j.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, p := range postings {
			_, err := tx.Exec(ctx, `
				INSERT INTO postings (id, batch_id, denomination, event_name, description, override_restrictions, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, p.ID(), p.BatchID(), p.Denomination(), p.EventName(), p.Description(), p.OverrideRestrictions(), now)
			if err != nil {
				return fmt.Errorf("insert posting: %w", err)
			}

			for _, e := range p.Entries() {
				_, err := tx.Exec(ctx, `
					INSERT INTO posting_entries (posting_id, account_id, address, side, amount)
					VALUES ($1, $2, $3, $4, $5)
				`, p.ID(), e.Account, string(e.Address), string(e.Side), e.Amount)
				if err != nil {
					return fmt.Errorf("insert posting entry: %w", err)
				}
			}
		}
		return nil
	})
}

// ListByAccount returns the most recent postings touching the account,
// newest first.
func (j *PostingJournal) ListByAccount(ctx context.Context, accountID string, limit int) ([]valueobject.Posting, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.pool.Query(ctx, `
		SELECT p.id, p.batch_id, p.denomination, p.event_name, p.description, p.override_restrictions
		FROM postings p
		WHERE EXISTS (
			SELECT 1 FROM posting_entries e WHERE e.posting_id = p.id AND e.account_id = $1
		)
		ORDER BY p.created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	type head struct {
		batchID, denomination, eventName, description string
		override                                      bool
	}
	heads := make(map[uuid.UUID]head)
	var order []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		var h head
		if err := rows.Scan(&id, &h.batchID, &h.denomination, &h.eventName, &h.description, &h.override); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		heads[id] = h
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	entryRows, err := j.pool.Query(ctx, `
		SELECT posting_id, account_id, address, side, amount
		FROM posting_entries
		WHERE posting_id = ANY($1)
		ORDER BY id
	`, order)
	if err != nil {
		return nil, fmt.Errorf("query posting entries: %w", err)
	}
	defer entryRows.Close()

	entries := make(map[uuid.UUID][]valueobject.PostingEntry)
	for entryRows.Next() {
		var postingID uuid.UUID
		var account, address, side string
		var amount decimal.Decimal
		if err := entryRows.Scan(&postingID, &account, &address, &side, &amount); err != nil {
			return nil, fmt.Errorf("scan posting entry: %w", err)
		}
		entries[postingID] = append(entries[postingID], valueobject.PostingEntry{
			Account: account,
			Address: valueobject.BucketAddress(address),
			Side:    valueobject.EntrySide(side),
			Amount:  amount,
		})
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}

	out := make([]valueobject.Posting, 0, len(order))
	for _, id := range order {
		h := heads[id]
		out = append(out, valueobject.ReconstructPosting(
			id, h.batchID, h.denomination, entries[id], h.eventName, h.description, h.override,
		))
	}
	return out, nil
}
