package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
)

// AccountRepo implements port.AccountRepository.
type AccountRepo struct {
	pool *pgxpool.Pool
}

// NewAccountRepo creates a PostgreSQL-backed account repository.
func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Save inserts a new account.
func (r *AccountRepo) Save(ctx context.Context, a model.Account) error {
	params := a.Params()
	query := `
		INSERT INTO mortgage_accounts (
			id, denomination, status,
			principal, total_term_months, interest_only_term_months,
			fixed_rate_term_months, fixed_annual_rate, variable_rate_adjustment,
			billing_day, overpayment_impact,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	tag, err := r.pool.Exec(ctx, query,
		a.ID(), a.Denomination(), string(a.Status()),
		params.Principal, params.TotalTermMonths, params.InterestOnlyTermMonths,
		params.FixedRateTermMonths, params.FixedAnnualRate, params.VariableRateAdjustment,
		params.BillingDay, string(params.OverpaymentImpact),
		a.CreatedAt(), a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("failed to save account")
	}
	return nil
}

// Update persists a changed aggregate.
func (r *AccountRepo) Update(ctx context.Context, a model.Account) error {
	params := a.Params()
	query := `
		UPDATE mortgage_accounts SET
			status                    = $2,
			principal                 = $3,
			total_term_months         = $4,
			interest_only_term_months = $5,
			fixed_rate_term_months    = $6,
			fixed_annual_rate         = $7,
			variable_rate_adjustment  = $8,
			billing_day               = $9,
			overpayment_impact        = $10,
			updated_at                = $11
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		a.ID(), string(a.Status()),
		params.Principal, params.TotalTermMonths, params.InterestOnlyTermMonths,
		params.FixedRateTermMonths, params.FixedAnnualRate, params.VariableRateAdjustment,
		params.BillingDay, string(params.OverpaymentImpact),
		a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// FindByID retrieves an account by ID.
func (r *AccountRepo) FindByID(ctx context.Context, id string) (model.Account, error) {
	query := `
		SELECT id, denomination, status,
		       principal, total_term_months, interest_only_term_months,
		       fixed_rate_term_months, fixed_annual_rate, variable_rate_adjustment,
		       billing_day, overpayment_impact,
		       created_at, updated_at
		FROM mortgage_accounts
		WHERE id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func scanAccount(s scannable) (model.Account, error) {
	var (
		id, denomination, status, impact           string
		principal, fixedRate, adjustment           decimal.Decimal
		totalTerm, interestOnlyTerm, fixedRateTerm int
		billingDay                                 int
		createdAt, updatedAt                       time.Time
	)

	err := s.Scan(
		&id, &denomination, &status,
		&principal, &totalTerm, &interestOnlyTerm,
		&fixedRateTerm, &fixedRate, &adjustment,
		&billingDay, &impact,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, port.ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scan account: %w", err)
	}

	return model.ReconstructAccount(
		id, denomination, model.AccountStatus(status),
		model.InstanceParams{
			Principal:              principal,
			TotalTermMonths:        totalTerm,
			InterestOnlyTermMonths: interestOnlyTerm,
			FixedRateTermMonths:    fixedRateTerm,
			FixedAnnualRate:        fixedRate,
			VariableRateAdjustment: adjustment,
			BillingDay:             billingDay,
			OverpaymentImpact:      model.OverpaymentImpact(impact),
		},
		createdAt, updatedAt,
	), nil
}
