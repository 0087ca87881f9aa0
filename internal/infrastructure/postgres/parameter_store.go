package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/mortgage-engine/internal/domain/model"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
)

// Product parameter names as stored in the parameters table.
const (
	paramDenomination        = "denomination"
	paramDaysInYear          = "days_in_year"
	paramAccrualPrecision    = "accrual_precision"
	paramFulfilmentPrecision = "fulfilment_precision"
	paramVariableBaseRate    = "variable_base_rate"
	paramPenaltyRate         = "penalty_rate"
	paramPenaltyIncludesBase = "penalty_includes_base"
	paramPenaltyCompounds    = "penalty_compounds_overdue_interest"
	paramGracePeriodDays     = "grace_period_days"
	paramLateRepaymentFee    = "late_repayment_fee"
	paramEarlyRepaymentFee   = "early_repayment_fee"
	paramAllowancePct        = "overpayment_allowance_pct"
	paramAllowanceFeePct     = "overpayment_allowance_fee_pct"
	paramPaymentTypeFees     = "payment_type_fees"
)

// ParameterStore implements port.ParameterStore from the product parameters
// table. Operators change product behaviour by updating rows, not by
// redeploying.
type ParameterStore struct {
	pool *pgxpool.Pool
}

// NewParameterStore creates a PostgreSQL-backed parameter store.
func NewParameterStore(pool *pgxpool.Pool) *ParameterStore {
	return &ParameterStore{pool: pool}
}

// ProductConfig resolves the product's full configuration.
func (s *ParameterStore) ProductConfig(ctx context.Context, productCode string) (model.ProductConfig, error) {
	var cfg model.ProductConfig

	rows, err := s.pool.Query(ctx, `
		SELECT name, value FROM product_parameters WHERE product_code = $1
	`, productCode)
	if err != nil {
		return cfg, fmt.Errorf("query product parameters: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return cfg, fmt.Errorf("scan product parameter: %w", err)
		}
		raw[name] = value
	}
	if err := rows.Err(); err != nil {
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, fmt.Errorf("product %q has no parameters", productCode)
	}

	return buildProductConfig(raw)
}

func buildProductConfig(raw map[string]string) (model.ProductConfig, error) {
	var cfg model.ProductConfig
	var err error

	cfg.Denomination = raw[paramDenomination]
	if cfg.Denomination == "" {
		return cfg, fmt.Errorf("parameter %s is required", paramDenomination)
	}

	if cfg.DaysInYear, err = paramDecimal(raw, paramDaysInYear, "365"); err != nil {
		return cfg, err
	}
	if cfg.VariableBaseRate, err = paramDecimal(raw, paramVariableBaseRate, "0"); err != nil {
		return cfg, err
	}
	if cfg.PenaltyRate, err = paramDecimal(raw, paramPenaltyRate, "0"); err != nil {
		return cfg, err
	}
	if cfg.LateRepaymentFee, err = paramDecimal(raw, paramLateRepaymentFee, "0"); err != nil {
		return cfg, err
	}
	if cfg.EarlyRepaymentFee, err = paramDecimal(raw, paramEarlyRepaymentFee, "0"); err != nil {
		return cfg, err
	}
	if cfg.OverpaymentAllowancePct, err = paramDecimal(raw, paramAllowancePct, "0"); err != nil {
		return cfg, err
	}
	if cfg.OverpaymentAllowanceFeePct, err = paramDecimal(raw, paramAllowanceFeePct, "0"); err != nil {
		return cfg, err
	}

	accrualPrecision, err := paramInt(raw, paramAccrualPrecision, 5)
	if err != nil {
		return cfg, err
	}
	cfg.AccrualPrecision = int32(accrualPrecision)

	fulfilmentPrecision, err := paramInt(raw, paramFulfilmentPrecision, 2)
	if err != nil {
		return cfg, err
	}
	cfg.FulfilmentPrecision = int32(fulfilmentPrecision)

	if cfg.GracePeriodDays, err = paramInt(raw, paramGracePeriodDays, 0); err != nil {
		return cfg, err
	}

	cfg.PenaltyIncludesBase = raw[paramPenaltyIncludesBase] == "true"
	cfg.PenaltyCompoundsOverdueInterest = raw[paramPenaltyCompounds] == "true"

	if cfg.PaymentTypeFees, err = valueobject.ParsePaymentTypeFeeTable(raw[paramPaymentTypeFees]); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func paramDecimal(raw map[string]string, name, fallback string) (decimal.Decimal, error) {
	value, ok := raw[name]
	if !ok || value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parameter %s: invalid decimal %q: %w", name, value, err)
	}
	return d, nil
}

func paramInt(raw map[string]string, name string, fallback int) (int, error) {
	value, ok := raw[name]
	if !ok || value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: invalid integer %q: %w", name, value, err)
	}
	return i, nil
}
