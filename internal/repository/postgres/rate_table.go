package postgres

import (
	"context"
	"database/sql"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type rateTableRepository struct {
	db *sql.DB
}

func NewRateTableRepository(db *sql.DB) repository.RateTableRepository {
	return &rateTableRepository{db: db}
}

func (r *rateTableRepository) GetRateTable(ctx context.Context, productID int32) (*domain.RateTable, error) {
	query := `SELECT product_id, daily_rate, weekly_rate, monthly_rate, deposit, deposit_mode, min_days, max_days,
	                 preparation_days, insurance_fee_per_day, early_return_discount_rate, extension_fee_rate,
	                 replacement_fee, pricing_method, updated_on
	          FROM rate_tables WHERE product_id = $1`
	logger.DatabaseCall("SELECT", "rate_tables", "productID", productID)

	rt := &domain.RateTable{}
	var maxDays sql.NullInt32
	var depositMode, method string
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&rt.ProductID, &rt.DailyRate, &rt.WeeklyRate, &rt.MonthlyRate, &rt.Deposit, &depositMode,
		&rt.MinDays, &maxDays, &rt.PreparationDays, &rt.InsuranceFeePerDay, &rt.EarlyReturnDiscountRate,
		&rt.ExtensionFeeRate, &rt.ReplacementFee, &method, &rt.UpdatedOn,
	)
	if err != nil {
		return nil, notFound(err, "rate table", productID)
	}
	if maxDays.Valid {
		v := int(maxDays.Int32)
		rt.MaxDays = &v
	}
	rt.DepositMode = domain.DepositMode(depositMode)
	rt.PricingMethod = domain.PricingMethod(method)
	return rt, nil
}

func (r *rateTableRepository) ListProductIDs(ctx context.Context) ([]int32, error) {
	query := `SELECT product_id FROM rate_tables ORDER BY product_id`
	logger.DatabaseCall("SELECT", "rate_tables")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	logger.DatabaseResult("SELECT", int64(len(ids)), rows.Err())
	return ids, rows.Err()
}
