package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type stockRepository struct {
	db *sql.DB
}

func NewStockRepository(db *sql.DB) repository.StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) GetStock(ctx context.Context, productID int32) (*domain.StockLevel, error) {
	query := `SELECT product_id, total_quantity FROM stock_levels WHERE product_id = $1`
	logger.DatabaseCall("SELECT", "stock_levels", "productID", productID)

	s := &domain.StockLevel{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&s.ProductID, &s.TotalQuantity)
	if err != nil {
		return nil, notFound(err, "stock", productID)
	}
	return s, nil
}

func (r *stockRepository) SetStock(ctx context.Context, s *domain.StockLevel) error {
	query := `INSERT INTO stock_levels (product_id, total_quantity, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (product_id) DO UPDATE SET total_quantity = EXCLUDED.total_quantity, updated_on = EXCLUDED.updated_on`
	logger.DatabaseCall("UPSERT", "stock_levels", "productID", s.ProductID)

	res, err := r.db.ExecContext(ctx, query, s.ProductID, s.TotalQuantity, time.Now())
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", n, err, "productID", s.ProductID)
	return err
}
