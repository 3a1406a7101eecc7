package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository/postgres"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestStockRepository_GetStock(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewStockRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT product_id, total_quantity FROM stock_levels WHERE product_id = \\$1").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "total_quantity"}).AddRow(4, 7))

		s, err := repo.GetStock(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 7, s.TotalQuantity)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stock_levels").
			WithArgs(int32(5)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetStock(ctx, 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_SetStock(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewStockRepository(db)

	mock.ExpectExec("INSERT INTO stock_levels").
		WithArgs(int32(4), 9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetStock(context.Background(), &domain.StockLevel{ProductID: 4, TotalQuantity: 9})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldRepository_OverlappingHolds(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewHoldRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	created := start.Add(-48 * time.Hour)
	statuses := pq.Array([]string{"CART", "PENDING", "APPROVED", "ACTIVE", "EXTENDED"})

	rows := sqlmock.NewRows([]string{"id", "product_id", "start_at", "end_at", "quantity", "status", "owner_ref", "created_on"}).
		AddRow(11, 2, start, start.AddDate(0, 0, 1), 2, "APPROVED", "order-9", created).
		AddRow(12, 2, start.AddDate(0, 0, 2), end.AddDate(0, 0, 4), 1, "CART", "cart-3", created)

	mock.ExpectQuery("SELECT (.+) FROM reservation_holds WHERE product_id = \\$1 AND status = ANY\\(\\$2\\)").
		WithArgs(int32(2), statuses, start, end).
		WillReturnRows(rows)

	holds, err := repo.OverlappingHolds(ctx, 2, domain.TimeRange{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, holds, 2)
	assert.Equal(t, int32(11), holds[0].ID)
	assert.Equal(t, domain.HoldStatusApproved, holds[0].Status)
	assert.Equal(t, "cart-3", holds[1].OwnerRef)
	assert.Equal(t, end.AddDate(0, 0, 4), holds[1].Range.End)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldRepository_InsertHold(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewHoldRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	h := &domain.ReservationHold{
		ProductID: 2,
		Range:     domain.TimeRange{Start: start, End: start.AddDate(0, 0, 2)},
		Quantity:  3,
		Status:    domain.HoldStatusPending,
		OwnerRef:  "order-1",
		CreatedOn: start.Add(-time.Hour),
	}

	mock.ExpectQuery("INSERT INTO reservation_holds").
		WithArgs(int32(2), h.Range.Start, h.Range.End, 3, "PENDING", "order-1", h.CreatedOn).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))

	require.NoError(t, repo.InsertHold(ctx, h))
	assert.Equal(t, int32(77), h.ID)

	assert.ErrorIs(t, repo.InsertHold(ctx, &domain.ReservationHold{Quantity: 0}), domain.ErrInvalidQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldRepository_ExpireCartHolds(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewHoldRepository(db)
	cutoff := time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE reservation_holds SET status = \\$1 WHERE status = \\$2 AND created_on < \\$3").
		WithArgs("EXPIRED", "CART", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ExpireCartHolds(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateTableRepository_GetRateTable(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRateTableRepository(db)
	ctx := context.Background()
	columns := []string{"product_id", "daily_rate", "weekly_rate", "monthly_rate", "deposit", "deposit_mode", "min_days", "max_days",
		"preparation_days", "insurance_fee_per_day", "early_return_discount_rate", "extension_fee_rate",
		"replacement_fee", "pricing_method", "updated_on"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rate_tables WHERE product_id = \\$1").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(3, "12.50", "70.00", nil, "40.00", "per_order", 2, 28, 1, "1.25", "0.5000", nil, "300.00", "auto", "2026-01-15"))

		rt, err := repo.GetRateTable(ctx, 3)
		require.NoError(t, err)
		assert.True(t, rt.DailyRate.Valid)
		assert.Equal(t, "12.5", rt.DailyRate.Decimal.String())
		assert.False(t, rt.MonthlyRate.Valid)
		assert.False(t, rt.ExtensionFeeRate.Valid)
		assert.Equal(t, domain.DepositModePerOrder, rt.DepositMode)
		require.NotNil(t, rt.MaxDays)
		assert.Equal(t, 28, *rt.MaxDays)
		assert.Equal(t, domain.PricingMethodAuto, rt.PricingMethod)
		assert.NoError(t, rt.Validate())
	})

	t.Run("Open ended", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rate_tables").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(4, "10", nil, nil, nil, "per_unit", 1, nil, 0, nil, nil, nil, nil, "daily", "2026-01-15"))

		rt, err := repo.GetRateTable(ctx, 4)
		require.NoError(t, err)
		assert.Nil(t, rt.MaxDays)
		assert.Equal(t, domain.PricingMethodDaily, rt.Method())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rate_tables").
			WithArgs(int32(9)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetRateTable(ctx, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateTableRepository_ListProductIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRateTableRepository(db)

	mock.ExpectQuery("SELECT product_id FROM rate_tables ORDER BY product_id").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(1).AddRow(3))

	ids, err := repo.ListProductIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
