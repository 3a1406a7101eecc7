package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type holdRepository struct {
	db *sql.DB
}

func NewHoldRepository(db *sql.DB) repository.HoldRepository {
	return &holdRepository{db: db}
}

func countingStatuses() []string {
	out := make([]string, len(domain.CountingHoldStatuses))
	for i, s := range domain.CountingHoldStatuses {
		out[i] = string(s)
	}
	return out
}

func (r *holdRepository) OverlappingHolds(ctx context.Context, productID int32, tr domain.TimeRange) ([]domain.ReservationHold, error) {
	query := `SELECT id, product_id, start_at, end_at, quantity, status, owner_ref, created_on
	          FROM reservation_holds
	          WHERE product_id = $1 AND status = ANY($2) AND start_at < $4 AND $3 < end_at
	          ORDER BY start_at, id`
	logger.DatabaseCall("SELECT", "reservation_holds", "productID", productID, "range", tr.String())

	rows, err := r.db.QueryContext(ctx, query, productID, pq.Array(countingStatuses()), tr.Start, tr.End)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "productID", productID)
		return nil, err
	}
	defer rows.Close()

	var holds []domain.ReservationHold
	for rows.Next() {
		var h domain.ReservationHold
		var status string
		if err := rows.Scan(&h.ID, &h.ProductID, &h.Range.Start, &h.Range.End, &h.Quantity, &status, &h.OwnerRef, &h.CreatedOn); err != nil {
			return nil, err
		}
		h.Status = domain.HoldStatus(status)
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(holds)), nil, "productID", productID)
	return holds, nil
}

func (r *holdRepository) InsertHold(ctx context.Context, h *domain.ReservationHold) error {
	if h.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, h.Quantity)
	}
	if h.CreatedOn.IsZero() {
		h.CreatedOn = time.Now()
	}
	query := `INSERT INTO reservation_holds (product_id, start_at, end_at, quantity, status, owner_ref, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "reservation_holds", "productID", h.ProductID, "ownerRef", h.OwnerRef)

	err := r.db.QueryRowContext(ctx, query, h.ProductID, h.Range.Start, h.Range.End, h.Quantity, string(h.Status), h.OwnerRef, h.CreatedOn).Scan(&h.ID)
	logger.DatabaseResult("INSERT", 1, err, "holdID", h.ID)
	return err
}

func (r *holdRepository) ExpireCartHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE reservation_holds SET status = $1 WHERE status = $2 AND created_on < $3`
	logger.DatabaseCall("UPDATE", "reservation_holds", "cutoff", cutoff)

	res, err := r.db.ExecContext(ctx, query, string(domain.HoldStatusExpired), string(domain.HoldStatusCart), cutoff)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	return n, err
}
