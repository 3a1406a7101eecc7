package repository

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
)

type StockReader interface {
	// GetStock returns domain.ErrNotFound when the product has no stock row.
	GetStock(ctx context.Context, productID int32) (*domain.StockLevel, error)
}

// HoldReader is the reservation ledger as seen by the engine.
type HoldReader interface {
	// OverlappingHolds returns counting holds of the product that overlap r.
	OverlappingHolds(ctx context.Context, productID int32, r domain.TimeRange) ([]domain.ReservationHold, error)
}

type HoldWriter interface {
	InsertHold(ctx context.Context, hold *domain.ReservationHold) error
	// ExpireCartHolds flips cart holds created before cutoff to expired
	// and returns how many rows changed.
	ExpireCartHolds(ctx context.Context, cutoff time.Time) (int64, error)
}

type HoldRepository interface {
	HoldReader
	HoldWriter
}

type RateTableReader interface {
	// GetRateTable returns domain.ErrNotFound when the product has no rate table.
	GetRateTable(ctx context.Context, productID int32) (*domain.RateTable, error)
}

type RateTableRepository interface {
	RateTableReader
	ListProductIDs(ctx context.Context) ([]int32, error)
}

type StockRepository interface {
	StockReader
	SetStock(ctx context.Context, level *domain.StockLevel) error
}
