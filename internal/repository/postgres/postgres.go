package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.StockRepository
	repository.HoldRepository
	repository.RateTableRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		StockRepository:     NewStockRepository(db),
		HoldRepository:      NewHoldRepository(db),
		RateTableRepository: NewRateTableRepository(db),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// notFound maps sql.ErrNoRows onto the domain sentinel.
func notFound(err error, what string, productID int32) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s for product %d", domain.ErrNotFound, what, productID)
	}
	return err
}
