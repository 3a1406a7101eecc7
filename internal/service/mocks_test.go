package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/locker"
)

type MockStockRepo struct {
	mock.Mock
}

func (m *MockStockRepo) GetStock(ctx context.Context, productID int32) (*domain.StockLevel, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLevel), args.Error(1)
}

type MockHoldRepo struct {
	mock.Mock
}

func (m *MockHoldRepo) OverlappingHolds(ctx context.Context, productID int32, r domain.TimeRange) ([]domain.ReservationHold, error) {
	args := m.Called(ctx, productID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReservationHold), args.Error(1)
}

func (m *MockHoldRepo) InsertHold(ctx context.Context, hold *domain.ReservationHold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldRepo) ExpireCartHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockRateTableRepo struct {
	mock.Mock
}

func (m *MockRateTableRepo) GetRateTable(ctx context.Context, productID int32) (*domain.RateTable, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateTable), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (locker.Release, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(locker.Release), args.Error(1)
}
