package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/locker"
	"rental-engine-backend/internal/repository/memory"
	"rental-engine-backend/internal/service"
)

func TestPlaceHold(t *testing.T) {
	ctx := context.Background()
	now := day(1).Add(9 * time.Hour)
	r := days(2, 4)

	setup := func(existing []domain.ReservationHold) (service.BookingService, *MockHoldRepo, *MockLocker, *bool) {
		stockRepo := new(MockStockRepo)
		holdRepo := new(MockHoldRepo)
		locks := new(MockLocker)
		released := false
		stockRepo.On("GetStock", ctx, int32(1)).Return(&domain.StockLevel{ProductID: 1, TotalQuantity: 3}, nil)
		holdRepo.On("OverlappingHolds", ctx, int32(1), r).Return(existing, nil)
		locks.On("Acquire", ctx, locker.ProductKey(1)).Return(locker.Release(func(context.Context) error {
			released = true
			return nil
		}), nil)
		return service.NewBookingService(stockRepo, holdRepo, locks, fixedClock(now)), holdRepo, locks, &released
	}

	t.Run("Success", func(t *testing.T) {
		svc, holdRepo, locks, released := setup([]domain.ReservationHold{hold(1, 3, 1)})
		holdRepo.On("InsertHold", ctx, mock.AnythingOfType("*domain.ReservationHold")).Return(nil)

		h := &domain.ReservationHold{ProductID: 1, Range: r, Quantity: 2, OwnerRef: "cart-17"}
		v, err := svc.PlaceHold(ctx, h)
		require.NoError(t, err)
		assert.True(t, v.Available)
		assert.Equal(t, domain.HoldStatusCart, h.Status)
		assert.Equal(t, now, h.CreatedOn)
		assert.True(t, *released)
		holdRepo.AssertExpectations(t)
		locks.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		svc, holdRepo, _, released := setup([]domain.ReservationHold{hold(1, 3, 2)})

		v, err := svc.PlaceHold(ctx, &domain.ReservationHold{ProductID: 1, Range: r, Quantity: 2})
		assert.ErrorIs(t, err, domain.ErrBookingConflict)

		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, 1, conflict.Verdict.AvailableQuantity)
		assert.Equal(t, days(2, 3), conflict.Verdict.BindingRange)
		assert.Equal(t, 1, v.AvailableQuantity)
		assert.True(t, *released)
		holdRepo.AssertNotCalled(t, "InsertHold", mock.Anything, mock.Anything)
	})

	t.Run("Lock unavailable", func(t *testing.T) {
		holdRepo := new(MockHoldRepo)
		locks := new(MockLocker)
		locks.On("Acquire", ctx, locker.ProductKey(1)).Return(nil, locker.ErrNotAcquired)
		svc := service.NewBookingService(new(MockStockRepo), holdRepo, locks, fixedClock(now))

		_, err := svc.PlaceHold(ctx, &domain.ReservationHold{ProductID: 1, Range: r, Quantity: 1})
		assert.ErrorIs(t, err, locker.ErrNotAcquired)
		holdRepo.AssertNotCalled(t, "OverlappingHolds", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non reserving status", func(t *testing.T) {
		svc := service.NewBookingService(new(MockStockRepo), new(MockHoldRepo), new(MockLocker), fixedClock(now))
		_, err := svc.PlaceHold(ctx, &domain.ReservationHold{ProductID: 1, Range: r, Quantity: 1, Status: domain.HoldStatusReturned})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("Insert failure", func(t *testing.T) {
		svc, holdRepo, _, released := setup(nil)
		holdRepo.On("InsertHold", ctx, mock.AnythingOfType("*domain.ReservationHold")).Return(errors.New("disk full"))

		_, err := svc.PlaceHold(ctx, &domain.ReservationHold{ProductID: 1, Range: r, Quantity: 1})
		assert.ErrorContains(t, err, "disk full")
		assert.True(t, *released)
	})
}

func TestPlaceHold_ConcurrentRequestsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	require.NoError(t, ledger.SetStock(ctx, &domain.StockLevel{ProductID: 1, TotalQuantity: 5}))
	svc := service.NewBookingService(ledger, ledger, locker.NewMemoryLocker(), nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := 1 + i%3
			_, err := svc.PlaceHold(ctx, &domain.ReservationHold{ProductID: 1, Range: days(start, start+3), Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, domain.ErrBookingConflict):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 12, placed+rejected)
	assert.Equal(t, 5, placed)

	holds, err := ledger.OverlappingHolds(ctx, 1, days(1, 7))
	require.NoError(t, err)
	v := service.ResolveAvailability(5, holds, days(1, 7), 1)
	assert.Equal(t, 0, v.AvailableQuantity)
}
