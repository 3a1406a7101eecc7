package service

import (
	"context"
	"fmt"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/locker"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type bookingService struct {
	stockRepo repository.StockReader
	holdRepo  repository.HoldRepository
	locks     locker.Locker
	now       Clock
}

func NewBookingService(stockRepo repository.StockReader, holdRepo repository.HoldRepository, locks locker.Locker, now Clock) BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		stockRepo: stockRepo,
		holdRepo:  holdRepo,
		locks:     locks,
		now:       now,
	}
}

func (s *bookingService) PlaceHold(ctx context.Context, hold *domain.ReservationHold) (*domain.AvailabilityVerdict, error) {
	if hold.Quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, hold.Quantity)
	}
	if !hold.Range.Start.Before(hold.Range.End) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRange, hold.Range)
	}
	if hold.Status == "" {
		hold.Status = domain.HoldStatusCart
	}
	if !hold.Status.CountsAgainstStock() {
		return nil, fmt.Errorf("%w: %s does not reserve stock", domain.ErrInvalidStatus, hold.Status)
	}

	release, err := s.locks.Acquire(ctx, locker.ProductKey(hold.ProductID))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "failed to release product lock", "product_id", hold.ProductID, "error", err)
		}
	}()

	// Re-check under the lock; a quote shown earlier may be stale by now.
	total, holds, err := snapshot(ctx, s.stockRepo, s.holdRepo, hold.ProductID, hold.Range)
	if err != nil {
		return nil, err
	}
	verdict := ResolveAvailability(total, holds, hold.Range, hold.Quantity)
	if !verdict.Available {
		logger.InfoContext(ctx, "hold rejected",
			"product_id", hold.ProductID,
			"requested", hold.Quantity,
			"available", verdict.AvailableQuantity,
			"binding_range", verdict.BindingRange.String(),
		)
		return &verdict, &domain.ConflictError{Verdict: verdict}
	}

	if hold.CreatedOn.IsZero() {
		hold.CreatedOn = s.now()
	}
	if err := s.holdRepo.InsertHold(ctx, hold); err != nil {
		return nil, fmt.Errorf("failed to insert hold: %w", err)
	}

	logger.InfoContext(ctx, "hold placed",
		"hold_id", hold.ID,
		"product_id", hold.ProductID,
		"quantity", hold.Quantity,
		"status", hold.Status,
		"owner_ref", hold.OwnerRef,
	)
	return &verdict, nil
}
