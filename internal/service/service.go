package service

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
)

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, productID int32, r domain.TimeRange, quantity int) (*domain.AvailabilityVerdict, error)
	AvailabilityCalendar(ctx context.Context, productID int32, r domain.TimeRange) ([]domain.DayAvailability, error)
}

type AdvisorService interface {
	// SuggestDates returns up to maxSuggestions same-length windows near r
	// that can hold quantity units. maxSuggestions <= 0 uses the configured default.
	SuggestDates(ctx context.Context, productID int32, r domain.TimeRange, quantity, maxSuggestions int) ([]domain.TimeRange, error)
	SuggestReducedQuantity(ctx context.Context, productID int32, r domain.TimeRange) (int, error)
}

type PricingService interface {
	Quote(rt *domain.RateTable, r domain.TimeRange, quantity int, opts domain.QuoteOptions) (*domain.Quote, error)
	QuoteProduct(ctx context.Context, productID int32, r domain.TimeRange, quantity int, opts domain.QuoteOptions) (*domain.Quote, error)
	EarlyReturn(ctx context.Context, productID int32, ev domain.ReturnEvent) (*domain.Adjustment, error)
	Extension(ctx context.Context, productID int32, original domain.TimeRange, newEnd time.Time, quantity int) (*domain.Adjustment, error)
	Replacement(ctx context.Context, productID int32, units int) (*domain.Adjustment, error)
}

type BookingService interface {
	// PlaceHold re-checks availability under the product lock and inserts
	// the hold. A failed re-check returns *domain.ConflictError.
	PlaceHold(ctx context.Context, hold *domain.ReservationHold) (*domain.AvailabilityVerdict, error)
}

// Clock returns the current server time.
type Clock func() time.Time
