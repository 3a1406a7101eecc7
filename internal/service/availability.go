package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository"
)

type availabilityService struct {
	stockRepo repository.StockReader
	holdRepo  repository.HoldReader
}

func NewAvailabilityService(stockRepo repository.StockReader, holdRepo repository.HoldReader) AvailabilityService {
	return &availabilityService{
		stockRepo: stockRepo,
		holdRepo:  holdRepo,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, productID int32, r domain.TimeRange, quantity int) (*domain.AvailabilityVerdict, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}
	if !r.Start.Before(r.End) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRange, r)
	}

	total, holds, err := snapshot(ctx, s.stockRepo, s.holdRepo, productID, r)
	if err != nil {
		return nil, err
	}
	verdict := ResolveAvailability(total, holds, r, quantity)
	return &verdict, nil
}

func (s *availabilityService) AvailabilityCalendar(ctx context.Context, productID int32, r domain.TimeRange) ([]domain.DayAvailability, error) {
	if !r.Start.Before(r.End) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRange, r)
	}

	total, holds, err := snapshot(ctx, s.stockRepo, s.holdRepo, productID, r)
	if err != nil {
		return nil, err
	}
	return ResolveCalendar(total, holds, r), nil
}

// snapshot loads the stock level and the holds overlapping r in one pass.
func snapshot(ctx context.Context, stockRepo repository.StockReader, holdRepo repository.HoldReader, productID int32, r domain.TimeRange) (int, []domain.ReservationHold, error) {
	stock, err := stockRepo.GetStock(ctx, productID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load stock for product %d: %w", productID, err)
	}
	holds, err := holdRepo.OverlappingHolds(ctx, productID, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load holds for product %d: %w", productID, err)
	}
	return stock.TotalQuantity, holds, nil
}

// segment is one sub-interval of a query range with a constant reserved load.
type segment struct {
	rng  domain.TimeRange
	load int
}

type loadEvent struct {
	at    time.Time
	delta int
}

// loadProfile splits r at every hold boundary falling inside it and returns
// the reserved quantity of each consecutive sub-interval. Holds that do not
// count against stock or only touch r are ignored.
func loadProfile(holds []domain.ReservationHold, r domain.TimeRange) []segment {
	events := make([]loadEvent, 0, 2*len(holds))
	for _, h := range holds {
		if !h.Status.CountsAgainstStock() || h.Quantity <= 0 {
			continue
		}
		clipped, ok := h.Range.Intersect(r)
		if !ok {
			continue
		}
		events = append(events,
			loadEvent{at: clipped.Start, delta: h.Quantity},
			loadEvent{at: clipped.End, delta: -h.Quantity},
		)
	}
	slices.SortStableFunc(events, func(a, b loadEvent) int {
		return a.at.Compare(b.at)
	})

	var segments []segment
	cursor := r.Start
	load := 0
	for i := 0; i < len(events); {
		at := events[i].at
		if at.After(cursor) {
			segments = append(segments, segment{rng: domain.TimeRange{Start: cursor, End: at}, load: load})
			cursor = at
		}
		for ; i < len(events) && events[i].at.Equal(at); i++ {
			load += events[i].delta
		}
	}
	if cursor.Before(r.End) {
		segments = append(segments, segment{rng: domain.TimeRange{Start: cursor, End: r.End}, load: load})
	}
	return segments
}

// ResolveAvailability computes the verdict for quantity units over r from a
// ledger snapshot. The free quantity is bounded by the worst sub-interval,
// not by the sum of all overlapping holds.
func ResolveAvailability(total int, holds []domain.ReservationHold, r domain.TimeRange, quantity int) domain.AvailabilityVerdict {
	segments := loadProfile(holds, r)

	binding := r
	maxLoad := 0
	for i, seg := range segments {
		if i == 0 || seg.load > maxLoad {
			maxLoad = seg.load
			binding = seg.rng
		}
	}

	available := total - maxLoad
	if available < 0 || total <= 0 {
		available = 0
	}

	return domain.AvailabilityVerdict{
		Available:         total > 0 && available >= quantity,
		AvailableQuantity: available,
		RequestedQuantity: quantity,
		TotalQuantity:     total,
		BindingRange:      binding,
	}
}

// ResolveCalendar reports the lowest free quantity for each calendar day
// starting at r.Start. The last day is cut at r.End.
func ResolveCalendar(total int, holds []domain.ReservationHold, r domain.TimeRange) []domain.DayAvailability {
	segments := loadProfile(holds, r)

	var days []domain.DayAvailability
	for dayStart := r.Start; dayStart.Before(r.End); dayStart = dayStart.AddDate(0, 0, 1) {
		dayEnd := dayStart.AddDate(0, 0, 1)
		if dayEnd.After(r.End) {
			dayEnd = r.End
		}
		dayRange := domain.TimeRange{Start: dayStart, End: dayEnd}

		maxLoad := 0
		for _, seg := range segments {
			if seg.rng.Overlaps(dayRange) && seg.load > maxLoad {
				maxLoad = seg.load
			}
		}
		free := total - maxLoad
		if free < 0 {
			free = 0
		}
		days = append(days, domain.DayAvailability{
			Date:              dayStart.Format(domain.DayLayout),
			AvailableQuantity: free,
		})
	}
	return days
}
