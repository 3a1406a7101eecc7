package service

import (
	"context"
	"fmt"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository"
)

// AdvisorOptions controls how far the date probe reaches around a request.
type AdvisorOptions struct {
	ForwardDays    int
	BackwardDays   int
	MaxSuggestions int
	Location       *time.Location
}

func (o AdvisorOptions) withDefaults() AdvisorOptions {
	if o.ForwardDays <= 0 {
		o.ForwardDays = 14
	}
	if o.BackwardDays <= 0 {
		o.BackwardDays = 7
	}
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = 3
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

type advisorService struct {
	stockRepo repository.StockReader
	holdRepo  repository.HoldReader
	rateRepo  repository.RateTableReader
	opts      AdvisorOptions
	now       Clock
}

func NewAdvisorService(
	stockRepo repository.StockReader,
	holdRepo repository.HoldReader,
	rateRepo repository.RateTableReader,
	opts AdvisorOptions,
	now Clock,
) AdvisorService {
	if now == nil {
		now = time.Now
	}
	return &advisorService{
		stockRepo: stockRepo,
		holdRepo:  holdRepo,
		rateRepo:  rateRepo,
		opts:      opts.withDefaults(),
		now:       now,
	}
}

// probeOffsets lists day shifts in priority order: +1..+forward, then -1..-backward.
func (s *advisorService) probeOffsets() []int {
	offsets := make([]int, 0, s.opts.ForwardDays+s.opts.BackwardDays)
	for i := 1; i <= s.opts.ForwardDays; i++ {
		offsets = append(offsets, i)
	}
	for i := 1; i <= s.opts.BackwardDays; i++ {
		offsets = append(offsets, -i)
	}
	return offsets
}

func (s *advisorService) earliestStart(rt *domain.RateTable) time.Time {
	now := s.now().In(s.opts.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.opts.Location)
	return today.AddDate(0, 0, rt.PreparationDays)
}

func (s *advisorService) SuggestDates(ctx context.Context, productID int32, r domain.TimeRange, quantity, maxSuggestions int) ([]domain.TimeRange, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}
	if !r.Start.Before(r.End) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRange, r)
	}
	if maxSuggestions <= 0 {
		maxSuggestions = s.opts.MaxSuggestions
	}

	rt, err := s.rateRepo.GetRateTable(ctx, productID)
	if err != nil {
		return nil, err
	}
	earliest := s.earliestStart(rt)

	// One ledger read covers every candidate window.
	probe := domain.TimeRange{
		Start: r.Start.AddDate(0, 0, -s.opts.BackwardDays),
		End:   r.End.AddDate(0, 0, s.opts.ForwardDays),
	}
	total, holds, err := snapshot(ctx, s.stockRepo, s.holdRepo, productID, probe)
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.TimeRange, 0, maxSuggestions)
	for _, offset := range s.probeOffsets() {
		candidate := r.Shift(offset)
		if candidate.Start.Before(earliest) {
			continue
		}
		if ResolveAvailability(total, holds, candidate, quantity).Available {
			suggestions = append(suggestions, candidate)
			if len(suggestions) == maxSuggestions {
				break
			}
		}
	}
	return suggestions, nil
}

func (s *advisorService) SuggestReducedQuantity(ctx context.Context, productID int32, r domain.TimeRange) (int, error) {
	if !r.Start.Before(r.End) {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidRange, r)
	}
	total, holds, err := snapshot(ctx, s.stockRepo, s.holdRepo, productID, r)
	if err != nil {
		return 0, err
	}
	return ResolveAvailability(total, holds, r, 1).AvailableQuantity, nil
}
