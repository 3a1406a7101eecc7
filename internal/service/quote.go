package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository"
	"rental-engine-backend/internal/utils"
)

type pricingService struct {
	rateRepo repository.RateTableReader
	taxRate  decimal.Decimal
}

func NewPricingService(rateRepo repository.RateTableReader, taxRate decimal.Decimal) PricingService {
	return &pricingService{
		rateRepo: rateRepo,
		taxRate:  taxRate,
	}
}

// Quote prices a rental from a rate table snapshot. It never reads the ledger.
func (s *pricingService) Quote(rt *domain.RateTable, r domain.TimeRange, quantity int, opts domain.QuoteOptions) (*domain.Quote, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: rate table", domain.ErrNotFound)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}
	if !r.Start.Before(r.End) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRange, r)
	}

	days := r.DurationDays()
	base, breakdown, err := utils.CalculateBaseCost(rt, days, quantity)
	if err != nil {
		return nil, err
	}

	fees, feeLines := utils.CalculateFees(rt, days, quantity, opts)
	breakdown = append(breakdown, feeLines...)

	subtotal := base
	for _, fee := range fees {
		subtotal = subtotal.Add(fee)
	}

	tax := utils.CalculateTax(subtotal, s.taxRate)
	if !tax.IsZero() {
		breakdown = append(breakdown, utils.TaxLine(tax, s.taxRate))
	}

	deposit, depositLine := utils.CalculateDeposit(rt, quantity)
	if depositLine != nil {
		breakdown = append(breakdown, *depositLine)
	}

	return &domain.Quote{
		BasePrice: base,
		TotalDays: days,
		Subtotal:  subtotal,
		Deposit:   deposit,
		Fees:      fees,
		Tax:       tax,
		Total:     subtotal.Add(tax).Add(deposit),
		Breakdown: breakdown,
	}, nil
}

func (s *pricingService) QuoteProduct(ctx context.Context, productID int32, r domain.TimeRange, quantity int, opts domain.QuoteOptions) (*domain.Quote, error) {
	rt, err := s.rateRepo.GetRateTable(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.Quote(rt, r, quantity, opts)
}

func (s *pricingService) EarlyReturn(ctx context.Context, productID int32, ev domain.ReturnEvent) (*domain.Adjustment, error) {
	rt, err := s.rateRepo.GetRateTable(ctx, productID)
	if err != nil {
		return nil, err
	}
	return utils.CalculateEarlyReturnAdjustment(rt, ev, s.taxRate)
}

func (s *pricingService) Extension(ctx context.Context, productID int32, original domain.TimeRange, newEnd time.Time, quantity int) (*domain.Adjustment, error) {
	rt, err := s.rateRepo.GetRateTable(ctx, productID)
	if err != nil {
		return nil, err
	}
	return utils.CalculateExtensionCharge(rt, original, newEnd, quantity, s.taxRate)
}

func (s *pricingService) Replacement(ctx context.Context, productID int32, units int) (*domain.Adjustment, error) {
	rt, err := s.rateRepo.GetRateTable(ctx, productID)
	if err != nil {
		return nil, err
	}
	return utils.CalculateReplacementCharge(rt, units, s.taxRate)
}
