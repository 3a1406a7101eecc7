package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rental-engine-backend/internal/domain"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30
	moneyPlaces  = 2
)

// RentalCostBreakdown is the per-unit block decomposition chosen for a duration.
type RentalCostBreakdown struct {
	Months     int
	Weeks      int
	Days       int
	MonthsCost decimal.Decimal
	WeeksCost  decimal.Decimal
	DaysCost   decimal.Decimal
	TotalCost  decimal.Decimal
}

// blockPlan counts how many blocks of each basis are charged.
type blockPlan struct {
	months, weeks, days int
}

type rates struct {
	daily, weekly, monthly decimal.NullDecimal
}

// cost prices a plan. ok is false when the plan needs a rate that is not set.
func (r rates) cost(p blockPlan) (decimal.Decimal, bool) {
	total := decimal.Zero
	for _, part := range []struct {
		count int
		rate  decimal.NullDecimal
	}{
		{p.months, r.monthly},
		{p.weeks, r.weekly},
		{p.days, r.daily},
	} {
		if part.count == 0 {
			continue
		}
		if !part.rate.Valid {
			return decimal.Zero, false
		}
		total = total.Add(part.rate.Decimal.Mul(decimal.NewFromInt(int64(part.count))))
	}
	return total, true
}

func (r rates) allDaily(days int) (blockPlan, bool) {
	p := blockPlan{days: days}
	_, ok := r.cost(p)
	return p, ok
}

// weeklyOptimized charges whole weeks plus the remainder in days, never
// paying more for the remainder than one extra week.
func (r rates) weeklyOptimized(days int) (blockPlan, bool) {
	if !r.weekly.Valid {
		return blockPlan{}, false
	}
	weeks, remainder := days/daysPerWeek, days%daysPerWeek
	if remainder == 0 {
		return blockPlan{weeks: weeks}, true
	}
	if r.daily.Valid && !r.daily.Decimal.Mul(decimal.NewFromInt(int64(remainder))).GreaterThan(r.weekly.Decimal) {
		return blockPlan{weeks: weeks, days: remainder}, true
	}
	return blockPlan{weeks: weeks + 1}, true
}

// belowMonth is the cheaper of all-daily and weekly-optimized.
func (r rates) belowMonth(days int) (blockPlan, decimal.Decimal, bool) {
	return r.cheapest(days, r.allDaily, r.weeklyOptimized)
}

// monthlyOptimized charges whole months and prices the remainder with the
// best sub-month strategy, capped at one extra month.
func (r rates) monthlyOptimized(days int) (blockPlan, bool) {
	if !r.monthly.Valid {
		return blockPlan{}, false
	}
	months, remainder := days/daysPerMonth, days%daysPerMonth
	if remainder == 0 {
		return blockPlan{months: months}, true
	}
	rest, restCost, ok := r.belowMonth(remainder)
	if !ok || restCost.GreaterThan(r.monthly.Decimal) {
		return blockPlan{months: months + 1}, true
	}
	rest.months = months
	return rest, true
}

// cheapest returns the first plan with the lowest cost among the strategies.
func (r rates) cheapest(days int, strategies ...func(int) (blockPlan, bool)) (blockPlan, decimal.Decimal, bool) {
	var (
		best     blockPlan
		bestCost decimal.Decimal
		found    bool
	)
	for _, strategy := range strategies {
		p, ok := strategy(days)
		if !ok {
			continue
		}
		c, ok := r.cost(p)
		if !ok {
			continue
		}
		if !found || c.LessThan(bestCost) {
			best, bestCost, found = p, c, true
		}
	}
	return best, bestCost, found
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// planFor picks the block plan for a duration under the table's pricing method.
func planFor(rt *domain.RateTable, days int) (blockPlan, error) {
	r := rates{daily: rt.DailyRate, weekly: rt.WeeklyRate, monthly: rt.MonthlyRate}

	switch rt.Method() {
	case domain.PricingMethodAuto:
		p, _, ok := r.cheapest(days, r.allDaily, r.weeklyOptimized, r.monthlyOptimized)
		if !ok {
			return blockPlan{}, fmt.Errorf("%w: no rate configured", domain.ErrMissingRate)
		}
		return p, nil
	case domain.PricingMethodDaily:
		if !r.daily.Valid {
			return blockPlan{}, fmt.Errorf("%w: daily rate is not set", domain.ErrMissingRate)
		}
		return blockPlan{days: days}, nil
	case domain.PricingMethodWeekly:
		if !r.weekly.Valid {
			return blockPlan{}, fmt.Errorf("%w: weekly rate is not set", domain.ErrMissingRate)
		}
		return blockPlan{weeks: ceilDiv(days, daysPerWeek)}, nil
	case domain.PricingMethodMonthly:
		if !r.monthly.Valid {
			return blockPlan{}, fmt.Errorf("%w: monthly rate is not set", domain.ErrMissingRate)
		}
		return blockPlan{months: ceilDiv(days, daysPerMonth)}, nil
	default:
		return blockPlan{}, fmt.Errorf("%w: unknown pricing method %q", domain.ErrInvalidRateTable, rt.PricingMethod)
	}
}

func multiply(rate decimal.NullDecimal, count int) decimal.Decimal {
	if count == 0 || !rate.Valid {
		return decimal.Zero
	}
	return rate.Decimal.Mul(decimal.NewFromInt(int64(count)))
}

// CalculateRentalCostWithBreakdown returns the per-unit decomposition for a
// duration without applying min/max day limits. Recomputes use it directly.
func CalculateRentalCostWithBreakdown(rt *domain.RateTable, days int) (RentalCostBreakdown, error) {
	if days < 1 {
		return RentalCostBreakdown{}, fmt.Errorf("%w: %d days", domain.ErrInvalidDuration, days)
	}
	p, err := planFor(rt, days)
	if err != nil {
		return RentalCostBreakdown{}, err
	}

	b := RentalCostBreakdown{
		Months:     p.months,
		Weeks:      p.weeks,
		Days:       p.days,
		MonthsCost: multiply(rt.MonthlyRate, p.months),
		WeeksCost:  multiply(rt.WeeklyRate, p.weeks),
		DaysCost:   multiply(rt.DailyRate, p.days),
	}
	b.TotalCost = b.MonthsCost.Add(b.WeeksCost).Add(b.DaysCost)
	return b, nil
}

// CalculateBaseCost prices days x quantity and returns one line per block basis.
func CalculateBaseCost(rt *domain.RateTable, days, quantity int) (decimal.Decimal, []domain.LineItem, error) {
	if quantity <= 0 {
		return decimal.Zero, nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}
	if err := rt.CheckDuration(days); err != nil {
		return decimal.Zero, nil, err
	}
	b, err := CalculateRentalCostWithBreakdown(rt, days)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return b.TotalCost.Mul(decimal.NewFromInt(int64(quantity))), baseLines(rt, b, quantity), nil
}

func baseLines(rt *domain.RateTable, b RentalCostBreakdown, quantity int) []domain.LineItem {
	qty := decimal.NewFromInt(int64(quantity))
	var lines []domain.LineItem
	for _, part := range []struct {
		label string
		units int
		rate  decimal.NullDecimal
		cost  decimal.Decimal
	}{
		{"monthly rate", b.Months, rt.MonthlyRate, b.MonthsCost},
		{"weekly rate", b.Weeks, rt.WeeklyRate, b.WeeksCost},
		{"daily rate", b.Days, rt.DailyRate, b.DaysCost},
	} {
		if part.units == 0 {
			continue
		}
		lines = append(lines, domain.LineItem{
			Kind:        domain.LineItemBase,
			Description: part.label,
			Units:       part.units,
			UnitPrice:   part.rate.Decimal,
			Quantity:    quantity,
			Amount:      part.cost.Mul(qty),
		})
	}
	return lines
}

// CalculateFees returns the optional fees of an initial quote. Early-return
// discounts and extension fees are recomputes and never appear here.
func CalculateFees(rt *domain.RateTable, days, quantity int, opts domain.QuoteOptions) (map[string]decimal.Decimal, []domain.LineItem) {
	fees := make(map[string]decimal.Decimal)
	var lines []domain.LineItem

	if opts.Insurance && rt.InsuranceFeePerDay.Valid {
		amount := rt.InsuranceFeePerDay.Decimal.
			Mul(decimal.NewFromInt(int64(days))).
			Mul(decimal.NewFromInt(int64(quantity)))
		fees[domain.FeeInsurance] = amount
		lines = append(lines, domain.LineItem{
			Kind:        domain.LineItemFee,
			Description: domain.FeeInsurance,
			Units:       days,
			UnitPrice:   rt.InsuranceFeePerDay.Decimal,
			Quantity:    quantity,
			Amount:      amount,
		})
	}
	return fees, lines
}

// CalculateDeposit applies the table's deposit mode. Zero when unset.
func CalculateDeposit(rt *domain.RateTable, quantity int) (decimal.Decimal, *domain.LineItem) {
	if !rt.Deposit.Valid || rt.Deposit.Decimal.IsZero() {
		return decimal.Zero, nil
	}
	multiplier := quantity
	if rt.DepositMode == domain.DepositModePerOrder {
		multiplier = 1
	}
	amount := rt.Deposit.Decimal.Mul(decimal.NewFromInt(int64(multiplier)))
	return amount, &domain.LineItem{
		Kind:        domain.LineItemDeposit,
		Description: "refundable deposit",
		Units:       1,
		UnitPrice:   rt.Deposit.Decimal,
		Quantity:    multiplier,
		Amount:      amount,
	}
}

// CalculateTax rounds half away from zero to cents.
func CalculateTax(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(moneyPlaces)
}

// TaxLine is the breakdown entry for a tax amount.
func TaxLine(tax, rate decimal.Decimal) domain.LineItem {
	return domain.LineItem{
		Kind:        domain.LineItemTax,
		Description: "tax",
		Units:       1,
		UnitPrice:   rate,
		Quantity:    1,
		Amount:      tax,
	}
}

func finishAdjustment(adj *domain.Adjustment, taxRate decimal.Decimal) *domain.Adjustment {
	adj.Tax = CalculateTax(adj.Subtotal, taxRate)
	if !adj.Tax.IsZero() {
		adj.Lines = append(adj.Lines, TaxLine(adj.Tax, taxRate))
	}
	adj.Total = adj.Subtotal.Add(adj.Tax)
	return adj
}

func emptyAdjustment() *domain.Adjustment {
	return &domain.Adjustment{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
}

// CalculateEarlyReturnAdjustment credits the unused part of a booking when the
// item comes back before the scheduled end. The credit is the difference in
// base price times the early return discount rate, returned as a negative
// amount. Returns before the start still pay for one day.
func CalculateEarlyReturnAdjustment(rt *domain.RateTable, ev domain.ReturnEvent, taxRate decimal.Decimal) (*domain.Adjustment, error) {
	if ev.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, ev.Quantity)
	}
	if !ev.ReturnedAt.Before(ev.Scheduled.End) || !rt.EarlyReturnDiscountRate.Valid {
		return emptyAdjustment(), nil
	}

	scheduledDays := ev.Scheduled.DurationDays()
	actualDays := 1
	if ev.ReturnedAt.After(ev.Scheduled.Start) {
		actualDays = domain.TimeRange{Start: ev.Scheduled.Start, End: ev.ReturnedAt}.DurationDays()
	}
	unused := scheduledDays - actualDays
	if unused <= 0 {
		return emptyAdjustment(), nil
	}

	scheduled, err := CalculateRentalCostWithBreakdown(rt, scheduledDays)
	if err != nil {
		return nil, err
	}
	actual, err := CalculateRentalCostWithBreakdown(rt, actualDays)
	if err != nil {
		return nil, err
	}

	perUnit := scheduled.TotalCost.Sub(actual.TotalCost)
	if !perUnit.IsPositive() {
		return emptyAdjustment(), nil
	}
	credit := perUnit.
		Mul(decimal.NewFromInt(int64(ev.Quantity))).
		Mul(rt.EarlyReturnDiscountRate.Decimal).
		Round(moneyPlaces).
		Neg()

	adj := &domain.Adjustment{
		Days:     -unused,
		Subtotal: credit,
		Lines: []domain.LineItem{{
			Kind:        domain.LineItemDiscount,
			Description: "early return discount",
			Units:       unused,
			UnitPrice:   rt.EarlyReturnDiscountRate.Decimal,
			Quantity:    ev.Quantity,
			Amount:      credit,
		}},
	}
	return finishAdjustment(adj, taxRate), nil
}

// CalculateExtensionCharge prices moving the end of a booking from
// original.End to newEnd: the extra base price plus the extension fee on it.
func CalculateExtensionCharge(rt *domain.RateTable, original domain.TimeRange, newEnd time.Time, quantity int, taxRate decimal.Decimal) (*domain.Adjustment, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}
	if !newEnd.After(original.End) {
		return nil, fmt.Errorf("%w: new end must be after the current end", domain.ErrInvalidRange)
	}

	extended := domain.TimeRange{Start: original.Start, End: newEnd}
	originalDays, newDays := original.DurationDays(), extended.DurationDays()
	if err := rt.CheckDuration(newDays); err != nil {
		return nil, err
	}

	before, err := CalculateRentalCostWithBreakdown(rt, originalDays)
	if err != nil {
		return nil, err
	}
	after, err := CalculateRentalCostWithBreakdown(rt, newDays)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	additional := after.TotalCost.Sub(before.TotalCost).Mul(qty)
	extraDays := newDays - originalDays

	adj := &domain.Adjustment{
		Days:     extraDays,
		Subtotal: additional,
		Lines: []domain.LineItem{{
			Kind:        domain.LineItemExtension,
			Description: "extension days",
			Units:       extraDays,
			UnitPrice:   after.TotalCost.Sub(before.TotalCost),
			Quantity:    quantity,
			Amount:      additional,
		}},
	}
	if rt.ExtensionFeeRate.Valid && !rt.ExtensionFeeRate.Decimal.IsZero() && additional.IsPositive() {
		fee := additional.Mul(rt.ExtensionFeeRate.Decimal).Round(moneyPlaces)
		adj.Subtotal = adj.Subtotal.Add(fee)
		adj.Lines = append(adj.Lines, domain.LineItem{
			Kind:        domain.LineItemFee,
			Description: "extension fee",
			Units:       1,
			UnitPrice:   rt.ExtensionFeeRate.Decimal,
			Quantity:    1,
			Amount:      fee,
		})
	}
	return finishAdjustment(adj, taxRate), nil
}

// CalculateReplacementCharge bills units that were lost or returned damaged.
func CalculateReplacementCharge(rt *domain.RateTable, units int, taxRate decimal.Decimal) (*domain.Adjustment, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, units)
	}
	if !rt.ReplacementFee.Valid {
		return nil, fmt.Errorf("%w: replacement fee is not set", domain.ErrMissingRate)
	}
	amount := rt.ReplacementFee.Decimal.Mul(decimal.NewFromInt(int64(units)))
	adj := &domain.Adjustment{
		Subtotal: amount,
		Lines: []domain.LineItem{{
			Kind:        domain.LineItemReplacement,
			Description: "replacement fee",
			Units:       1,
			UnitPrice:   rt.ReplacementFee.Decimal,
			Quantity:    units,
			Amount:      amount,
		}},
	}
	return finishAdjustment(adj, taxRate), nil
}
