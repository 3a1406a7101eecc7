package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PricingMethod string

const (
	PricingMethodAuto    PricingMethod = "auto"
	PricingMethodDaily   PricingMethod = "daily"
	PricingMethodWeekly  PricingMethod = "weekly"
	PricingMethodMonthly PricingMethod = "monthly"
)

type DepositMode string

const (
	DepositModePerUnit  DepositMode = "per_unit"
	DepositModePerOrder DepositMode = "per_order"
)

var (
	maxEarlyReturnDiscountRate = decimal.NewFromInt(1)
	maxExtensionFeeRate        = decimal.NewFromInt(10)
)

// RateTable holds a product's tiered prices and fee parameters.
// It is owned by the admin workflow; the engine only reads it.
type RateTable struct {
	ProductID               int32               `json:"product_id"`
	DailyRate               decimal.NullDecimal `json:"daily_rate"`
	WeeklyRate              decimal.NullDecimal `json:"weekly_rate"`
	MonthlyRate             decimal.NullDecimal `json:"monthly_rate"`
	Deposit                 decimal.NullDecimal `json:"deposit"`
	DepositMode             DepositMode         `json:"deposit_mode"`
	MinDays                 int                 `json:"min_days"`
	MaxDays                 *int                `json:"max_days,omitempty"`
	PreparationDays         int                 `json:"preparation_days"`
	InsuranceFeePerDay      decimal.NullDecimal `json:"insurance_fee_per_day"`
	EarlyReturnDiscountRate decimal.NullDecimal `json:"early_return_discount_rate"`
	ExtensionFeeRate        decimal.NullDecimal `json:"extension_fee_rate"`
	ReplacementFee          decimal.NullDecimal `json:"replacement_fee"`
	PricingMethod           PricingMethod       `json:"pricing_method"`
	UpdatedOn               string              `json:"updated_on"`
}

// Clone returns a deep copy; MaxDays is not shared with the receiver.
func (rt RateTable) Clone() *RateTable {
	if rt.MaxDays != nil {
		maxDays := *rt.MaxDays
		rt.MaxDays = &maxDays
	}
	return &rt
}

// Rentable reports whether at least one rate basis is configured.
func (rt *RateTable) Rentable() bool {
	return rt.DailyRate.Valid || rt.WeeklyRate.Valid || rt.MonthlyRate.Valid
}

// EffectiveMinDays treats anything below one as one day.
func (rt *RateTable) EffectiveMinDays() int {
	if rt.MinDays < 1 {
		return 1
	}
	return rt.MinDays
}

// CheckDuration fails with ErrInvalidDuration outside [min_days, max_days].
func (rt *RateTable) CheckDuration(days int) error {
	if days < rt.EffectiveMinDays() {
		return fmt.Errorf("%w: %d days is below the minimum of %d", ErrInvalidDuration, days, rt.EffectiveMinDays())
	}
	if rt.MaxDays != nil && days > *rt.MaxDays {
		return fmt.Errorf("%w: %d days exceeds the maximum of %d", ErrInvalidDuration, days, *rt.MaxDays)
	}
	return nil
}

// Method defaults an empty pricing method to auto.
func (rt *RateTable) Method() PricingMethod {
	if rt.PricingMethod == "" {
		return PricingMethodAuto
	}
	return rt.PricingMethod
}

// Validate checks the admin-side invariants of a rate table.
func (rt *RateTable) Validate() error {
	if !rt.Rentable() {
		return fmt.Errorf("%w: at least one of daily, weekly or monthly rate is required", ErrInvalidRateTable)
	}
	if rt.MinDays < 0 || rt.PreparationDays < 0 {
		return fmt.Errorf("%w: min_days and preparation_days must not be negative", ErrInvalidRateTable)
	}
	if rt.MaxDays != nil && *rt.MaxDays < rt.MinDays {
		return fmt.Errorf("%w: max_days %d is below min_days %d", ErrInvalidRateTable, *rt.MaxDays, rt.MinDays)
	}
	for name, v := range map[string]decimal.NullDecimal{
		"daily_rate":            rt.DailyRate,
		"weekly_rate":           rt.WeeklyRate,
		"monthly_rate":          rt.MonthlyRate,
		"deposit":               rt.Deposit,
		"insurance_fee_per_day": rt.InsuranceFeePerDay,
		"replacement_fee":       rt.ReplacementFee,
	} {
		if v.Valid && v.Decimal.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidRateTable, name)
		}
	}
	if r := rt.EarlyReturnDiscountRate; r.Valid && (r.Decimal.IsNegative() || r.Decimal.GreaterThan(maxEarlyReturnDiscountRate)) {
		return fmt.Errorf("%w: early_return_discount_rate must be within 0..1", ErrInvalidRateTable)
	}
	if r := rt.ExtensionFeeRate; r.Valid && (r.Decimal.IsNegative() || r.Decimal.GreaterThan(maxExtensionFeeRate)) {
		return fmt.Errorf("%w: extension_fee_rate must be within 0..10", ErrInvalidRateTable)
	}
	switch rt.Method() {
	case PricingMethodAuto, PricingMethodDaily, PricingMethodWeekly, PricingMethodMonthly:
	default:
		return fmt.Errorf("%w: unknown pricing method %q", ErrInvalidRateTable, rt.PricingMethod)
	}
	switch rt.DepositMode {
	case "", DepositModePerUnit, DepositModePerOrder:
	default:
		return fmt.Errorf("%w: unknown deposit mode %q", ErrInvalidRateTable, rt.DepositMode)
	}
	return nil
}
