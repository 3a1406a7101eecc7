package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AvailabilityVerdict is the resolver's answer for one request.
type AvailabilityVerdict struct {
	Available         bool      `json:"available"`
	AvailableQuantity int       `json:"available_quantity"`
	RequestedQuantity int       `json:"requested_quantity"`
	TotalQuantity     int       `json:"total_quantity"`
	BindingRange      TimeRange `json:"binding_range"`
}

// DayAvailability is the lowest free quantity during one calendar day.
type DayAvailability struct {
	Date              string `json:"date"`
	AvailableQuantity int    `json:"available_quantity"`
}

type LineItemKind string

const (
	LineItemBase        LineItemKind = "base"
	LineItemFee         LineItemKind = "fee"
	LineItemDeposit     LineItemKind = "deposit"
	LineItemTax         LineItemKind = "tax"
	LineItemDiscount    LineItemKind = "discount"
	LineItemExtension   LineItemKind = "extension"
	LineItemReplacement LineItemKind = "replacement"
)

// LineItem is one auditable pricing component.
type LineItem struct {
	Kind        LineItemKind    `json:"kind"`
	Description string          `json:"description"`
	Units       int             `json:"units"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type QuoteOptions struct {
	Insurance bool `json:"insurance"`
}

const FeeInsurance = "insurance"

type Quote struct {
	BasePrice decimal.Decimal            `json:"base_price"`
	TotalDays int                        `json:"total_days"`
	Subtotal  decimal.Decimal            `json:"subtotal"`
	Deposit   decimal.Decimal            `json:"deposit"`
	Fees      map[string]decimal.Decimal `json:"fees"`
	Tax       decimal.Decimal            `json:"tax"`
	Total     decimal.Decimal            `json:"total"`
	Breakdown []LineItem                 `json:"breakdown"`
}

// Adjustment is the result of a post-hoc recompute (early return,
// extension, replacement). Amounts are negative for credits.
type Adjustment struct {
	Days     int             `json:"days"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Lines    []LineItem      `json:"lines"`
}

// ReturnEvent describes an actual return time against the booked window.
type ReturnEvent struct {
	Scheduled  TimeRange `json:"scheduled"`
	ReturnedAt time.Time `json:"returned_at"`
	Quantity   int       `json:"quantity"`
}
