package domain

import "time"

type HoldStatus string

const (
	HoldStatusCart      HoldStatus = "CART"
	HoldStatusPending   HoldStatus = "PENDING"
	HoldStatusApproved  HoldStatus = "APPROVED"
	HoldStatusActive    HoldStatus = "ACTIVE"
	HoldStatusExtended  HoldStatus = "EXTENDED"
	HoldStatusCancelled HoldStatus = "CANCELLED"
	HoldStatusReturned  HoldStatus = "RETURNED"
	HoldStatusRejected  HoldStatus = "REJECTED"
	HoldStatusExpired   HoldStatus = "EXPIRED"
)

// CountingHoldStatuses are the statuses that consume stock.
var CountingHoldStatuses = []HoldStatus{
	HoldStatusCart,
	HoldStatusPending,
	HoldStatusApproved,
	HoldStatusActive,
	HoldStatusExtended,
}

func (s HoldStatus) CountsAgainstStock() bool {
	for _, c := range CountingHoldStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// ReservationHold is one unit of demand against stock during a window.
type ReservationHold struct {
	ID        int32      `json:"id"`
	ProductID int32      `json:"product_id"`
	Range     TimeRange  `json:"range"`
	Quantity  int        `json:"quantity"`
	Status    HoldStatus `json:"status"`
	OwnerRef  string     `json:"owner_ref"`
	CreatedOn time.Time  `json:"created_on"`
}

// StockLevel is how many units of a product exist.
type StockLevel struct {
	ProductID     int32 `json:"product_id"`
	TotalQuantity int   `json:"total_quantity"`
}
