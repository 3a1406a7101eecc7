package domain

import "errors"

var (
	ErrInvalidRange     = errors.New("invalid range: start must be before end")
	ErrInvalidQuantity  = errors.New("invalid quantity: must be greater than zero")
	ErrInvalidDuration  = errors.New("invalid rental duration")
	ErrMissingRate      = errors.New("missing rate for pricing method")
	ErrNotFound         = errors.New("not found")
	ErrInvalidRateTable = errors.New("invalid rate table")
	ErrBookingConflict  = errors.New("booking conflict: not enough units available")
	ErrInvalidStatus    = errors.New("invalid hold status")
)

// ConflictError is returned by the commit path when the re-check under lock
// fails. It matches ErrBookingConflict with errors.Is.
type ConflictError struct {
	Verdict AvailabilityVerdict
}

func (e *ConflictError) Error() string {
	return ErrBookingConflict.Error()
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}
