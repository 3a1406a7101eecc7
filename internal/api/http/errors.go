package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/locker"
	"rental-engine-backend/internal/logger"
)

type errorBody struct {
	Code    string                      `json:"code"`
	Message string                      `json:"message"`
	Verdict *domain.AvailabilityVerdict `json:"verdict,omitempty"`
}

// statusFor maps engine sentinels onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest, "invalid_duration"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrBookingConflict):
		return http.StatusConflict, "booking_conflict"
	case errors.Is(err, domain.ErrMissingRate):
		return http.StatusUnprocessableEntity, "missing_rate"
	case errors.Is(err, domain.ErrInvalidRateTable):
		return http.StatusUnprocessableEntity, "invalid_rate_table"
	case errors.Is(err, locker.ErrNotAcquired):
		return http.StatusServiceUnavailable, "busy"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	body := errorBody{Code: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		body.Message = "internal error"
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body.Verdict = &conflict.Verdict
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: msg})
}
