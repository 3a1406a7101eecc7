package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/service"
)

// Handler exposes the engine services as JSON endpoints.
type Handler struct {
	availability service.AvailabilityService
	advisor      service.AdvisorService
	pricing      service.PricingService
	booking      service.BookingService
	loc          *time.Location
	ping         func(ctx context.Context) error
}

func NewHandler(
	availability service.AvailabilityService,
	advisor service.AdvisorService,
	pricing service.PricingService,
	booking service.BookingService,
	loc *time.Location,
	ping func(ctx context.Context) error,
) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		availability: availability,
		advisor:      advisor,
		pricing:      pricing,
		booking:      booking,
		loc:          loc,
		ping:         ping,
	}
}

type availabilityResponse struct {
	domain.AvailabilityVerdict
	Suggestions []domain.TimeRange `json:"suggestions,omitempty"`
}

type quoteRequest struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Quantity  int    `json:"quantity"`
	Insurance bool   `json:"insurance"`
}

type holdRequest struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
	OwnerRef string `json:"owner_ref"`
}

type earlyReturnRequest struct {
	Start      string    `json:"start"`
	End        string    `json:"end"`
	ReturnedAt time.Time `json:"returned_at"`
	Quantity   int       `json:"quantity"`
}

type extensionRequest struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	NewEnd   string `json:"new_end"`
	Quantity int    `json:"quantity"`
}

type replacementRequest struct {
	Units int `json:"units"`
}

func productID(r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func (h *Handler) queryRange(r *http.Request) (domain.TimeRange, error) {
	q := r.URL.Query()
	return domain.ParseDayRange(q.Get("start"), q.Get("end"), h.loc)
}

// queryInt reads an optional integer parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckAvailability returns the verdict and, when the request cannot be
// served, nearby windows that can.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	rng, err := h.queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	qty, ok := queryInt(r, "quantity", 1)
	if !ok {
		badRequest(w, "invalid quantity")
		return
	}

	verdict, err := h.availability.CheckAvailability(r.Context(), id, rng, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := availabilityResponse{AvailabilityVerdict: *verdict}
	if !verdict.Available {
		suggestions, err := h.advisor.SuggestDates(r.Context(), id, rng, qty, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Suggestions = suggestions
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	rng, err := h.queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	days, err := h.availability.AvailabilityCalendar(r.Context(), id, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	rng, err := h.queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	qty, ok := queryInt(r, "quantity", 1)
	if !ok {
		badRequest(w, "invalid quantity")
		return
	}
	max, ok := queryInt(r, "max", 0)
	if !ok {
		badRequest(w, "invalid max")
		return
	}

	suggestions, err := h.advisor.SuggestDates(r.Context(), id, rng, qty, max)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *Handler) ReducedQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	rng, err := h.queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.advisor.SuggestReducedQuantity(r.Context(), id, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"available_quantity": n})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var req quoteRequest
	if !decode(w, r, &req) {
		return
	}
	rng, err := domain.ParseDayRange(req.Start, req.End, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.pricing.QuoteProduct(r.Context(), id, rng, req.Quantity, domain.QuoteOptions{Insurance: req.Insurance})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) PlaceHold(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var req holdRequest
	if !decode(w, r, &req) {
		return
	}
	rng, err := domain.ParseDayRange(req.Start, req.End, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	hold := &domain.ReservationHold{
		ProductID: id,
		Range:     rng,
		Quantity:  req.Quantity,
		Status:    domain.HoldStatus(req.Status),
		OwnerRef:  req.OwnerRef,
	}
	verdict, err := h.booking.PlaceHold(r.Context(), hold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"hold": hold, "verdict": verdict})
}

func (h *Handler) EarlyReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var req earlyReturnRequest
	if !decode(w, r, &req) {
		return
	}
	scheduled, err := domain.ParseDayRange(req.Start, req.End, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	adj, err := h.pricing.EarlyReturn(r.Context(), id, domain.ReturnEvent{
		Scheduled:  scheduled,
		ReturnedAt: req.ReturnedAt,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

func (h *Handler) Extension(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var req extensionRequest
	if !decode(w, r, &req) {
		return
	}
	original, err := domain.ParseDayRange(req.Start, req.End, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	newEnd, err := time.ParseInLocation(domain.DayLayout, req.NewEnd, h.loc)
	if err != nil {
		badRequest(w, "invalid new_end date")
		return
	}

	adj, err := h.pricing.Extension(r.Context(), id, original, newEnd, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

func (h *Handler) Replacement(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var req replacementRequest
	if !decode(w, r, &req) {
		return
	}

	adj, err := h.pricing.Replacement(r.Context(), id, req.Units)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}
