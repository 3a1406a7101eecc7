package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rental-engine-backend/internal/security"
)

// NewRouter wires the engine endpoints. Route names are the keys of
// config.EndpointSecurityConfig.
func NewRouter(h *Handler, tm security.TokenManager, limiter *IPRateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger, Recover)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1/products/{id:[0-9]+}").Subrouter()
	if limiter != nil {
		api.Use(limiter.Middleware)
	}
	api.Use(Authenticate(tm))

	api.HandleFunc("/availability", h.CheckAvailability).Methods(http.MethodGet).Name("availability")
	api.HandleFunc("/calendar", h.Calendar).Methods(http.MethodGet).Name("calendar")
	api.HandleFunc("/suggestions", h.Suggestions).Methods(http.MethodGet).Name("suggestions")
	api.HandleFunc("/reduced-quantity", h.ReducedQuantity).Methods(http.MethodGet).Name("reduced_quantity")
	api.HandleFunc("/quote", h.Quote).Methods(http.MethodPost).Name("quote")
	api.HandleFunc("/holds", h.PlaceHold).Methods(http.MethodPost).Name("place_hold")
	api.HandleFunc("/adjustments/early-return", h.EarlyReturn).Methods(http.MethodPost).Name("early_return")
	api.HandleFunc("/adjustments/extension", h.Extension).Methods(http.MethodPost).Name("extension")
	api.HandleFunc("/adjustments/replacement", h.Replacement).Methods(http.MethodPost).Name("replacement")

	return r
}
