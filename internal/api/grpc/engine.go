package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"rental-engine-backend/internal/api/grpc/interceptor"
	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/service"
)

// EngineHandler serves the Engine RPCs on top of the engine services.
// Request and response Structs use the same field names as the HTTP bodies.
type EngineHandler struct {
	availability service.AvailabilityService
	advisor      service.AdvisorService
	pricing      service.PricingService
	booking      service.BookingService
	loc          *time.Location
}

func NewEngineHandler(
	availability service.AvailabilityService,
	advisor service.AdvisorService,
	pricing service.PricingService,
	booking service.BookingService,
	loc *time.Location,
) *EngineHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EngineHandler{
		availability: availability,
		advisor:      advisor,
		pricing:      pricing,
		booking:      booking,
		loc:          loc,
	}
}

type engineRequest struct {
	ProductID int32  `json:"product_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Quantity  int    `json:"quantity"`
	Max       int    `json:"max"`
	Insurance bool   `json:"insurance"`
	Status    string `json:"status"`
	OwnerRef  string `json:"owner_ref"`
}

type availabilityResponse struct {
	domain.AvailabilityVerdict
	Suggestions []domain.TimeRange `json:"suggestions,omitempty"`
}

// decode reads the Struct into an engineRequest and parses its day range.
func (h *EngineHandler) decode(in *structpb.Struct) (engineRequest, domain.TimeRange, error) {
	var req engineRequest
	raw, err := protojson.Marshal(in)
	if err != nil {
		return req, domain.TimeRange{}, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, domain.TimeRange{}, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if req.ProductID <= 0 {
		return req, domain.TimeRange{}, status.Error(codes.InvalidArgument, "product_id is required")
	}
	rng, err := domain.ParseDayRange(req.Start, req.End, h.loc)
	if err != nil {
		return req, domain.TimeRange{}, err
	}
	return req, rng, nil
}

// toStruct renders v through its JSON encoding.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func callerService(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(interceptor.CallerServiceKey); len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func (h *EngineHandler) CheckAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, rng, err := h.decode(in)
	if err != nil {
		return nil, err
	}
	verdict, err := h.availability.CheckAvailability(ctx, req.ProductID, rng, req.Quantity)
	if err != nil {
		return nil, err
	}
	resp := availabilityResponse{AvailabilityVerdict: *verdict}
	if !verdict.Available {
		suggestions, err := h.advisor.SuggestDates(ctx, req.ProductID, rng, req.Quantity, 0)
		if err != nil {
			return nil, err
		}
		resp.Suggestions = suggestions
	}
	return toStruct(resp)
}

func (h *EngineHandler) SuggestDates(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, rng, err := h.decode(in)
	if err != nil {
		return nil, err
	}
	suggestions, err := h.advisor.SuggestDates(ctx, req.ProductID, rng, req.Quantity, req.Max)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []domain.TimeRange{}
	}
	return toStruct(map[string]any{"suggestions": suggestions})
}

func (h *EngineHandler) SuggestReducedQuantity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, rng, err := h.decode(in)
	if err != nil {
		return nil, err
	}
	n, err := h.advisor.SuggestReducedQuantity(ctx, req.ProductID, rng)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]int{"available_quantity": n})
}

func (h *EngineHandler) Quote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, rng, err := h.decode(in)
	if err != nil {
		return nil, err
	}
	quote, err := h.pricing.QuoteProduct(ctx, req.ProductID, rng, req.Quantity, domain.QuoteOptions{Insurance: req.Insurance})
	if err != nil {
		return nil, err
	}
	return toStruct(quote)
}

// PlaceHold commits a hold. A failed re-check returns ResourceExhausted with
// the verdict attached as a Struct detail.
func (h *EngineHandler) PlaceHold(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, rng, err := h.decode(in)
	if err != nil {
		return nil, err
	}
	hold := &domain.ReservationHold{
		ProductID: req.ProductID,
		Range:     rng,
		Quantity:  req.Quantity,
		Status:    domain.HoldStatus(req.Status),
		OwnerRef:  req.OwnerRef,
	}
	verdict, err := h.booking.PlaceHold(ctx, hold)
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		st := status.New(codes.ResourceExhausted, err.Error())
		if detail, encErr := toStruct(conflict.Verdict); encErr == nil {
			if withDetail, detErr := st.WithDetails(detail); detErr == nil {
				st = withDetail
			}
		}
		return nil, st.Err()
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "hold placed", "caller", callerService(ctx), "product_id", hold.ProductID, "hold_id", hold.ID)
	return toStruct(map[string]any{"hold": hold, "verdict": verdict})
}
