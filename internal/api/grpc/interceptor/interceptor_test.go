package interceptor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/locker"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/security"
)

var tokens = security.NewTokenManager("0123456789abcdef0123456789abcdef", "rental-engine")

func withToken(t *testing.T, scope string) context.Context {
	t.Helper()
	token, err := tokens.GenerateServiceToken("order-service", scope, time.Hour)
	require.NoError(t, err)
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func TestAuthInterceptor(t *testing.T) {
	unary := NewAuthInterceptor(tokens).Unary()

	var seen context.Context
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = ctx
		return "ok", nil
	}

	t.Run("Public method", func(t *testing.T) {
		resp, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("Missing token", func(t *testing.T) {
		_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/rental.engine.v1.Engine/PlaceHold"}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Insufficient scope", func(t *testing.T) {
		_, err := unary(withToken(t, "read"), nil, &grpc.UnaryServerInfo{FullMethod: "/rental.engine.v1.Engine/PlaceHold"}, handler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Caller injected", func(t *testing.T) {
		md, _ := metadata.FromIncomingContext(withToken(t, "write"))
		md.Set(CallerServiceKey, "spoofed")
		ctx := metadata.NewIncomingContext(context.Background(), md)
		_, err := unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/rental.engine.v1.Engine/PlaceHold"}, handler)
		require.NoError(t, err)
		got, _ := metadata.FromIncomingContext(seen)
		assert.Equal(t, []string{"order-service"}, got.Get(CallerServiceKey))
		assert.Equal(t, []string{"spoofed"}, md.Get(CallerServiceKey))
	})
}

func TestLoggingInterceptor(t *testing.T) {
	unary := Logging()
	info := &grpc.UnaryServerInfo{FullMethod: "/rental.engine.v1.Engine/Quote"}

	t.Run("Request id propagated", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDKey, "req-1"))
		_, err := unary(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			id, ok := logger.RequestID(ctx)
			assert.True(t, ok)
			assert.Equal(t, "req-1", id)
			return nil, nil
		})
		assert.NoError(t, err)
	})

	t.Run("Panic recovered", func(t *testing.T) {
		_, err := unary(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
			panic("boom")
		})
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("Domain error mapped", func(t *testing.T) {
		_, err := unary(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
			return nil, fmt.Errorf("quote: %w", domain.ErrMissingRate)
		})
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrInvalidRange, codes.InvalidArgument},
		{domain.ErrInvalidStatus, codes.InvalidArgument},
		{domain.ErrNotFound, codes.NotFound},
		{&domain.ConflictError{}, codes.ResourceExhausted},
		{domain.ErrInvalidRateTable, codes.FailedPrecondition},
		{locker.ErrNotAcquired, codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.Aborted, "already a status"), codes.Aborted},
		{fmt.Errorf("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)))
		})
	}
}
