package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rental-engine-backend/internal/api/grpc/interceptor"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/security"
)

// ServiceName is the health service name reported for the engine.
const ServiceName = "rental.engine.v1.Engine"

// Server wraps the gRPC server with its health reporter.
type Server struct {
	*grpc.Server
	health *health.Server
	check  func(ctx context.Context) error
}

// NewServer builds a gRPC server exposing the engine, health and reflection.
// check, if set, is probed by Probe to flip the health status.
func NewServer(tm security.TokenManager, check func(ctx context.Context) error, engine EngineServer) *Server {
	auth := interceptor.NewAuthInterceptor(tm)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), auth.Unary()),
	)

	if engine != nil {
		RegisterEngineServer(s, engine)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Register reflection service for grpcurl
	reflection.Register(s)

	return &Server{Server: s, health: hs, check: check}
}

// Probe runs the dependency check and updates the reported status.
func (s *Server) Probe(ctx context.Context) {
	if s.check == nil {
		return
	}
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.check(ctx); err != nil {
		logger.WarnContext(ctx, "health probe failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.health.SetServingStatus("", st)
}

// Stop marks the server as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
