package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	grpcapi "rental-engine-backend/internal/api/grpc"
	httpapi "rental-engine-backend/internal/api/http"
	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/locker"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository/cache"
	"rental-engine-backend/internal/repository/postgres"
	"rental-engine-backend/internal/security"
	"rental-engine-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Engine configuration", "tax_rate", cfg.TaxRate().String(), "timezone", cfg.Location().String(), "locker", cfg.Locker)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	rateTables := cache.NewRateTableCache(store.RateTableRepository, cfg.RateTableTTL())

	// Initialize Locker
	var locks locker.Locker
	switch cfg.Locker {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("Failed to ping redis", "error", err, "addr", cfg.Redis.Addr)
			log.Fatalf("Failed to ping redis: %v", err)
		}
		locks = locker.NewRedisLocker(client, locker.RedisOptions{TTL: cfg.LockTTL()})
		logger.Info("Using redis product locks", "addr", cfg.Redis.Addr)
	default:
		locks = locker.NewMemoryLocker()
		logger.Info("Using in-process product locks")
	}

	// Initialize Services
	availabilitySvc := service.NewAvailabilityService(store.StockRepository, store.HoldRepository)
	advisorSvc := service.NewAdvisorService(store.StockRepository, store.HoldRepository, rateTables, service.AdvisorOptions{
		ForwardDays:    cfg.Engine.ForwardProbeDays,
		BackwardDays:   cfg.Engine.BackwardProbeDays,
		MaxSuggestions: cfg.Engine.MaxSuggestions,
		Location:       cfg.Location(),
	}, time.Now)
	pricingSvc := service.NewPricingService(rateTables, cfg.TaxRate())
	bookingSvc := service.NewBookingService(store.StockRepository, store.HoldRepository, locks, time.Now)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer)

	// Set up HTTP server
	handler := httpapi.NewHandler(availabilitySvc, advisorSvc, pricingSvc, bookingSvc, cfg.Location(), db.PingContext)
	limiter := httpapi.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy, cfg.RateLimitIdle())
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Set up gRPC server
	engine := grpcapi.NewEngineHandler(availabilitySvc, advisorSvc, pricingSvc, bookingSvc, cfg.Location())
	grpcServer := grpcapi.NewServer(tokenManager, db.PingContext, engine)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	probe := time.NewTicker(15 * time.Second)
	defer probe.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

loop:
	for {
		select {
		case <-probe.C:
			grpcServer.Probe(context.Background())
		case <-sigChan:
			break loop
		}
	}

	// Graceful shutdown
	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.Stop()
	logger.Info("Rental Engine stopped. Goodbye!")
}
