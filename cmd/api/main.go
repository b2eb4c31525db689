package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zatekoja/dentalbooking/backend/internal/adapters/cache"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/catalog"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/database"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/events"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/search"
	"github.com/zatekoja/dentalbooking/backend/internal/api/handlers"
	"github.com/zatekoja/dentalbooking/backend/internal/api/middleware"
	"github.com/zatekoja/dentalbooking/backend/internal/api/routes"
	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/clinicapi"
	kafkaclient "github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/kafka"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	"github.com/zatekoja/dentalbooking/backend/pkg/config"
)

func main() {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			observability.ForwardLogsToOTel(cfg.OTEL.ServiceName)
			logger = observability.GetLogger()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Clinic platform clients
	clientOpts := clinicapi.Options{Timeout: cfg.Services.RequestTimeout, Metrics: metrics}
	authService := clinicapi.NewAuthServiceClient(cfg.Services.AuthServiceURL, clientOpts)
	clinicService := clinicapi.NewClinicServiceClient(cfg.Services.ClinicServiceURL, clientOpts)
	patientService := clinicapi.NewPatientServiceClient(cfg.Services.PatientServiceURL, clientOpts)

	facilityCatalog, err := catalog.NewStaticCatalog()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load facility catalog")
	}

	// Redis backs the facility cache, remembered locations and the event bus.
	// Without it both caches fall back to process memory.
	var redisClient *redis.Client
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
		}
	}
	if cacheProvider == nil {
		memory := cache.NewMemoryCache()
		go memory.Run(ctx, time.Minute)
		cacheProvider = memory
	}

	// Booking audit trail
	var orchestratorOpts []services.BookingOrchestratorOption
	orchestratorOpts = append(orchestratorOpts, services.WithBookingMetrics(metrics))
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			logger.Warn().Err(err).Msg("audit database unavailable, booking attempts will not be recorded")
		} else {
			defer pgClient.Close()
			audit := database.NewBookingAuditAdapter(pgClient)
			if err := audit.EnsureSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to ensure booking audit schema")
			}
			orchestratorOpts = append(orchestratorOpts, services.WithBookingAudit(audit))
		}
	}

	// Booking events
	var sseHandler *handlers.SSEHandler
	var publisher providers.EventPublisher
	switch cfg.Events.Backend {
	case "redis":
		if redisClient == nil {
			logger.Warn().Msg("EVENTS_BACKEND=redis but Redis is unavailable, booking events disabled")
			break
		}
		bus := events.NewRedisEventBus(redisClient)
		publisher = bus
		sseHandler = handlers.NewSSEHandler(bus)
	case "kafka":
		writer, err := kafkaclient.NewWriter(&cfg.Events)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to configure Kafka writer, booking events disabled")
			break
		}
		publisher = events.NewKafkaEventPublisher(writer)
	}
	if publisher != nil {
		defer publisher.Close()
		orchestratorOpts = append(orchestratorOpts, services.WithEventPublisher(publisher))
		logger.Info().Str("backend", cfg.Events.Backend).Msg("booking events enabled")
	}

	// Catalog search index
	var searchRepo repositories.FacilitySearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("Typesense unavailable, catalog search runs in memory")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to init Typesense schema")
			} else if err := adapter.Index(ctx, facilityCatalog.List()); err != nil {
				logger.Warn().Err(err).Msg("failed to index facility catalog")
			} else {
				searchRepo = adapter
			}
		}
	}

	// Initialize services
	resolver := services.NewFacilityResolver(facilityCatalog, authService, cacheProvider, cfg.Booking.FacilityCacheTTLSeconds, metrics)
	availability := services.NewAvailabilityLoader(clinicService)
	orchestrator := services.NewBookingOrchestrator(patientService, patientService, orchestratorOpts...)
	locations := services.NewLocationService(cacheProvider, cfg.Booking.LocationTTLSeconds)
	listing := services.NewFacilityListingService(facilityCatalog, authService, searchRepo, locations, cfg.Booking.NearbyRadiusKm, cfg.Booking.PageSize)

	sessions := services.NewSessionStore(resolver, availability, orchestrator, cfg.Booking.SessionTTL)
	go sessions.Run(ctx)

	// Initialize handlers
	facilityHandler := handlers.NewFacilityHandler(resolver, listing, availability)
	bookingHandler := handlers.NewBookingHandler(orchestrator, sessions)
	locationHandler := handlers.NewLocationHandler(locations)

	// Set up router
	router := routes.NewRouter(
		facilityHandler,
		bookingHandler,
		locationHandler,
		sseHandler,
		middleware.NewRateLimiter(cfg.Booking.RateLimitPerMinute, cfg.Booking.RateLimitBurst),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	// Create HTTP server. WriteTimeout stays zero so booking streams are not
	// cut off; they end when ctx is cancelled on shutdown.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	// Stop the session sweeper, close open sessions and end booking streams
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
