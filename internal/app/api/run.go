package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	petsmemory "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/persistence/postgres"
	petsworkflows "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/workflows"
	petsapp "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application"
	petsports "github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-pets-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-pets-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

const shutdownTimeout = 10 * time.Second

// Run boots the pets HTTP API with observability, storage, and workflows wired,
// and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	const serviceName = "pets-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, observabilitySettings(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer flushObservability(instruments, shutdown)
	logger := instruments.Logger

	petService, shared, cleanup := BuildPetService(ctx, cfg, instruments)
	defer cleanup()

	petWorkflows, closeWorkflows := selectPetWorkflows(cfg, shared, petService, instruments)
	defer closeWorkflows()

	router := NewRouter(RouterDeps{
		ServiceName:    serviceName,
		Logger:         logger,
		Pets:           petService,
		PetWorkflows:   petWorkflows,
		MetricsHandler: instruments.MetricsHandler,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("pets API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("pets API server exited: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("pets API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("pets API stopped with error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// selectPetWorkflows prefers Temporal, but only when the store is shared with the worker.
// A worker falling back to its own in-memory store would create pets this process never sees.
func selectPetWorkflows(cfg Config, sharedStore bool, service petsports.Service, instruments *platformobservability.Instruments) (petsports.WorkflowOrchestrator, func()) {
	logger := instruments.Logger
	inline := petsworkflows.NewInlinePetWorkflows(service)
	if !sharedStore {
		if !cfg.TemporalDisabled {
			logger.Warn("Temporal workflows skipped because pets are kept in memory, creating pets inline")
		}
		return inline, func() {}
	}
	temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client")
	if err != nil {
		logger.Warn("Temporal workflows unavailable, creating pets inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return petsworkflows.NewTemporalPetWorkflows(temporalClient), temporalClient.Close
}

// Migrate creates or widens the database schema. It needs a reachable PostgreSQL.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return migrations.Run(ctx, db)
}

// BuildPetService wires the pets application service on PostgreSQL when configured and
// reachable, falling back to the in-memory store otherwise. shared reports whether the
// store is PostgreSQL and so visible to other processes. The service is wrapped with
// logging, tracing and metrics.
func BuildPetService(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (service petsports.Service, shared bool, cleanup func()) {
	logger := instruments.Logger
	policy := pagination.Policy{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}

	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	core := buildCoreService(ctx, db, policy, logger)
	service = petsobs.New(
		core,
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	return service, db != nil, cleanup
}

func buildCoreService(ctx context.Context, db *gorm.DB, policy pagination.Policy, logger *slog.Logger) *petsapp.Service {
	if db != nil {
		if err := migrations.Run(ctx, db); err != nil {
			logger.Warn("failed to migrate postgres schema", slog.String("error", err.Error()))
		}
		logger.Info("pet store configured with postgres")
		return petsapp.NewService(
			petspostgres.NewStore(db),
			petsapp.WithIdempotencyStore(petspostgres.NewIdempotencyStore(db)),
			petsapp.WithPagination(policy),
		)
	}
	return petsapp.NewService(
		petsmemory.NewStore(),
		petsapp.WithIdempotencyStore(petsmemory.NewIdempotencyStore()),
		petsapp.WithPagination(policy),
	)
}

// ConnectTemporalClient dials Temporal with tracing and structured logging, unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:     cfg.TemporalAddress,
		Namespace:    cfg.TemporalNamespace,
		Logger:       workerlog.NewStructuredLogger(instruments.Logger),
		Interceptors: []interceptor.ClientInterceptor{tracingInterceptor},
	}
	return client.Dial(options)
}

func observabilitySettings(cfg Config) platformobservability.Settings {
	return platformobservability.Settings{
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
		Prometheus:  cfg.MetricsEnabled,
	}
}

// InitObservability initialises observability for a process other than the API using the shared settings.
func InitObservability(ctx context.Context, serviceName string, cfg Config) (*platformobservability.Instruments, func(), error) {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, observabilitySettings(cfg))
	if err != nil {
		return nil, nil, err
	}
	return instruments, func() { flushObservability(instruments, shutdown) }, nil
}

func flushObservability(instruments *platformobservability.Instruments, shutdown func(context.Context) error) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
	}
}
