package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenbank/mortgage-engine/internal/application/usecase"
	"github.com/lumenbank/mortgage-engine/internal/domain/service"
	"github.com/lumenbank/mortgage-engine/internal/infrastructure/config"
	"github.com/lumenbank/mortgage-engine/internal/infrastructure/kafka"
	pgRepo "github.com/lumenbank/mortgage-engine/internal/infrastructure/postgres"
	"github.com/lumenbank/mortgage-engine/internal/infrastructure/scheduler"
	grpcPresentation "github.com/lumenbank/mortgage-engine/internal/presentation/grpc"
	"github.com/lumenbank/mortgage-engine/internal/presentation/rest"
	"github.com/lumenbank/mortgage-engine/pkg/auth"
	pkgkafka "github.com/lumenbank/mortgage-engine/pkg/kafka"
	"github.com/lumenbank/mortgage-engine/pkg/observability"
	pkgpostgres "github.com/lumenbank/mortgage-engine/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	cfg.Validate()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "json",
	})

	logger.Info("starting mortgage-engine",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.DB)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if version, migErr := pkgpostgres.Migrate(cfg.DB.DSN(), "file://"+cfg.MigrationsPath); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	} else {
		logger.Info("schema up to date", "version", version)
	}

	// Infrastructure adapters.
	accountRepo := pgRepo.NewAccountRepo(pool)
	journal := pgRepo.NewPostingJournal(pool)
	balanceStore := pgRepo.NewBalanceStore(pool)
	scheduleStore := pgRepo.NewScheduleStore(pool)
	parameterStore := pgRepo.NewParameterStore(pool)
	flagStore := pgRepo.NewFlagStore(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:    cfg.Kafka.Brokers,
		EventTopic: cfg.Kafka.EventTopic,
	})
	defer func() { _ = kafkaProducer.Close() }() //nolint:errcheck
	publisher := kafka.NewEventPublisher(kafkaProducer, logger)

	// Domain services.
	calc := service.NewAmortizationCalculator()
	schedule := service.NewScheduleCoordinator()
	engine := service.NewLifecycleEngine(
		service.NewInterestAccrualEngine(),
		service.NewBillingCycleStateMachine(calc),
		service.NewRepaymentAllocator(),
		service.NewDelinquencyMonitor(schedule),
		schedule,
	)

	// Use cases.
	openUC := usecase.NewOpenAccountUseCase(accountRepo, logger)
	activateUC := usecase.NewActivateAccountUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	paymentUC := usecase.NewProcessPaymentUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	tickUC := usecase.NewRunScheduledTickUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	changeUC := usecase.NewChangeParametersUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	convertUC := usecase.NewConvertProductUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	closeUC := usecase.NewCloseAccountUseCase(
		accountRepo, balanceStore, parameterStore, flagStore,
		journal, scheduleStore, engine, publisher, logger,
	)
	balancesUC := usecase.NewGetBalancesUseCase(accountRepo, balanceStore, logger)

	// Metrics.
	metrics := observability.NewEngineMetrics(cfg.ServiceName)
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
		Port:        cfg.HTTPPort,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtCfg := auth.JWTConfig{Issuer: "lumen-gateway"}
	switch {
	case cfg.JWT.PublicKeyPath != "":
		keyData, loadErr := auth.LoadKeyFromFile(cfg.JWT.PublicKeyPath)
		if loadErr != nil {
			logger.Error("failed to load JWT public key file", "error", loadErr)
			os.Exit(1)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.JWT.Secret
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	handler := grpcPresentation.NewMortgageHandler(
		openUC, activateUC, paymentUC, tickUC, changeUC, convertUC, closeUC, balancesUC,
		metrics, logger,
	)
	grpcServer := grpcPresentation.NewServer(handler, logger, jwtSvc)

	// Schedule runner.
	runner := scheduler.NewRunner(
		scheduleStore, tickUC, metrics,
		observability.ComponentLogger(logger, "scheduler"),
		time.Duration(cfg.TickIntervalSeconds)*time.Second,
		cfg.TickBatchSize,
	)
	go runner.Run(ctx)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(pool, logger)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("mortgage-engine stopped")
}
