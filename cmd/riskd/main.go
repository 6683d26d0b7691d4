package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/riskcore/internal/application/usecase"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/internal/infrastructure/adapter"
	"github.com/bibbank/riskcore/internal/infrastructure/config"
	"github.com/bibbank/riskcore/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/riskcore/internal/infrastructure/postgres"
	grpcPresentation "github.com/bibbank/riskcore/internal/presentation/grpc"
	"github.com/bibbank/riskcore/internal/presentation/rest"
	"github.com/bibbank/riskcore/pkg/auth"
	pkgkafka "github.com/bibbank/riskcore/pkg/kafka"
	"github.com/bibbank/riskcore/pkg/observability"
	pkgpostgres "github.com/bibbank/riskcore/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("riskd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting riskcore",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"minimum_wage", cfg.MinimumWage.String(),
	)

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	riskMetrics, err := observability.NewRiskMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("init risk metrics: %w", err)
	}

	// Database connection.
	pgCfg := pkgpostgres.Config{
		Host:             cfg.DB.Host,
		Port:             cfg.DB.Port,
		User:             cfg.DB.User,
		Password:         cfg.DB.Password,
		Database:         cfg.DB.Name,
		SSLMode:          cfg.DB.SSLMode,
		MaxConns:         cfg.DB.MaxConns,
		ApplicationName:  cfg.ServiceName,
		StatementTimeout: cfg.DB.StatementTimeout,
		ConnectTimeout:   cfg.DB.ConnectTimeout,
	}
	pool, err := pkgpostgres.NewPool(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := migrate(pgCfg.DSN(), cfg.MigrationsPath); err != nil {
		return err
	}

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()

	// Wire infrastructure adapters.
	repo := pgRepo.NewAssessmentRepo(pool)
	relay := kafka.NewOutboxRelay(pgRepo.NewOutboxRepo(pool), producer, kafka.RelayConfig{
		Topic:     cfg.Kafka.Topic,
		BatchSize: cfg.Kafka.OutboxBatchSize,
		Interval:  cfg.Kafka.OutboxInterval,
	}, logger)
	bureau := newBureau(cfg.Bureau, logger)

	// Wire use cases.
	evaluateUC := usecase.NewEvaluateApplicationUseCase(repo, bureau, riskMetrics, logger, cfg.MinimumWage)
	getUC := usecase.NewGetAssessmentUseCase(repo)
	listUC := usecase.NewListAssessmentsUseCase(repo)
	benefitsUC := usecase.NewCalculateBenefitsUseCase()

	jwtSvc, err := newJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	handler := grpcPresentation.NewHandler(evaluateUC, getUC, listUC, benefitsUC, logger)
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.ServerConfig{
		TLSCertFile:     cfg.GRPC.TLSCertFile,
		TLSKeyFile:      cfg.GRPC.TLSKeyFile,
		TLSClientCAFile: cfg.GRPC.TLSClientCAFile,
		Reflection:      cfg.GRPC.Reflection,
	}, handler, logger, jwtSvc)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(logger,
		rest.ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) }},
		rest.ReadinessCheck{Name: "kafka", Check: producer.Ping},
	).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		_ = relay.Run(relayCtx)
	}()

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Stopped after the servers; undelivered events stay in the outbox for
	// the next start.
	stopRelay()
	<-relayDone

	logger.Info("riskcore stopped")
	return serveErr
}

// migrate applies the embedded migrations unless MIGRATIONS_PATH points at
// an external source.
func migrate(dsn, path string) error {
	var err error
	if path != "" {
		err = pkgpostgres.RunMigrations(dsn, path)
	} else {
		err = pkgpostgres.RunMigrationsFS(dsn, pgRepo.Migrations, "migrations")
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func newBureau(cfg config.BureauConfig, logger *slog.Logger) port.CreditBureauClient {
	if cfg.BaseURL == "" {
		logger.Warn("BUREAU_BASE_URL not set, using deterministic stub bureau")
		return adapter.NewStubCreditBureauClient()
	}
	bc := adapter.DefaultCreditBureauConfig()
	bc.BaseURL = cfg.BaseURL
	bc.APIKey = cfg.APIKey
	bc.Timeout = cfg.Timeout
	bc.MaxRetries = cfg.MaxRetries
	return adapter.NewCreditBureauAdapter(bc, nil, logger)
}

// newJWTService builds a validation-only JWT service: public key preferred,
// shared secret as fallback.
func newJWTService(cfg config.JWTConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer, Audience: cfg.Audience, Leeway: cfg.Leeway}
	switch {
	case cfg.PublicKey != "":
		jwtCfg.PublicKeyPEM = cfg.PublicKey
	case cfg.PublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.Secret
	}
	return auth.NewJWTService(jwtCfg)
}
