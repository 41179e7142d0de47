// Command server runs the FinHealth API: HTTP on cfg.Server.Port and a
// gRPC health endpoint on cfg.Server.GRPCHealthPort for orchestrators
// that probe over gRPC.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/consumers"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/kms"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/internal/infrastructure/ratelimit"
	httpapi "github.com/finhealth/finhealth/internal/interfaces/http"
	"github.com/finhealth/finhealth/internal/interfaces/http/handlers"
	"github.com/finhealth/finhealth/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("server exited: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	startupLog, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		return fmt.Errorf("startup logger: %w", err)
	}

	var appLog logger.Logger
	cfg, err := config.LoadConfig(startupLog, func(next *config.Config) {
		if appLog != nil {
			monitoring.SetLogLevel(appLog, next.Log.Level)
		}
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog, err = monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("app logger: %w", err)
	}

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLog)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			appLog.Warn(context.Background(), "tracer shutdown failed", logger.String("error", err.Error()))
		}
	}()

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLog)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()
	if err := postgres.AutoMigrate(ctx, db.GORM()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisConn, err := redis.NewConnection(ctx, &cfg.Redis, appLog)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisConn.Close()

	keySource, err := newKeySource(cfg, appLog)
	if err != nil {
		return fmt.Errorf("key source: %w", err)
	}
	material, err := keySource.Material(ctx)
	if err != nil {
		return fmt.Errorf("key material: %w", err)
	}
	cipher, err := crypto.NewFieldCipher(material)
	if err != nil {
		return fmt.Errorf("field cipher: %w", err)
	}
	tokens := crypto.NewTokenManager(&cfg.JWT, appLog)

	metrics := monitoring.NewMetrics()
	limiter := ratelimit.NewRedisRateLimiter(redisConn.Client(), &cfg.RateLimit, appLog)
	cache := redis.NewSummaryCache(redisConn, appLog)

	users := postgres.NewUserRepository(db.GORM(), appLog)
	companies := postgres.NewCompanyRepository(db.GORM(), appLog)
	financials := postgres.NewFinancialRepository(db.GORM(), appLog)
	summaries := postgres.NewSummaryRepository(db.GORM(), appLog)
	benchmarks := postgres.NewBenchmarkRepository(db.GORM(), appLog)
	reports := postgres.NewReportRepository(db.GORM(), appLog)
	audits := postgres.NewAuditRepository(db.GORM(), appLog)
	integrations := postgres.NewIntegrationRepository(db.GORM(), appLog)
	preferences := postgres.NewPreferenceRepository(db.GORM())

	checkers := map[string]handlers.DependencyChecker{
		"postgres": db,
		"redis":    redisConn,
	}

	var publisher audit.Publisher
	if cfg.Kafka.Enabled {
		producer := audit.NewKafkaProducer(&cfg.Kafka, appLog)
		defer producer.Close()
		publisher = producer
		checkers["kafka"] = producer

		archiver := consumers.NewAuditArchiver(&cfg.Kafka, audits, appLog)
		archiver.Start(ctx)
		defer archiver.Stop()
	}
	recorder := audit.NewDBRecorder(audits, publisher, appLog)

	authSvc := service.NewAuthService(users, companies, tokens, appLog)
	companySvc := service.NewCompanyService(companies, users, recorder, appLog)
	analyticsSvc := service.NewAnalyticsService(financials, summaries, benchmarks, companies, cache, metrics, appLog)
	statementSvc := service.NewStatementService(financials, summaries, reports, analyticsSvc, cache, recorder, metrics, appLog)
	settingsSvc := service.NewSettingsService(integrations, preferences, audits, cipher, recorder, appLog)
	reportSvc := service.NewReportService(reports, appLog)

	router := httpapi.NewRouter(cfg, &httpapi.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc),
		Company:   handlers.NewCompanyHandler(companySvc),
		Data:      handlers.NewDataHandler(statementSvc),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
		Reports:   handlers.NewReportHandler(reportSvc),
		Settings:  handlers.NewSettingsHandler(settingsSvc, companySvc),
		Health: handlers.NewHealthHandler(checkers, appLog),
	}, tokens, companies, limiter, tracing, metrics, appLog)

	grpcServer, err := startGRPCHealth(cfg.Server.GRPCHealthPort, appLog)
	if err != nil {
		return err
	}
	defer grpcServer.GracefulStop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-sigCh:
		appLog.Info(ctx, "Shutdown signal received", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLog.Info(ctx, "Server stopped cleanly")
	return nil
}

// newKeySource prefers Vault when it is configured; the static
// passphrase source covers development and single-node deployments.
func newKeySource(cfg *config.Config, log logger.Logger) (kms.KeySource, error) {
	if cfg.Vault.Enabled {
		return kms.NewVaultKeySource(&cfg.Vault, log)
	}
	return kms.NewStaticKeySource(&cfg.Encryption)
}

// startGRPCHealth exposes the standard grpc.health.v1 service so load
// balancers can probe readiness without speaking HTTP.
func startGRPCHealth(port int, log logger.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("grpc health listener: %w", err)
	}

	server := grpc.NewServer()
	healthSvc := health.NewServer()
	healthSvc.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthSvc)

	go func() {
		if err := server.Serve(lis); err != nil {
			log.Error(context.Background(), "gRPC health server failed", err)
		}
	}()
	log.Info(context.Background(), "gRPC health server listening", logger.Int("port", port))
	return server, nil
}
