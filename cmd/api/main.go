package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/analytics"
	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/triage"
	"github.com/spec-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var complaintRepo repository.ComplaintRepository
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		complaintRepo = repository.NewPostgresComplaintRepository(pg.Pool)
	} else {
		complaintRepo = repository.NewMemoryComplaintRepository()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		reportCache analytics.Cache
		cachePinger handlers.Pinger
	)
	if redis.Enabled() {
		reportCache = analytics.NewRedisCache(redis.Client, cfg.Analytics.CacheTTL())
		cachePinger = redis
	}

	complaintClassifier, err := classifier.New(cfg.Classifier, logger)
	if err != nil {
		logger.Fatal("failed to configure classifier", zap.Error(err))
	}

	engine := triage.NewEngine(triage.SLAPolicy{
		HighHours:   cfg.SLA.HighHours,
		MediumHours: cfg.SLA.MediumHours,
		LowHours:    cfg.SLA.LowHours,
	})
	dispatcher := events.NewInMemoryDispatcher()

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		Classifier:    complaintClassifier,
		Engine:        engine,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	analyticsService := service.NewAnalyticsService(complaintRepo, reportCache, cfg.Analytics.TopIssues, logger, nil)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	monitor, err := worker.NewSLAMonitor(cfg.SLA.MonitorSchedule, complaintRepo, dispatcher, logger)
	if err != nil {
		logger.Fatal("invalid SLA monitor schedule", zap.Error(err))
	}
	worker.Start(ctx, notificationService, monitor)

	var tokens *auth.TokenManager
	if cfg.Auth.Enabled() {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.App.Name)
		logger.Info("operator guard enabled on mutating complaint routes")
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, handlers.HealthDependencies{
			Store:      complaintRepo,
			Cache:      cachePinger,
			Classifier: complaintClassifier,
			Timeout:    time.Duration(cfg.Classifier.ReadyTimeoutSeconds) * time.Second,
		}),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
