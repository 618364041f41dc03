package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gadgetarian/service-tracker/internal/api/http"
	"github.com/gadgetarian/service-tracker/internal/api/http/handlers"
	"github.com/gadgetarian/service-tracker/internal/auth"
	"github.com/gadgetarian/service-tracker/internal/client"
	"github.com/gadgetarian/service-tracker/internal/config"
	"github.com/gadgetarian/service-tracker/internal/events"
	"github.com/gadgetarian/service-tracker/internal/notification"
	"github.com/gadgetarian/service-tracker/internal/observability"
	"github.com/gadgetarian/service-tracker/internal/persistence"
	"github.com/gadgetarian/service-tracker/internal/repository"
	"github.com/gadgetarian/service-tracker/internal/seed"
	"github.com/gadgetarian/service-tracker/internal/service"
	"github.com/gadgetarian/service-tracker/internal/worker"
)

const metricsNamespace = "service_tracker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics(metricsNamespace)
	readiness := map[string]handlers.Pinger{}

	var serviceRepo repository.ServiceRepository
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		serviceRepo = repository.NewPostgresServiceRepository(pg.Pool)
		readiness["postgres"] = pg
	default:
		serviceRepo = repository.NewMemoryServiceRepository()
	}

	var subscriptions repository.SubscriptionRepository
	switch cfg.Notification.SubscriptionBackend {
	case config.BackendRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		subscriptions = repository.NewRedisSubscriptionRepository(rdb.Client, repository.DefaultSubscriptionKey)
		readiness["redis"] = rdb
	default:
		subscriptions = repository.NewMemorySubscriptionRepository()
	}

	var dispatcher events.Dispatcher
	if cfg.Events.AsyncWorkers > 0 {
		pooled, err := events.NewPooledDispatcher(cfg.Events.AsyncWorkers, logger)
		if err != nil {
			logger.Fatal("failed to start event pool", zap.Error(err))
		}
		defer pooled.Close()
		dispatcher = pooled
	} else {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}

	validator, err := service.TransitionValidatorFor(cfg.Store.StatusTransitions)
	if err != nil {
		logger.Fatal("invalid transition mode", zap.Error(err))
	}

	if cfg.Store.Seed {
		loaded, err := seed.Load(ctx, serviceRepo)
		if err != nil {
			logger.Fatal("failed to seed services", zap.Error(err))
		}
		if loaded > 0 {
			logger.Info("seeded service tickets", zap.Int("count", loaded))
		}
	}

	store := service.NewServiceStore(service.StoreDependencies{
		Repo:            serviceRepo,
		Dispatcher:      dispatcher,
		Validator:       validator,
		Metrics:         metrics,
		Logger:          logger.Named("store"),
		CodeMaxAttempts: cfg.Store.CodeMaxAttempts,
	})

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Subscriptions: subscriptions,
		Notifier:      newNotifier(cfg.Notification, logger),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger.Named("notifications"),
	})
	worker.StartNotificationWorker(dispatcher, notificationService, logger)

	gate, err := auth.NewGate(cfg.Auth.BcryptCost, auth.DefaultCredentials()...)
	if err != nil {
		logger.Fatal("failed to build credential gate", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(gate, tokens),
		Services:       handlers.NewServicesHandler(store),
		Public:         handlers.NewPublicHandler(store, notificationService),
		Technicians:    handlers.NewTechniciansHandler(client.NewTechnicianClient(cfg.Technician)),
		AuthMiddleware: auth.NewMiddleware(tokens, gate),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newNotifier(cfg config.NotificationConfig, logger *zap.Logger) notification.PlatformNotifier {
	permission := notification.ParsePermission(cfg.Permission)
	if cfg.WebhookURL != "" {
		return notification.NewWebhookNotifier(cfg.WebhookURL, permission, nil)
	}
	return notification.NewLogNotifier(logger.Named("notifier"), permission)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
