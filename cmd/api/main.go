package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-service/internal/api/http"
	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/notify"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/realtime"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/storage"
	"github.com/spec-kit/marketplace-service/internal/worker"
)

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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	store := cache.NewRedisStore(rdb.Client)
	readCache := cache.New(store, cfg.Cache.TTL(), logger, metrics)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	subRepo := repository.NewSubscriptionRepository(pool)
	logRepo := repository.NewNotificationLogRepository(pool)
	supportRepo := repository.NewSupportRepository(pool)

	pushSender, err := notify.NewFCMSender(ctx, cfg.Push)
	if err != nil {
		logger.Warn("push sender disabled", zap.Error(err))
	}
	webPusher := notify.NewWebPusher(cfg.WebPush)
	botSender := notify.NewBotSender(cfg.Bot)
	hub := realtime.NewHub(logger)

	dispatcher := notify.NewDispatcher(notify.Deps{
		Push:    pushSender,
		Web:     webPusher,
		Hub:     hub,
		Bot:     botSender,
		Subs:    subRepo,
		Logs:    logRepo,
		Logger:  logger,
		Metrics: metrics,
	})

	uploads := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.App.PublicBaseURL)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Notifier: dispatcher,
		Logger:   logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:        jobRepo,
		Cache:          readCache,
		Notifier:       dispatcher,
		Photos:         uploads,
		Logger:         logger,
		CollectorTopic: cfg.Push.CollectorTopic,
	})
	tokenService := service.NewTokenService(service.TokenDependencies{
		TokenRepo: tokenRepo,
		Codes:     service.NewCodeGenerator(tokenRepo),
		Cache:     readCache,
		Notifier:  dispatcher,
		Logger:    logger,
	})
	deviceService := service.NewDeviceService(userRepo, pushSender, logger, cfg.Push)
	subscriptionService := service.NewSubscriptionService(subRepo)
	notificationService := service.NewNotificationService(dispatcher, logRepo)
	supportService := service.NewSupportService(supportRepo, dispatcher)

	cleanup := worker.NewCleanupWorker(tokenRepo, readCache, logger, cfg.Cleanup)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("failed to start cleanup worker", zap.Error(err))
	}
	defer cleanup.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(rdb),
		Auth:            handlers.NewAuthHandler(authService),
		Users:           handlers.NewUsersHandler(authService, uploads),
		Jobs:            handlers.NewJobsHandler(jobService, uploads),
		Tokens:          handlers.NewTokensHandler(tokenService),
		Devices:         handlers.NewDevicesHandler(deviceService),
		Subscriptions:   handlers.NewSubscriptionsHandler(subscriptionService),
		Notifications:   handlers.NewNotificationsHandler(notificationService),
		Support:         handlers.NewSupportHandler(supportService, uploads),
		Hub:             hub,
		AuthMiddleware:  authMiddleware,
		MetricsGatherer: registry,
		UploadsDir:      cfg.Uploads.Dir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	dispatcher.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
