package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/asset-service/internal/api/http"
	"github.com/spec-kit/asset-service/internal/api/http/handlers"
	"github.com/spec-kit/asset-service/internal/audit"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/config"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/observability"
	"github.com/spec-kit/asset-service/internal/persistence"
	"github.com/spec-kit/asset-service/internal/repository"
	"github.com/spec-kit/asset-service/internal/service"
	"github.com/spec-kit/asset-service/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	broadcaster := events.NewBroadcaster(cfg.Events.KeepAlive(), cfg.Events.SubscriberBuffer, logger)
	defer broadcaster.Close()

	var auditSink audit.Sink = audit.NewNopSink()
	if redis.ClientHandle() != nil {
		auditSink = audit.NewRedisSink(redis.ClientHandle(), cfg.Audit.Stream, logger)
	}

	reconcileService := service.NewReconcileService(service.ReconcileDependencies{
		Store:     store,
		Publisher: broadcaster,
		Logger:    logger,
	})
	repairService := service.NewRepairService(service.RepairDependencies{
		Store:     store,
		Publisher: broadcaster,
		Logger:    logger,
	})
	usageService := service.NewUsageService(service.UsageDependencies{
		Store:     store,
		Reconcile: reconcileService,
		Logger:    logger,
	})
	backfillService := service.NewBackfillService(service.BackfillDependencies{
		Store:  store,
		Logger: logger,
	})
	assetQueries := service.NewAssetQueryService(store)

	backfillWorker := worker.NewBackfillWorker(backfillService, cfg.Backfill.Interval(), cfg.Backfill.BatchLimit, logger)
	backfillWorker.Start(ctx)
	defer backfillWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth.JWTSecret))
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Assets:         handlers.NewAssetsHandler(assetQueries, reconcileService),
		UsageLogs:      handlers.NewUsageLogsHandler(usageService, auditSink),
		RepairTickets:  handlers.NewRepairTicketsHandler(repairService, auditSink),
		Backfill:       handlers.NewBackfillHandler(backfillService),
		Events:         handlers.NewEventsHandler(broadcaster, metrics, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
