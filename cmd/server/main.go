package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasksync/api/handler"
	"github.com/fastygo/tasksync/internal/config"
	"github.com/fastygo/tasksync/internal/infrastructure/buffer"
	"github.com/fastygo/tasksync/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasksync/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasksync/internal/infrastructure/redis"
	"github.com/fastygo/tasksync/internal/infrastructure/replica"
	"github.com/fastygo/tasksync/internal/middleware"
	"github.com/fastygo/tasksync/internal/router"
	"github.com/fastygo/tasksync/internal/services"
	"github.com/fastygo/tasksync/internal/services/lifecycle"
	"github.com/fastygo/tasksync/pkg/httpcontext"
	"github.com/fastygo/tasksync/pkg/logger"
	"github.com/fastygo/tasksync/repository/postgres"
	redisRepo "github.com/fastygo/tasksync/repository/redis"
	categoryUC "github.com/fastygo/tasksync/usecase/category"
	draftUC "github.com/fastygo/tasksync/usecase/draft"
	taskUC "github.com/fastygo/tasksync/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid postgres configuration", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	migrator := pgInfra.NewMigrator(cfg.Database, cfg.Migrations, zapLogger)
	if err := migrator.Run(); err != nil {
		zapLogger.Warn("migrations deferred until the database is reachable", zap.Error(err))
	}

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid redis configuration", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	localCache, err := replica.Open(cfg.Replica.Path)
	if err != nil {
		zapLogger.Fatal("failed to open local cache", zap.Error(err))
	}
	manager.Register("replica", func(ctx context.Context) error {
		return localCache.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	prober := monitor.NewProber(
		[]monitor.Check{monitor.InterfaceCheck()},
		[]monitor.Check{
			monitor.HTTPCheck(&fasthttp.Client{Name: cfg.AppName}, cfg.Connectivity.ProbeURL),
			pool.Ping,
		},
	)
	mon := monitor.New(prober, cfg.Connectivity.Interval, cfg.Connectivity.ProbeTimeout, zapLogger)

	taskRepo := postgres.NewTaskRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	resultCache := redisRepo.NewResultCache(redisClient, cfg.Cache.TTL)
	draftStore := redisRepo.NewDraftStore(redisClient, cfg.Drafts.TTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		categoryRepo,
		resultCache,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferBridge := services.NewBufferBridge(bufferProcessor)

	coordinator := services.NewSyncCoordinator(mon, resultCache, bufferProcessor, cfg.Buffer.SyncInterval, zapLogger)
	unsubscribeMigrations := mon.Subscribe(func(event monitor.Event) {
		if event != monitor.BecameReachable {
			return
		}
		go func() {
			if err := migrator.Run(); err != nil {
				zapLogger.Error("migrations failed", zap.Error(err))
			}
		}()
	})

	startErr := manager.Start(appCtx, "sync_coordinator",
		func(context.Context) error {
			coordinator.Start()
			return nil
		},
		func(context.Context) error {
			unsubscribeMigrations()
			coordinator.Stop()
			return nil
		})
	if startErr == nil {
		startErr = manager.Start(appCtx, "monitor",
			func(context.Context) error {
				mon.Start()
				return nil
			},
			func(context.Context) error {
				mon.Stop()
				return nil
			})
	}
	if startErr == nil {
		startErr = manager.Start(appCtx, "buffer_processor",
			func(context.Context) error {
				bufferProcessor.Start()
				return nil
			},
			func(ctx context.Context) error {
				bufferProcessor.Stop(ctx)
				return nil
			})
	}
	if startErr != nil {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal("startup failed", zap.Error(startErr))
	}

	pager := taskUC.NewPager(taskRepo, localCache, resultCache, mon, cfg.Pagination.MaxLimit, zapLogger)
	gateway := taskUC.NewGateway(taskRepo, categoryRepo, localCache, bufferBridge, mon, resultCache, zapLogger)
	categoryUseCase := categoryUC.New(categoryRepo, localCache, resultCache, gateway, mon, zapLogger)
	draftUseCase := draftUC.New(draftStore, zapLogger)
	feeds := services.NewFeedRegistry(pager, gateway, cfg.Feeds.MaxSessions, cfg.Feeds.TTL, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:     apiHandler.NewTaskHandler(pager, gateway, cfg.Pagination.DefaultLimit, ctxAdapter, zapLogger),
		Category: apiHandler.NewCategoryHandler(categoryUseCase, ctxAdapter, zapLogger),
		Feed:     apiHandler.NewFeedHandler(feeds, cfg.Pagination.DefaultLimit, ctxAdapter, zapLogger),
		Draft:    apiHandler.NewDraftHandler(draftUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, bufferProcessor, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
