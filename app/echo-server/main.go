package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/thejerf/suture/v4"

	"smartPricing/app/echo-server/router"
	"smartPricing/business/bandit"
	"smartPricing/business/experiment"
	"smartPricing/business/project"
	"smartPricing/internal/middleware"
	psqlRepo "smartPricing/internal/repository/postgres"
	redisRepo "smartPricing/internal/repository/redis"
	"smartPricing/internal/rest"
	"smartPricing/pkg/config"
	"smartPricing/pkg/database"
	redisdb "smartPricing/pkg/database/redis"
	"smartPricing/pkg/logger"
	"smartPricing/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting smartPricing", "version", cfg.App.Version, "env", cfg.App.Environment)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.ClosePostgres(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	logger.Info("Database connected successfully")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get sql.DB", "error", err)
	}

	// Sweep lease, only when Redis is configured
	var sweepLock bandit.SweepLock
	if cfg.Redis.Enabled() {
		rdb, err := redisdb.Connect(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisdb.Close(rdb)
		sweepLock = redisRepo.NewSweepLock(rdb, "")
		logger.Info("Redis connected, sweep lease enabled")
	}

	banditCfg := bandit.Config{
		Tau:              cfg.Bandit.Tau,
		PrecisionFloor:   cfg.Bandit.PrecisionFloor,
		MaxUpdateRetries: cfg.Bandit.MaxUpdateRetries,
		SweepConcurrency: cfg.Bandit.SweepConcurrency,
	}
	if err := banditCfg.Validate(); err != nil {
		logger.Fatal("Invalid bandit config", "error", err)
	}

	sweepStrategy, err := bandit.ParseStrategy(cfg.Bandit.SweepStrategy)
	if err != nil {
		logger.Fatal("Invalid sweep strategy", "error", err)
	}

	// Init repo
	projectRepo := psqlRepo.NewProjectRepository(db)
	banditRepo := psqlRepo.NewBanditRepository(db)
	experimentRepo := psqlRepo.NewExperimentRepository(db)

	// Init service
	banditService := bandit.NewBanditService(projectRepo, banditRepo, experimentRepo, nil, banditCfg)
	projectService := project.NewProjectService(projectRepo, banditRepo)
	experimentService := experiment.NewExperimentService(experimentRepo, projectRepo)

	sweeper := bandit.NewSweeper(banditService, sweepLock, bandit.SweeperConfig{
		Interval: cfg.Bandit.SweepInterval,
		Strategy: sweepStrategy,
		Options: bandit.SelectOptions{
			Persist:          cfg.Bandit.SweepPersist,
			RecordExperiment: cfg.Bandit.SweepRecordExperiment,
		},
	})

	// Init handler
	projectHandler := rest.NewProjectHandler(projectService)
	thompsonHandler := rest.NewThompsonHandler(banditService, sweeper)
	experimentHandler := rest.NewExperimentHandler(experimentService)
	healthHandler := rest.NewHealthHandler(sqlDB, cfg.App.Version)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	// Setup routes
	router.SetupOpsRoutes(e, healthHandler)
	api := e.Group("/api/v1")
	router.SetupProjectRoutes(api, projectHandler)
	router.SetupThompsonRoutes(api, thompsonHandler)
	router.SetupExperimentRoutes(api, experimentHandler)

	// Supervisor tree
	sup := suture.New("smartPricing", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Warn("supervisor event", "event", ev.String())
		},
	})
	sup.Add(&httpService{
		e:               e,
		addr:            fmt.Sprintf(":%s", cfg.Server.Port),
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if cfg.Bandit.SweepEnabled {
		sup.Add(sweeper)
	} else {
		logger.Info("Scheduled sweep disabled")
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Supervisor stopped", "error", err)
	}

	logger.Info("Server stopped")
}
