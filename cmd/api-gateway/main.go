package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/hostel-allocation-api/api/swagger"
	"github.com/noah-isme/hostel-allocation-api/internal/handler"
	internalmiddleware "github.com/noah-isme/hostel-allocation-api/internal/middleware"
	"github.com/noah-isme/hostel-allocation-api/internal/models"
	"github.com/noah-isme/hostel-allocation-api/internal/repository"
	"github.com/noah-isme/hostel-allocation-api/internal/service"
	"github.com/noah-isme/hostel-allocation-api/pkg/cache"
	"github.com/noah-isme/hostel-allocation-api/pkg/config"
	"github.com/noah-isme/hostel-allocation-api/pkg/database"
	"github.com/noah-isme/hostel-allocation-api/pkg/export"
	"github.com/noah-isme/hostel-allocation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hostel-allocation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hostel-allocation-api/pkg/middleware/requestid"
)

// @title Hostel Allocation API
// @version 1.0.0
// @description Room allocation engine and run controller for the hostel administration backend.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient := cache.NewOptionalRedis(cfg.Redis, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Allocation.PreCheckTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	notificationSvc := service.NewNotificationService(notificationRepo, logr)

	fetcher := service.NewEligibilityFetcher(studentRepo, roomRepo, validate)
	solver := service.NewAllocationSolver(fetcher, studentRepo, models.DefaultCohortPolicy(), logr)
	allocationSvc := service.NewAllocationService(service.AllocationServiceParams{
		DB:          db,
		Solver:      solver,
		Students:    studentRepo,
		Rooms:       roomRepo,
		Allocations: allocationRepo,
		Notifier:    notificationSvc,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
		Config: service.AllocationServiceConfig{
			RunTimeout:     cfg.Allocation.RunTimeout,
			PreCheckTTL:    cfg.Allocation.PreCheckTTL,
			ResultCacheTTL: cfg.Allocation.ResultCacheTTL,
			Notify:         cfg.Allocation.Notify,
		},
	})
	reportSvc := service.NewAllocationReportService(allocationSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	allocationHandler := handler.NewAllocationHandler(allocationSvc, reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	api.Use(internalmiddleware.JWT(authSvc))

	allocation := api.Group("/allocation")
	allocation.GET("/my-allocation", internalmiddleware.RequireRoles(models.RoleStudent), allocationHandler.MyAllocation)

	admin := allocation.Group("")
	admin.Use(internalmiddleware.AdminOnly())
	admin.GET("/pre-check", allocationHandler.PreCheck)
	admin.GET("/status", allocationHandler.Status)
	admin.POST("/start", allocationHandler.Start)
	admin.GET("/last-result", allocationHandler.LastResult)
	admin.GET("/report/:id", allocationHandler.Report)
	admin.GET("/all", allocationHandler.All)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	allocationSvc.StartWorker(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	allocationSvc.Stop()
}
