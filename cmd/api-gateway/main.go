package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pushmasterhq/pushmaster-api/api/swagger"
	"github.com/pushmasterhq/pushmaster-api/internal/handler"
	"github.com/pushmasterhq/pushmaster-api/internal/middleware"
	"github.com/pushmasterhq/pushmaster-api/internal/repository"
	"github.com/pushmasterhq/pushmaster-api/internal/service"
	"github.com/pushmasterhq/pushmaster-api/pkg/cache"
	"github.com/pushmasterhq/pushmaster-api/pkg/config"
	"github.com/pushmasterhq/pushmaster-api/pkg/database"
	"github.com/pushmasterhq/pushmaster-api/pkg/export"
	"github.com/pushmasterhq/pushmaster-api/pkg/logger"
	corsmiddleware "github.com/pushmasterhq/pushmaster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pushmasterhq/pushmaster-api/pkg/middleware/requestid"
	"github.com/pushmasterhq/pushmaster-api/pkg/notify"
)

// @title Pushmaster API
// @version 1.0.0
// @description Deploy workflow tracker: requests, pushes, notifications
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		if cfg.Cache.Enabled {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	requestRepo := repository.NewRequestRepository(db)
	pushRepo := repository.NewPushRepository(db)
	userInfoRepo := repository.NewUserInfoRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	querySvc := service.NewQueryService(requestRepo, pushRepo, cacheSvc, metricsSvc, cfg.Cache.OpenPushesTTL, logr)
	userInfoSvc := service.NewUserInfoService(userInfoRepo, cacheSvc, logr)

	notificationSvc := service.NewNotificationService(
		notify.NewSMTPSender(cfg.Mail),
		notify.NewWebhookSender(cfg.IM),
		metricsSvc,
		cfg.Notifications,
		logr,
	)
	workflowSvc := service.NewWorkflowService(requestRepo, pushRepo, querySvc, notificationSvc, cfg, logr)
	reportSvc := service.NewReportService(querySvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	requestHandler := handler.NewRequestHandler(workflowSvc, querySvc)
	pushHandler := handler.NewPushHandler(workflowSvc, querySvc)
	userHandler := handler.NewUserHandler(querySvc, userInfoSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := middleware.Identity(userInfoSvc)

	requests := api.Group("/requests")
	{
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.POST("", authed, requestHandler.Create)
		requests.PUT("/:id", authed, requestHandler.Update)
		requests.POST("/:id/abandon", authed, requestHandler.Abandon)
		requests.POST("/:id/withdraw", authed, requestHandler.Withdraw)
		requests.POST("/:id/checkin", authed, requestHandler.CheckIn)
		requests.POST("/:id/tested", authed, requestHandler.Tested)
		requests.POST("/:id/reject", authed, requestHandler.Reject)
		requests.POST("/:id/take-ownership", authed, requestHandler.TakeOwnership)
	}

	pushes := api.Group("/pushes")
	{
		pushes.GET("", pushHandler.List)
		pushes.GET("/current", pushHandler.Current)
		pushes.GET("/:id", pushHandler.Get)
		pushes.POST("", authed, pushHandler.Create)
		pushes.POST("/:id/accept", authed, pushHandler.Accept)
		pushes.POST("/:id/stage", authed, pushHandler.Stage)
		pushes.POST("/:id/live", authed, pushHandler.Live)
		pushes.POST("/:id/force-live", authed, pushHandler.ForceLive)
		pushes.POST("/:id/unlive", authed, pushHandler.Unlive)
		pushes.POST("/:id/abandon", authed, pushHandler.Abandon)
		pushes.POST("/:id/take-ownership", authed, pushHandler.TakeOwnership)
	}

	users := api.Group("/users")
	{
		users.GET("/:email", userHandler.Get)
		users.GET("/:email/requests", userHandler.Requests)
		users.GET("/:email/pushes", userHandler.Pushes)
	}

	api.GET("/reports/weekly/:date", reportHandler.Weekly)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
