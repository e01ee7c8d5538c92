package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/counseling-api/api/swagger"
	"github.com/noah-isme/counseling-api/internal/handler"
	"github.com/noah-isme/counseling-api/internal/middleware"
	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/repository"
	"github.com/noah-isme/counseling-api/internal/service"
	"github.com/noah-isme/counseling-api/pkg/cache"
	"github.com/noah-isme/counseling-api/pkg/config"
	"github.com/noah-isme/counseling-api/pkg/database"
	"github.com/noah-isme/counseling-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/counseling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/counseling-api/pkg/middleware/requestid"
)

// @title Counseling API
// @version 1.0.0
// @description Scheduling and booking service for student counseling sessions
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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.SlotTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.SlotTTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	counselorSvc := service.NewCounselorService(userRepo, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, cacheSvc, validate, logr)
	schedulingSvc := service.NewSchedulingService(availabilityRepo, sessionRepo, cacheSvc, metricsSvc, validate, logr, cfg.Scheduling, cfg.Cache.SlotTTL)
	exportSvc := service.NewExportService(sessionRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	counselorHandler := handler.NewCounselorHandler(counselorSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	counselingHandler := handler.NewCounselingHandler(schedulingSvc, exportSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/counselors", counselorHandler.List)

		authed.GET("/counseling/available-slots", counselingHandler.AvailableSlots)
		authed.POST("/counseling/request", counselingHandler.Request)
		authed.GET("/counseling", counselingHandler.List)
		if cfg.Exports.Enabled {
			authed.GET("/counseling/export",
				middleware.RequireRoles(models.RoleCounselor, models.RoleOperator),
				counselingHandler.Export)
		}
		authed.GET("/counseling/:id", counselingHandler.Get)
		authed.PUT("/counseling/:id/approve",
			middleware.RequireRoles(models.RoleCounselor, models.RoleOperator),
			counselingHandler.Approve)
		authed.PUT("/counseling/:id/reject",
			middleware.RequireRoles(models.RoleCounselor, models.RoleOperator),
			counselingHandler.Reject)
		authed.PUT("/counseling/:id/status",
			middleware.RequireRoles(models.RoleCounselor, models.RoleOperator),
			counselingHandler.UpdateStatus)

		authed.GET("/counselor-schedules", availabilityHandler.List)
		schedules := authed.Group("/counselor-schedules")
		schedules.Use(middleware.RequireRoles(models.RoleCounselor, models.RoleOperator))
		{
			schedules.POST("", availabilityHandler.Create)
			schedules.PUT("/:id", availabilityHandler.Update)
			schedules.DELETE("/:id", availabilityHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
