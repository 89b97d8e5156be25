package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/j4nthirty1ne/school-timetable-api/api/swagger"
	"github.com/j4nthirty1ne/school-timetable-api/internal/handler"
	"github.com/j4nthirty1ne/school-timetable-api/internal/middleware"
	"github.com/j4nthirty1ne/school-timetable-api/internal/repository"
	"github.com/j4nthirty1ne/school-timetable-api/internal/service"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/cache"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/config"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/database"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/logger"
	corsmiddleware "github.com/j4nthirty1ne/school-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/j4nthirty1ne/school-timetable-api/pkg/middleware/requestid"
)

// @title School Timetable API
// @version 1.0.0
// @description Timetable booking management and conflict detection
// @BasePath /
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

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	bookingRepo := repository.NewBookingRepository(db)
	conflictSvc := service.NewConflictService(bookingRepo, validate, logr, metricsSvc, cfg.Workload)
	bookingSvc := service.NewBookingService(bookingRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(bookingRepo, logr)

	conflictHandler := handler.NewConflictHandler(conflictSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, exportSvc)
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
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/schedules/check-conflicts", conflictHandler.Check)
		api.GET("/schedules/export", bookingHandler.Export)
		api.GET("/schedules", bookingHandler.List)
		api.POST("/schedules", bookingHandler.Create)
		api.GET("/schedules/:id", bookingHandler.Get)
		api.PATCH("/schedules/:id", bookingHandler.Update)
		api.DELETE("/schedules/:id", bookingHandler.Delete)
		api.GET("/teachers/:id/timetable", bookingHandler.Timetable)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
