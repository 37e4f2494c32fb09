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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-schedule-api/api/swagger"
	"github.com/noah-isme/tutor-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/repository"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	"github.com/noah-isme/tutor-schedule-api/pkg/cache"
	"github.com/noah-isme/tutor-schedule-api/pkg/config"
	"github.com/noah-isme/tutor-schedule-api/pkg/database"
	"github.com/noah-isme/tutor-schedule-api/pkg/jobs"
	"github.com/noah-isme/tutor-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-schedule-api/pkg/middleware/requestid"
)

// @title Tutor Schedule API
// @version 1.0.0
// @description Weekly schedule slots, lesson generation, conflict checks and teacher calendars.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Calendar.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, calendar cache disabled", "addr", cache.Addr(cfg.Redis), "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	rules := service.RulesFromConfig(cfg.Scheduling)
	metricsSvc := service.NewMetricsService()

	slotRepo := repository.NewScheduleSlotRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	classRepo := repository.NewClassRepository(db)
	termRepo := repository.NewTermRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logger.Named(logr, "cache"))

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logger.Named(logr, "cache"), cfg.Calendar.CacheEnabled && redisClient != nil)
	invalidator := service.NewCacheInvalidator(cacheSvc, jobs.QueueConfig{
		Workers:    cfg.Workers.CacheWorkers,
		MaxRetries: cfg.Workers.CacheRetries,
		Logger:     logger.Named(logr, "cache-invalidator"),
	})
	rootCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	invalidator.Start(rootCtx)
	defer invalidator.Stop()

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	conflictSvc := service.NewScheduleConflictService(slotRepo, lessonRepo, classRepo, termRepo, validate, metricsSvc, logger.Named(logr, "schedule-conflicts"), rules)
	slotSvc := service.NewScheduleSlotService(service.ScheduleSlotServiceDeps{
		DB:          db,
		Slots:       slotRepo,
		Lessons:     lessonRepo,
		Holidays:    holidayRepo,
		Conflicts:   conflictSvc,
		Invalidator: invalidator,
		Validator:   validate,
		Metrics:     metricsSvc,
		Logger:      logger.Named(logr, "schedule-slots"),
	})
	calendarSvc := service.NewCalendarService(lessonRepo, cacheSvc, validate, logger.Named(logr, "calendar"), rules)
	holidaySvc := service.NewHolidayService(holidayRepo, validate, logger.Named(logr, "holidays"))

	checks := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		tokens:    tokens,
		auditLog:  logger.Named(logr, "audit"),
		slots:     handler.NewScheduleSlotHandler(slotSvc),
		conflicts: handler.NewScheduleConflictHandler(conflictSvc),
		calendar:  handler.NewCalendarHandler(calendarSvc),
		holidays:  handler.NewHolidayHandler(holidaySvc),
	})

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stats := invalidator.Stats()
	logr.Info("shutting down",
		zap.Int64("invalidations_succeeded", stats.Succeeded),
		zap.Int64("invalidations_failed", stats.Failed),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
