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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/nep-timetable-api/api/swagger"
	"github.com/noah-isme/nep-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/nep-timetable-api/internal/middleware"
	"github.com/noah-isme/nep-timetable-api/internal/models"
	"github.com/noah-isme/nep-timetable-api/internal/repository"
	"github.com/noah-isme/nep-timetable-api/internal/service"
	"github.com/noah-isme/nep-timetable-api/pkg/cache"
	"github.com/noah-isme/nep-timetable-api/pkg/config"
	"github.com/noah-isme/nep-timetable-api/pkg/database"
	"github.com/noah-isme/nep-timetable-api/pkg/export"
	"github.com/noah-isme/nep-timetable-api/pkg/jobs"
	"github.com/noah-isme/nep-timetable-api/pkg/llm"
	"github.com/noah-isme/nep-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/nep-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/nep-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/nep-timetable-api/pkg/tracing"
)

// @title NEP Timetable API
// @version 1.0.0
// @description Generates NEP 2020 aligned class timetables and scores their compliance.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, compliance cache disabled", zap.Error(err))
		redisClient = nil
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Compliance.CacheTTL, logr, cfg.Compliance.CacheEnabled && redisClient != nil)
	catalogSvc := service.NewCatalogService(subjectRepo, teacherRepo, timeSlotRepo, logr)
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter())

	var completer service.Completer
	if cfg.Generator.RemoteEnabled {
		client, err := llm.New(llm.Config{
			BaseURL: cfg.Generator.BaseURL,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			Timeout: cfg.Generator.Timeout,
		})
		if err != nil {
			logr.Fatal("failed to init remote generator", zap.Error(err))
		}
		completer = client
	}
	generator := service.NewTimetableGenerator(
		completer,
		service.NewGreedyAssigner(service.NewRoomAdvisor(nil)),
		service.NewComplianceScorer(),
		service.GeneratorConfig{
			MaxTokens:   cfg.Generator.MaxTokens,
			Temperature: cfg.Generator.Temperature,
			Timeout:     cfg.Generator.Timeout,
		},
		logr,
	)
	logr.Info("timetable generator ready", zap.Bool("remote_enabled", generator.RemoteEnabled()))

	timetableSvc := service.NewTimetableService(
		catalogSvc,
		generator,
		timetableRepo,
		service.NewComplianceScorer(),
		exportSvc,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.TimetableServiceConfig{ComplianceCacheTTL: cfg.Compliance.CacheTTL},
	)

	batchSvc := service.NewBatchService(timetableSvc, metricsSvc, validate, logr, cfg.Batch.ResultTTL)
	batchQueue := jobs.NewQueue("timetable-batch", batchSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Batch.Workers,
		BufferSize: cfg.Batch.BufferSize,
		MaxRetries: cfg.Batch.MaxRetries,
		JobTimeout: cfg.Generator.Timeout + 30*time.Second,
		OnFailure:  batchSvc.OnJobFailed,
		Logger:     logr,
	})
	batchSvc.SetQueue(batchQueue)
	batchQueue.Start(ctx)

	timetableHandler := handler.NewTimetableHandler(timetableSvc, batchSvc, logr)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
		"batch_queue": func(context.Context) error {
			if stats := batchQueue.Stats(); stats.Pending >= cfg.Batch.BufferSize && cfg.Batch.BufferSize > 0 {
				return fmt.Errorf("batch queue full (%d pending)", stats.Pending)
			}
			return nil
		},
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", metricsHandler.Health)

	read := api.Group("")
	write := api.Group("")
	if cfg.JWT.Enabled {
		tokens := service.NewTokenService(cfg.JWT.Secret)
		read.Use(internalmiddleware.JWT(tokens))
		write.Use(internalmiddleware.JWT(tokens), internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	}

	read.GET("/subjects", catalogHandler.Subjects)
	read.GET("/teachers", internalmiddleware.SchoolScope(func(c *gin.Context) string { return c.Query("school_id") }), catalogHandler.Teachers)
	read.GET("/time-slots", catalogHandler.TimeSlots)
	read.GET("/classes/:classId/timetable", timetableHandler.ClassTimetable)
	read.GET("/classes/:classId/timetable/export", timetableHandler.Export)
	read.GET("/classes/:classId/compliance", timetableHandler.ClassCompliance)
	read.POST("/timetables/compliance", timetableHandler.Analyze)
	read.GET("/timetables/batches/:id", timetableHandler.BatchStatus)

	write.POST("/timetables/generate", timetableHandler.Generate)
	write.POST("/timetables/generate/batch", timetableHandler.GenerateBatch)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	batchQueue.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Error("tracing shutdown failed", zap.Error(err))
	}
}
