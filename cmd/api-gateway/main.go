package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/HummaSaeed/TimeTableManager/api/swagger"
	"github.com/HummaSaeed/TimeTableManager/internal/handler"
	"github.com/HummaSaeed/TimeTableManager/internal/middleware"
	"github.com/HummaSaeed/TimeTableManager/internal/repository"
	"github.com/HummaSaeed/TimeTableManager/internal/service"
	"github.com/HummaSaeed/TimeTableManager/pkg/cache"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	"github.com/HummaSaeed/TimeTableManager/pkg/database"
	"github.com/HummaSaeed/TimeTableManager/pkg/export"
	"github.com/HummaSaeed/TimeTableManager/pkg/logger"
	"github.com/HummaSaeed/TimeTableManager/pkg/middleware/cors"
	"github.com/HummaSaeed/TimeTableManager/pkg/middleware/requestid"
	"github.com/HummaSaeed/TimeTableManager/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it timetable reads skip the cache and
	// invalidation becomes a no-op.
	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}

	schoolRepo := repository.NewSchoolRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	eligibilityRepo := repository.NewEligibilityRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsService := service.NewMetricsService(registry)

	eligibilityService := service.NewEligibilityService(subjectRepo, teacherRepo, eligibilityRepo, log)
	authService := service.NewAuthService(accountRepo, cfg.JWT, log)

	var invalidator service.CacheInvalidator
	var timetableCache service.TimetableCache
	if cacheRepo != nil {
		invalidator = cacheRepo
		timetableCache = cacheRepo
	}

	generatorService := service.NewGeneratorService(
		schoolRepo, classRepo, subjectRepo, teacherRepo, eligibilityService,
		slotRepo, db, invalidator, metricsService, cfg.Scheduler, log,
	)
	substitutionService := service.NewSubstitutionService(
		teacherRepo, eligibilityRepo, slotRepo, absenceRepo, substitutionRepo,
		db, invalidator, metricsService, cfg.Scheduler, log,
	)
	timetableService := service.NewTimetableService(
		slotRepo, timetableCache, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Cache, log,
	)

	fileStore, err := storage.NewFileStore(cfg.Export.Dir)
	if err != nil {
		log.Fatal("init export storage", zap.Error(err))
	}
	urlSigner := storage.NewURLSigner(cfg.Export.SignSecret, cfg.Export.ResultTTL)
	exportService := service.NewExportService(
		exportJobRepo, fileStore, urlSigner, timetableService, cfg.APIPrefix, cfg.Export, log,
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	exportService.Start(workerCtx)

	authHandler := handler.NewAuthHandler(authService)
	timetableHandler := handler.NewTimetableHandler(generatorService, timetableService)
	substitutionHandler := handler.NewSubstitutionHandler(substitutionService)
	exportHandler := handler.NewExportHandler(exportService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.HTTPMetrics(registry))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(cfg.APIPrefix)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/auth/login", authHandler.Login)
	// Downloads authenticate through the signed token in the path, so no JWT.
	api.GET("/export/:token", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWT))
	protected.POST("/timetable/generate", timetableHandler.Generate)
	protected.GET("/timetable", timetableHandler.List)
	protected.GET("/timetable/class/:classId", timetableHandler.ByClass)
	protected.GET("/timetable/workload", timetableHandler.Workload)
	protected.GET("/timetable/export", timetableHandler.Export)
	protected.POST("/timetable/export/jobs", exportHandler.CreateJob)
	protected.GET("/timetable/export/jobs/:jobId", exportHandler.JobStatus)
	protected.POST("/substitutions/absences", substitutionHandler.MarkAbsent)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	stopWorkers()
	exportService.Stop()
	log.Info("server stopped")
}
