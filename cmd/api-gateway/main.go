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

	_ "github.com/urugendo/student-performance-api/api/swagger"
	"github.com/urugendo/student-performance-api/internal/handler"
	"github.com/urugendo/student-performance-api/internal/middleware"
	"github.com/urugendo/student-performance-api/internal/repository"
	"github.com/urugendo/student-performance-api/internal/service"
	"github.com/urugendo/student-performance-api/pkg/cache"
	"github.com/urugendo/student-performance-api/pkg/config"
	"github.com/urugendo/student-performance-api/pkg/database"
	"github.com/urugendo/student-performance-api/pkg/logger"
	corsmiddleware "github.com/urugendo/student-performance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/urugendo/student-performance-api/pkg/middleware/requestid"
)

// @title Student Performance API
// @version 1.0.0
// @description REST service for tracking student attendance, assessments, participation and conduct
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
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	behavioralRepo := repository.NewBehavioralRepository(db)
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	var dashboardCache *repository.CacheRepository
	if redisClient != nil {
		dashboardCache = repository.NewCacheRepository(redisClient, logr)
		defer dashboardCache.Close()
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		Expiration:         cfg.JWT.Expiration,
		RememberExpiration: cfg.JWT.RememberExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, validate, logr)
	participationSvc := service.NewParticipationService(participationRepo, validate, logr)
	behavioralSvc := service.NewBehavioralService(behavioralRepo, validate, logr)
	assignmentSvc := service.NewTeacherAssignmentService(assignmentRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr, cfg.Identity.GeneratedPasswordLength)
	reportSvc := service.NewReportService(studentRepo, assessmentRepo, analyticsRepo, logr)

	var dashboardSvc *service.DashboardService
	if dashboardCache != nil {
		dashboardSvc = service.NewDashboardService(analyticsRepo, dashboardCache, dashboardConfig(cfg), logr)
	} else {
		dashboardSvc = service.NewDashboardService(analyticsRepo, nil, dashboardConfig(cfg), logr)
	}

	// Writes that feed the dashboard drop its cached aggregates.
	studentSvc.WithAggregateInvalidation(dashboardSvc)
	attendanceSvc.WithAggregateInvalidation(dashboardSvc)
	assessmentSvc.WithAggregateInvalidation(dashboardSvc)
	behavioralSvc.WithAggregateInvalidation(dashboardSvc)

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
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Students:      handler.NewStudentHandler(studentSvc, reportSvc),
		Classes:       handler.NewClassHandler(classSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Assessments:   handler.NewAssessmentHandler(assessmentSvc),
		Participation: handler.NewParticipationHandler(participationSvc),
		Behavioral:    handler.NewBehavioralHandler(behavioralSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		Assignments:   handler.NewTeacherAssignmentHandler(assignmentSvc),
		Users:         handler.NewUserHandler(userSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func dashboardConfig(cfg *config.Config) service.DashboardConfig {
	return service.DashboardConfig{
		CacheTTL:               cfg.Dashboard.CacheTTL,
		HighPerformerThreshold: cfg.Dashboard.HighPerformerThreshold,
		UnderperformThreshold:  cfg.Dashboard.UnderperformThreshold,
		LowAttendanceThreshold: cfg.Dashboard.LowAttendanceThreshold,
		TopPerformersLimit:     cfg.Dashboard.TopPerformersLimit,
	}
}
