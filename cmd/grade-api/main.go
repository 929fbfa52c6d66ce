package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/coursegrade/coursegrade-api/api/swagger"
	"github.com/coursegrade/coursegrade-api/internal/handler"
	"github.com/coursegrade/coursegrade-api/internal/middleware"
	"github.com/coursegrade/coursegrade-api/internal/repository"
	"github.com/coursegrade/coursegrade-api/internal/service"
	"github.com/coursegrade/coursegrade-api/pkg/cache"
	"github.com/coursegrade/coursegrade-api/pkg/config"
	"github.com/coursegrade/coursegrade-api/pkg/database"
	"github.com/coursegrade/coursegrade-api/pkg/logger"
	corsmiddleware "github.com/coursegrade/coursegrade-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coursegrade/coursegrade-api/pkg/middleware/requestid"
)

// @title CourseGrade API
// @version 1.0.0
// @description Course grade computation and anomaly detection service
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	scaleRepo := repository.NewScaleRepository(db)
	weightRepo := repository.NewWeightRepository(db)
	runRepo := repository.NewRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Grading.SummaryCacheTTL, logr, true)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "coursegrade-api",
	})
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, scoreRepo, nil, logr)
	scoreSvc := service.NewScoreService(scoreRepo, assignmentRepo, cacheSvc, nil, logr)
	scaleSvc := service.NewScaleService(scaleRepo, nil, logr)
	weightSvc := service.NewWeightService(weightRepo, nil, logr)
	processingSvc := service.NewProcessingService(
		studentRepo, assignmentRepo, scoreRepo, weightRepo, scaleSvc,
		runRepo, cacheSvc, metricsSvc, nil, logr, cfg.Grading,
	)
	reportSvc := service.NewReportService(runRepo, cacheSvc, logr, cfg.Reports)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc, scoreSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc, scoreSvc),
		Scores:      handler.NewScoreHandler(scoreSvc),
		Scales:      handler.NewScaleHandler(scaleSvc),
		Weights:     handler.NewWeightHandler(weightSvc),
		Processing:  handler.NewProcessingHandler(processingSvc),
		Reports:     handler.NewReportHandler(reportSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
