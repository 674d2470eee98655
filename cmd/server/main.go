package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trainwise/fitness-app/internal/api"
	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/config"
	"trainwise/fitness-app/internal/email"
	"trainwise/fitness-app/internal/logging"
	"trainwise/fitness-app/internal/metrics"
	"trainwise/fitness-app/internal/repository/mongo"
	"trainwise/fitness-app/internal/service"
	"trainwise/fitness-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// @title Trainwise API
// @version 1.0
// @description API for exercise libraries, training plans, workout logs, goals and teams.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   true,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		Compress:      cfg.Log.Compress,
	})
	log.Info("starting trainwise server")
	gin.SetMode(cfg.Server.Mode)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("could not connect to mongodb: %v", err)
	}
	defer func() {
		log.Info("disconnecting mongodb")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("failed to disconnect mongodb: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
	}()

	// --- Storage ---
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3)
	cancelStorage()
	if err != nil {
		log.Fatalf("failed to initialize s3 storage: %v", err)
	}

	// --- Repositories ---
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	globalRefRepo := mongo.NewMongoReferenceRepository(appDB, mongo.GlobalReferenceCollection)
	savedRefRepo := mongo.NewMongoReferenceRepository(appDB, mongo.SavedReferenceCollection)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	hierarchyRepo := mongo.NewMongoPlanHierarchyRepository(appDB)
	logRepo := mongo.NewMongoSessionLogRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	measurementRepo := mongo.NewMongoMeasurementRepository(appDB)
	teamRepo := mongo.NewMongoTeamRepository(appDB)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("trainwise", "server", registry)

	var queryCache *cache.QueryCache
	if cfg.Cache.Enabled {
		queryCache = cache.NewQueryCache(cfg.Cache.SizeMB, cfg.Cache.TTL, cache.DefaultInvalidations, metricsManager)
	}

	var rateLimiter api.RequestRateLimiter
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		rateLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Warn("redis address not set, rate limiting disabled")
	}

	mailer := email.NewHTTPMailer(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From, cfg.Email.Timeout)

	// --- Services ---
	services := api.Services{
		Auth:          service.NewAuthService(profileRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Exercise:      service.NewExerciseService(exerciseRepo, fileStorage),
		Reference:     service.NewReferenceService(exerciseRepo, globalRefRepo, savedRefRepo),
		Plan:          service.NewPlanService(planRepo, hierarchyRepo, goalRepo, teamRepo, logRepo),
		PlanHierarchy: service.NewPlanHierarchyService(planRepo, hierarchyRepo, exerciseRepo),
		WorkoutLog:    service.NewWorkoutLogService(logRepo, hierarchyRepo),
		Goal:          service.NewGoalService(goalRepo, planRepo),
		Measurement:   service.NewMeasurementService(measurementRepo, fileStorage),
		Team:          service.NewTeamService(teamRepo, profileRepo, mailer, cfg.Email.AppBaseURL),
	}

	// --- Router ---
	router := gin.New()
	router.Use(gin.Recovery())

	opts := api.RouterOptions{
		QueryCache:        queryCache,
		Metrics:           metricsManager,
		RateLimiter:       rateLimiter,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsGatherer = registry
		opts.MetricsPath = cfg.Metrics.Path
	}
	api.SetupRoutes(router, services, opts)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server exiting")
}
