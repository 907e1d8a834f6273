package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentalwell/config"
	deliveryHttp "mentalwell/internal/delivery/http"
	"mentalwell/internal/delivery/http/handler"
	"mentalwell/internal/delivery/http/middleware"
	"mentalwell/internal/infrastructure/analysis"
	"mentalwell/internal/infrastructure/cache"
	"mentalwell/internal/infrastructure/database"
	"mentalwell/internal/repository"
	"mentalwell/internal/service"
	"mentalwell/internal/session"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/jwt"
	"mentalwell/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	SessionSync *service.SessionSyncService
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, cfg.Session.StoreTimeout)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	app.SessionSync = service.NewSessionSyncService(db, redisClient, log, cfg.Session.SweepInterval)
	app.Server = initializeServer(cfg, log, db, redisClient)

	return app, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) *http.Server {
	pointers := jwt.NewJWTService(cfg.Session)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	recordRepo := repository.NewEmotionalRecordRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	activityRepo := repository.NewCompletedActivityRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)
	analysisCache := repository.NewAnalysisCache(redisClient)
	configRepo := repository.NewSystemConfigRepository(redisClient)

	auditService := service.NewAuditService(log, auditLogRepo)
	sessions := session.NewController(userRepo, sessionRepo, pointers, auditService, cfg.Session, log)

	// Initialize usecases
	registrationUsecase := usecase.NewRegistrationUsecase(log, userRepo, auditService, customValidator)
	profileUsecase := usecase.NewProfileUsecase(log, userRepo, auditService, sessions)
	adminUsecase := usecase.NewAdminUsecase(log, userRepo, recordRepo, configRepo, auditService, sessions, customValidator)
	recordUsecase := usecase.NewEmotionalRecordUsecase(log, recordRepo, userRepo, auditService)
	recommendationUsecase := usecase.NewRecommendationUsecase(log, recordRepo, activityRepo, auditService)
	assessmentUsecase := usecase.NewAssessmentUsecase(log, assessmentRepo, auditService)
	analysisUsecase := usecase.NewAnalysisUsecase(log, analysis.NewCommandRunner(cfg.Analysis, log), analysisCache, cfg.Analysis.CacheTTL)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:           handler.NewAuthHandler(registrationUsecase, sessions, customValidator, log),
		Page:           handler.NewPageHandler(recordUsecase, adminUsecase),
		Profile:        handler.NewProfileHandler(profileUsecase, sessions, customValidator),
		Record:         handler.NewEmotionalRecordHandler(recordUsecase, customValidator),
		Recommendation: handler.NewRecommendationHandler(recommendationUsecase, customValidator),
		Assessment:     handler.NewAssessmentHandler(assessmentUsecase, customValidator),
		Analysis:       handler.NewAnalysisHandler(analysisUsecase),
		Admin:          handler.NewAdminHandler(adminUsecase, customValidator),
	}

	// Initialize middleware
	pathGate := middleware.NewPathGate(cfg.Session.CookieName)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, sessions, pathGate, corsMiddleware)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.SessionSync.SyncOnStartup(ctx); err != nil {
		app.Log.Warnf("Failed to sync session whitelist on startup: %+v", err)
	}
	cancel()
	app.SessionSync.Start()

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal or a server failure
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		app.Log.Errorf("Server failed: %v", serveErr)
	}

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
	return serveErr
}

// Close stops background work and closes all connections
func (app *App) Close() {
	if app.SessionSync != nil {
		app.SessionSync.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
