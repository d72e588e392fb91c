package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/dimmuramos04/sistema-seguimiento-estudiantes/api/swagger"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/handler"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/repository"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/migrations"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/cache"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/config"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/database"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/jobs"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/logger"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/storage"
)

// @title Sistema de Seguimiento de Estudiantes API
// @version 1.0.0
// @description Case management for the student well-being program: students, follow-up sessions, derivations, statistics and reports.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db, migrations.FS, logr); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	app, err := buildApp(ctx, cfg, db, redisClient, logr)
	if err != nil {
		return err
	}
	defer app.shutdown()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// application holds the wired handlers and the background components to stop.
type application struct {
	metrics *service.MetricsService
	auth    *service.AuthService
	audit   *repository.UserRepository

	authHandler        *handler.AuthHandler
	userHandler        *handler.UserHandler
	catalogHandler     *handler.CatalogHandler
	studentHandler     *handler.StudentHandler
	sessionHandler     *handler.SessionHandler
	dashboardHandler   *handler.DashboardHandler
	exportHandler      *handler.ExportHandler
	reportHandler      *handler.ReportHandler
	maintenanceHandler *handler.MaintenanceHandler
	metricsHandler     *handler.MetricsHandler

	queue *jobs.Queue
}

func (a *application) shutdown() {
	if a.queue != nil {
		a.queue.Stop()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	validate := catalog.NewValidator()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	periodRepo := repository.NewAttentionPeriodRepository(db)
	historyRepo := repository.NewChangeHistoryRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	studentSvc := service.NewStudentService(service.StudentServiceDeps{
		Students:       studentRepo,
		Sessions:       sessionRepo,
		Periods:        periodRepo,
		History:        historyRepo,
		Cache:          cacheSvc,
		Validator:      validate,
		Logger:         logr,
		AlertThreshold: cfg.Alerts.ThresholdDays,
	})
	sessionSvc := service.NewSessionService(sessionRepo, studentRepo, userRepo, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
		Metrics:  metrics,
	}, logr)
	exportSvc := service.NewExportService(studentRepo, sessionRepo, userRepo, logr)
	maintenanceSvc := service.NewMaintenanceService(service.MaintenanceDeps{
		Students: studentRepo,
		Periods:  periodRepo,
		Roles:    userRepo,
		Users:    userSvc,
		Audit:    userRepo,
		Cache:    cacheSvc,
		Logger:   logr,
	})

	app := &application{
		metrics:            metrics,
		auth:               authSvc,
		audit:              userRepo,
		authHandler:        handler.NewAuthHandler(authSvc),
		userHandler:        handler.NewUserHandler(userSvc),
		catalogHandler:     handler.NewCatalogHandler(),
		studentHandler:     handler.NewStudentHandler(studentSvc),
		sessionHandler:     handler.NewSessionHandler(sessionSvc),
		dashboardHandler:   handler.NewDashboardHandler(dashboardSvc),
		exportHandler:      handler.NewExportHandler(exportSvc),
		maintenanceHandler: handler.NewMaintenanceHandler(maintenanceSvc),
		metricsHandler: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"cache":    cacheSvc,
		}),
	}

	if !cfg.Reports.Enabled {
		return app, nil
	}

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportRepo := repository.NewReportRepository(db)
	builder := service.NewReportBuilder(service.ReportBuilderDeps{
		Dashboard: dashboardSvc,
		Students:  studentRepo,
		Sessions:  sessionRepo,
		History:   historyRepo,
		Periods:   periodRepo,
		Caseload:  studentRepo,
	})
	worker := service.NewReportWorker(service.ReportWorkerDeps{
		Repo:      reportRepo,
		Builder:   builder,
		Files:     files,
		Signer:    signer,
		Metrics:   metrics,
		Logger:    logr,
		APIPrefix: cfg.APIPrefix,
	})
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:     cfg.Reports.WorkerConcurrency,
		MaxRetries:  cfg.Reports.WorkerRetries,
		RetryDelay:  2 * time.Second,
		OnExhausted: worker.MarkExhausted,
		Logger:      logr,
	})
	queue.Start(ctx)
	app.queue = queue

	reportSvc := service.NewReportService(reportRepo, studentRepo, queue, files, signer, validate, logr, service.ReportServiceConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	if n := reportSvc.RecoverPendingJobs(ctx); n > 0 {
		logr.Info("re-enqueued pending report jobs", zap.Int("jobs", n))
	}
	reportSvc.StartCleanup(ctx)
	app.reportHandler = handler.NewReportHandler(reportSvc)

	return app, nil
}
