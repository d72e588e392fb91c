package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/repository"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/migrations"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/cache"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/config"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/database"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/logger"
)

type options struct {
	migrate         bool
	createAdmin     bool
	trimText        bool
	backfillPeriods bool
	username        string
	fullName        string
	password        string
}

func main() {
	var opts options
	flag.BoolVar(&opts.migrate, "migrate", false, "Apply pending database migrations")
	flag.BoolVar(&opts.createAdmin, "create-admin", false, "Create the first administrator if none exists")
	flag.BoolVar(&opts.trimText, "trim-text", false, "Strip surrounding whitespace from student text columns")
	flag.BoolVar(&opts.backfillPeriods, "backfill-periods", false, "Open the initial attention period for students without one")
	flag.StringVar(&opts.username, "username", "", "Administrator username (defaults to ADMIN_USERNAME)")
	flag.StringVar(&opts.fullName, "full-name", "", "Administrator full name (defaults to ADMIN_FULL_NAME)")
	flag.StringVar(&opts.password, "password", "", "Administrator password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	if !opts.migrate && !opts.createAdmin && !opts.trimText && !opts.backfillPeriods {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logr); err != nil {
		logr.Error("maintenance failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if opts.migrate {
		if err := database.Migrate(ctx, db, migrations.FS, logr); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		if redisClient, err = cache.NewRedis(cfg.Redis); err != nil {
			logr.Warn("redis unavailable, dashboard cache will not be invalidated", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := catalog.NewValidator()
	userRepo := repository.NewUserRepository(db)
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), nil, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	svc := service.NewMaintenanceService(service.MaintenanceDeps{
		Students: repository.NewStudentRepository(db),
		Periods:  repository.NewAttentionPeriodRepository(db),
		Roles:    userRepo,
		Users:    service.NewUserService(userRepo, validate, logr),
		Audit:    userRepo,
		Cache:    cacheSvc,
		Logger:   logr,
	})

	if opts.createAdmin {
		username := firstNonEmpty(opts.username, cfg.Bootstrap.AdminUsername)
		fullName := firstNonEmpty(opts.fullName, cfg.Bootstrap.AdminFullName)
		password := firstNonEmpty(opts.password, cfg.Bootstrap.AdminPassword)
		user, err := svc.EnsureAdmin(ctx, username, fullName, password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Printf("administrador %q creado\n", user.Username)
	}

	if opts.trimText {
		n, err := svc.TrimText(ctx, service.SystemActor)
		if err != nil {
			return fmt.Errorf("trim text: %w", err)
		}
		fmt.Printf("%d estudiantes actualizados\n", n)
	}

	if opts.backfillPeriods {
		result, err := svc.BackfillPeriods(ctx, service.SystemActor)
		if err != nil {
			return fmt.Errorf("backfill periods: %w", err)
		}
		fmt.Printf("%d periodos creados, %d estudiantes omitidos\n", result.Created, len(result.Skipped))
		for _, rut := range result.Skipped {
			fmt.Printf("  omitido: %s\n", rut)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
