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

	"github.com/straye-as/attendance-api/docs"
	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/database"
	"github.com/straye-as/attendance-api/internal/http/handler"
	"github.com/straye-as/attendance-api/internal/http/middleware"
	"github.com/straye-as/attendance-api/internal/http/router"
	"github.com/straye-as/attendance-api/internal/jobs"
	"github.com/straye-as/attendance-api/internal/logger"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/seed"
	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

// @title Attendance API
// @version 1.0
// @description Student attendance tracking with daily login codes, department statistics and an admin notification log

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token from a login endpoint, as "Bearer <token>"

const jobTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In development secrets come from environment variables,
	// in staging/production optionally from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	// Repositories
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	dailyCodeRepo := repository.NewDailyCodeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	if cfg.Attendance.SeedEnabled {
		if err := seedRoster(ctx, cfg, studentRepo, classRepo, loc, log); err != nil {
			return err
		}
	}

	// Services
	clock := service.Clock(service.SystemClock)
	notificationService := service.NewNotificationService(notificationRepo, cfg.Attendance.NotificationLimit, clock, loc, log)
	rosterService := service.NewRosterService(studentRepo, classRepo, notificationService, clock, loc, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, notificationService, clock, loc, log)
	dailyCodeService := service.NewDailyCodeService(dailyCodeRepo, notificationService, cfg.Attendance.DailyCodeLength, clock, loc, log)
	statsService := service.NewStatsService(studentRepo, attendanceRepo, attendanceService, clock, loc, log)

	tokens, err := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTLDuration())
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	authService, err := service.NewAuthService(
		sessionRepo,
		studentRepo,
		dailyCodeService,
		tokens,
		service.AdminCredentials{
			Password:     cfg.Auth.AdminPassword,
			PasswordHash: cfg.Auth.AdminPasswordHash,
		},
		clock,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	// Middleware
	authMiddleware := auth.NewMiddleware(authService, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Student:      handler.NewStudentHandler(rosterService, attendanceService, statsService, log),
		Class:        handler.NewClassHandler(rosterService, log),
		Attendance:   handler.NewAttendanceHandler(attendanceService, statsService, log),
		DailyCode:    handler.NewDailyCodeHandler(dailyCodeService, log),
		Stats:        handler.NewStatsHandler(statsService, log),
		Notification: handler.NewNotificationHandler(notificationService, log),
	})

	// Background jobs
	scheduler := jobs.NewScheduler(loc, log)
	if err := jobs.RegisterSessionSweepJob(scheduler, authService, log, cfg.Jobs.SessionSweepCron, jobTimeout); err != nil {
		return fmt.Errorf("failed to register session sweep job: %w", err)
	}
	if cfg.Jobs.CodeRotationEnabled {
		if err := jobs.RegisterDailyCodeJob(scheduler, dailyCodeService, log, cfg.Jobs.CodeRotationCron, jobTimeout, true); err != nil {
			return fmt.Errorf("failed to register daily code job: %w", err)
		}
	} else {
		log.Info("Daily code rotation disabled, codes are issued by the admin")
	}
	scheduler.Start()
	log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		<-scheduler.Stop().Done()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// The in-memory store goes away with the last connection
		log.Info("Server stopped gracefully, attendance data discarded")
	}

	return nil
}

// seedRoster loads the sample roster, or the configured seed file
func seedRoster(
	ctx context.Context,
	cfg *config.Config,
	studentRepo *repository.StudentRepository,
	classRepo *repository.ClassRepository,
	loc *time.Location,
	log *zap.Logger,
) error {
	var (
		roster *seed.Roster
		err    error
		source = "embedded"
	)
	if cfg.Attendance.SeedFile != "" {
		source = cfg.Attendance.SeedFile
		roster, err = seed.LoadFile(cfg.Attendance.SeedFile)
	} else {
		roster, err = seed.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load roster seed: %w", err)
	}

	loader := seed.NewLoader(studentRepo, classRepo, loc, service.SystemClock, log)
	result, err := loader.Apply(ctx, roster)
	if err != nil {
		return fmt.Errorf("failed to seed roster: %w", err)
	}

	log.Info("Roster seeded",
		zap.String("source", source),
		zap.Int("students", result.Students),
		zap.Int("classes", result.Classes),
	)
	return nil
}
