package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/database"
	"github.com/straye-as/attendance-api/internal/http/handler"
	"github.com/straye-as/attendance-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/attendance-api/docs" // Import generated swagger docs
)

// Handlers bundles the HTTP handlers mounted by the router
type Handlers struct {
	Auth         *handler.AuthHandler
	Student      *handler.StudentHandler
	Class        *handler.ClassHandler
	Attendance   *handler.AttendanceHandler
	DailyCode    *handler.DailyCodeHandler
	Stats        *handler.StatsHandler
	Notification *handler.NotificationHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security, "/swagger/"))
	r.Use(middleware.CORS(&rt.cfg.CORS, &rt.cfg.App, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Basic liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitLogin)
			r.Post("/auth/admin/login", h.Auth.AdminLogin)
			r.Post("/auth/student/login", h.Auth.StudentLogin)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(middleware.CaptureUser)
			r.Use(rt.rateLimiter.Limit)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)
			r.Get("/classes", h.Class.List)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)

				r.Route("/students", func(r chi.Router) {
					r.Get("/", h.Student.List)
					r.Post("/", h.Student.Create)
					r.Get("/{id}", h.Student.GetByID)
					r.Get("/{id}/attendance", h.Student.GetAttendance)
					r.Get("/{id}/weekly", h.Student.GetWeekly)
					r.Get("/{id}/summary", h.Student.GetSummary)
				})

				r.Post("/classes", h.Class.Create)

				r.Get("/daily-code", h.DailyCode.Get)
				r.Post("/daily-code", h.DailyCode.Generate)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", h.Attendance.List)
					r.Get("/today", h.Attendance.Today)
					r.Get("/export", h.Attendance.Export)
				})

				r.Get("/stats/departments", h.Stats.Departments)
				r.Get("/stats/overview", h.Stats.Overview)

				r.Get("/notifications", h.Notification.List)
				r.Delete("/notifications", h.Notification.Clear)
			})

			// Student
			r.Route("/me", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireStudent)

				r.Post("/attendance", h.Attendance.Mark)
				r.Get("/attendance", h.Attendance.MyAttendance)
				r.Get("/attendance/today", h.Attendance.MyToday)
				r.Get("/attendance/weekly", h.Attendance.MyWeekly)
				r.Get("/summary", h.Attendance.MySummary)
				r.Get("/classes", h.Class.MyClasses)
			})
		})
	})

	return r
}

// databaseHealth is the readiness probe with pool statistics
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeHealth(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// readiness combines the dependency checks
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	status := http.StatusOK

	if err := database.HealthCheck(rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeHealth(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
