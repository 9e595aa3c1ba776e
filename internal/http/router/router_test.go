package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/http/handler"
	"github.com/straye-as/attendance-api/internal/http/middleware"
	"github.com/straye-as/attendance-api/internal/http/router"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/service"
	"github.com/straye-as/attendance-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "admin123"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := testutil.SetupTestDB(t)
	clock := testutil.NewFakeClock(time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC))
	loc := time.UTC
	logger := zap.NewNop()

	testutil.CreateTestStudent(t, db, 1, "Alice", domain.DepartmentCSE)
	testutil.CreateTestStudent(t, db, 2, "Bob", domain.DepartmentISE)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "attendance-api", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 10},
		Security: config.SecurityConfig{
			ContentTypeNosniff: true,
			FrameOptions:       "DENY",
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerMinute:      1000,
			RequestsPerMinuteAuth:  1000,
			LoginAttemptsPerMinute: 1000,
		},
	}

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), 50, clock.Now, loc, logger)
	roster := service.NewRosterService(studentRepo, classRepo, notifications, clock.Now, loc, logger)
	attendance := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, notifications, clock.Now, loc, logger)
	codes := service.NewDailyCodeService(repository.NewDailyCodeRepository(db), notifications, 6, clock.Now, loc, logger)
	stats := service.NewStatsService(studentRepo, attendanceRepo, attendance, clock.Now, loc, logger)

	tokens, err := auth.NewTokenManager("router-test-secret", "attendance-test", time.Hour)
	require.NoError(t, err)
	authService, err := service.NewAuthService(
		repository.NewSessionRepository(db),
		studentRepo,
		codes,
		tokens,
		service.AdminCredentials{Password: adminPassword, BcryptCost: bcrypt.MinCost},
		clock.Now,
		logger,
	)
	require.NoError(t, err)

	rt := router.NewRouter(
		cfg,
		logger,
		db,
		auth.NewMiddleware(authService, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		router.Handlers{
			Auth:         handler.NewAuthHandler(authService, logger),
			Student:      handler.NewStudentHandler(roster, attendance, stats, logger),
			Class:        handler.NewClassHandler(roster, logger),
			Attendance:   handler.NewAttendanceHandler(attendance, stats, logger),
			DailyCode:    handler.NewDailyCodeHandler(codes, logger),
			Stats:        handler.NewStatsHandler(stats, logger),
			Notification: handler.NewNotificationHandler(notifications, logger),
		},
	)

	server := httptest.NewServer(rt.Setup())
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_Health(t *testing.T) {
	server := newTestServer(t)

	resp := call(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp = call(t, server, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])

	resp = call(t, server, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SwaggerDisabledByDefault(t *testing.T) {
	server := newTestServer(t)

	resp := call(t, server, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RequiresToken(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/students", "/api/v1/me/attendance"} {
		resp := call(t, server, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := call(t, server, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_FullDayFlow(t *testing.T) {
	server := newTestServer(t)

	// Admin logs in and issues today's code
	resp := call(t, server, http.MethodPost, "/api/v1/auth/admin/login", "", domain.AdminLoginRequest{Password: adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken := decodeBody[domain.LoginResponse](t, resp).Token

	resp = call(t, server, http.MethodPost, "/api/v1/daily-code", adminToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	code := decodeBody[domain.DailyCodeDTO](t, resp).Code

	resp = call(t, server, http.MethodPost, "/api/v1/classes", adminToken, domain.CreateClassRequest{Name: "Compilers", Department: domain.DepartmentCSE})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Alice logs in with the code and marks attendance
	resp = call(t, server, http.MethodPost, "/api/v1/auth/student/login", "", domain.StudentLoginRequest{
		StudentID:  "ST001",
		Name:       "alice",
		Department: domain.DepartmentCSE,
		DailyCode:  code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[domain.LoginResponse](t, resp)
	assert.Equal(t, "ST001", login.User.ID)
	studentToken := login.Token

	resp = call(t, server, http.MethodGet, "/api/v1/me/classes", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]domain.ClassDTO](t, resp), 1)

	resp = call(t, server, http.MethodPost, "/api/v1/me/attendance", studentToken, domain.MarkAttendanceRequest{ClassName: "compilers"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/v1/me/attendance", studentToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Students cannot reach admin routes, and the admin has no "me"
	resp = call(t, server, http.MethodGet, "/api/v1/stats/overview", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = call(t, server, http.MethodGet, "/api/v1/me/attendance", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin sees the mark in the overview
	resp = call(t, server, http.MethodGet, "/api/v1/stats/overview", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overview := decodeBody[domain.OverviewDTO](t, resp)
	assert.Equal(t, 2, overview.TotalStudents)
	assert.Equal(t, 1, overview.TotalPresent)
	assert.Equal(t, 50.0, overview.PresentRate)

	resp = call(t, server, http.MethodGet, "/api/v1/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notifications := decodeBody[domain.NotificationListDTO](t, resp)
	assert.NotEmpty(t, notifications.Items)

	// Logging out invalidates the session
	resp = call(t, server, http.MethodPost, "/api/v1/auth/logout", studentToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = call(t, server, http.MethodGet, "/api/v1/auth/me", studentToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
