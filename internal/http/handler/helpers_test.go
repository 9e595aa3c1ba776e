package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/http/handler"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/service"
	"github.com/straye-as/attendance-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testAdminPassword = "admin123"

// Wednesday 13 March 2024, 10:00 UTC
var testNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

type handlerEnv struct {
	db    *gorm.DB
	clock *testutil.FakeClock

	roster        *service.RosterService
	attendance    *service.AttendanceService
	codes         *service.DailyCodeService
	notifications *service.NotificationService
	authService   *service.AuthService

	auth          *handler.AuthHandler
	students      *handler.StudentHandler
	classes       *handler.ClassHandler
	attendanceH   *handler.AttendanceHandler
	dailyCode     *handler.DailyCodeHandler
	stats         *handler.StatsHandler
	notificationH *handler.NotificationHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	clock := testutil.NewFakeClock(testNow)
	loc := time.UTC
	logger := zap.NewNop()

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), 50, clock.Now, loc, logger)
	roster := service.NewRosterService(studentRepo, classRepo, notifications, clock.Now, loc, logger)
	attendance := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, notifications, clock.Now, loc, logger)
	codes := service.NewDailyCodeService(repository.NewDailyCodeRepository(db), notifications, 6, clock.Now, loc, logger)
	stats := service.NewStatsService(studentRepo, attendanceRepo, attendance, clock.Now, loc, logger)

	tokens, err := auth.NewTokenManager("test-secret", "attendance-test", time.Hour)
	require.NoError(t, err)

	authService, err := service.NewAuthService(
		repository.NewSessionRepository(db),
		studentRepo,
		codes,
		tokens,
		service.AdminCredentials{Password: testAdminPassword, BcryptCost: bcrypt.MinCost},
		clock.Now,
		logger,
	)
	require.NoError(t, err)

	return &handlerEnv{
		db:            db,
		clock:         clock,
		roster:        roster,
		attendance:    attendance,
		codes:         codes,
		notifications: notifications,
		authService:   authService,
		auth:          handler.NewAuthHandler(authService, logger),
		students:      handler.NewStudentHandler(roster, attendance, stats, logger),
		classes:       handler.NewClassHandler(roster, logger),
		attendanceH:   handler.NewAttendanceHandler(attendance, stats, logger),
		dailyCode:     handler.NewDailyCodeHandler(codes, logger),
		stats:         handler.NewStatsHandler(stats, logger),
		notificationH: handler.NewNotificationHandler(notifications, logger),
	}
}

// seedStudents adds ST001 Alice (CSE), ST002 Bob (ISE) and ST003 Carol (CSE)
func (e *handlerEnv) seedStudents(t *testing.T) {
	t.Helper()
	testutil.CreateTestStudent(t, e.db, 1, "Alice", domain.DepartmentCSE)
	testutil.CreateTestStudent(t, e.db, 2, "Bob", domain.DepartmentISE)
	testutil.CreateTestStudent(t, e.db, 3, "Carol", domain.DepartmentCSE)
}

func adminContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		SessionID:   "admin-session",
		UserType:    domain.UserTypeAdmin,
		UserID:      domain.AdminUserID,
		DisplayName: service.AdminDisplayName,
	})
}

func studentContext(id, name string, dept domain.Department) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		SessionID:   "session-" + id,
		UserType:    domain.UserTypeStudent,
		UserID:      id,
		DisplayName: name,
		Department:  dept,
	})
}

func newRequest(ctx context.Context, method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(ctx)
}

// withURLParam sets a chi path parameter on the request
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func withUser(userCtx *auth.UserContext) context.Context {
	return auth.WithUserContext(context.Background(), userCtx)
}
