package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
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

type testEnv struct {
	db            *gorm.DB
	clock         *testutil.FakeClock
	loc           *time.Location
	notifications *service.NotificationService
	roster        *service.RosterService
	attendance    *service.AttendanceService
	codes         *service.DailyCodeService
	stats         *service.StatsService
	auth          *service.AuthService
	tokens        *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimit(t, 50)
}

func newTestEnvWithLimit(t *testing.T, notificationLimit int) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	clock := testutil.NewFakeClock(testNow)
	loc := time.UTC
	logger := zap.NewNop()

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), notificationLimit, clock.Now, loc, logger)
	roster := service.NewRosterService(studentRepo, classRepo, notifications, clock.Now, loc, logger)
	attendance := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, notifications, clock.Now, loc, logger)
	codes := service.NewDailyCodeService(repository.NewDailyCodeRepository(db), notifications, 6, clock.Now, loc, logger)
	stats := service.NewStatsService(studentRepo, attendanceRepo, attendance, clock.Now, loc, logger)

	tokens, err := auth.NewTokenManager("test-secret", "attendance-test", time.Hour)
	require.NoError(t, err)

	authSvc, err := service.NewAuthService(
		repository.NewSessionRepository(db),
		studentRepo,
		codes,
		tokens,
		service.AdminCredentials{Password: testAdminPassword, BcryptCost: bcrypt.MinCost},
		clock.Now,
		logger,
	)
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		clock:         clock,
		loc:           loc,
		notifications: notifications,
		roster:        roster,
		attendance:    attendance,
		codes:         codes,
		stats:         stats,
		auth:          authSvc,
		tokens:        tokens,
	}
}

// seedStudents inserts ST001 Alice (CSE), ST002 Bob (ISE) and ST003 Carol (CSE)
func (e *testEnv) seedStudents(t *testing.T) {
	t.Helper()
	testutil.CreateTestStudent(t, e.db, 1, "Alice Johnson", domain.DepartmentCSE)
	testutil.CreateTestStudent(t, e.db, 2, "Bob Smith", domain.DepartmentISE)
	testutil.CreateTestStudent(t, e.db, 3, "Carol Davis", domain.DepartmentCSE)
}

func (e *testEnv) mark(t *testing.T, studentID string) *domain.AttendanceRecordDTO {
	t.Helper()
	record, err := e.attendance.Mark(context.Background(), studentID, &domain.MarkAttendanceRequest{})
	require.NoError(t, err)
	return record
}
