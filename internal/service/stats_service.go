package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/util"
	"go.uber.org/zap"
)

// Weekly standing labels
const (
	StandingGood             = "Good"
	StandingNeedsImprovement = "Needs Improvement"

	// GoodStandingRate is the weekly rate at or above which a student is in good standing
	GoodStandingRate = 75.0
)

// StatsService derives statistics from the roster and attendance on every call
type StatsService struct {
	studentRepo    *repository.StudentRepository
	attendanceRepo *repository.AttendanceRepository
	attendance     *AttendanceService
	clock          Clock
	loc            *time.Location
	logger         *zap.Logger
}

func NewStatsService(
	studentRepo *repository.StudentRepository,
	attendanceRepo *repository.AttendanceRepository,
	attendance *AttendanceService,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		studentRepo:    studentRepo,
		attendanceRepo: attendanceRepo,
		attendance:     attendance,
		clock:          clock,
		loc:            loc,
		logger:         logger,
	}
}

// GetDepartmentStats returns one entry per department, in department order
func (s *StatsService) GetDepartmentStats(ctx context.Context) ([]domain.DepartmentStatsDTO, error) {
	return s.departmentStats(ctx, util.DayKey(s.clock(), s.loc))
}

// GetOverview summarizes today's attendance across all departments
func (s *StatsService) GetOverview(ctx context.Context) (*domain.OverviewDTO, error) {
	day := util.DayKey(s.clock(), s.loc)

	departments, err := s.departmentStats(ctx, day)
	if err != nil {
		return nil, err
	}

	overview := &domain.OverviewDTO{Date: day, Departments: departments}
	for _, d := range departments {
		overview.TotalStudents += d.TotalStudents
		overview.TotalPresent += d.PresentToday
	}
	overview.TotalAbsent = overview.TotalStudents - overview.TotalPresent
	if overview.TotalAbsent < 0 {
		overview.TotalAbsent = 0
	}
	overview.PresentRate = mapper.Percentage(overview.TotalPresent, overview.TotalStudents)
	overview.AbsentRate = mapper.Percentage(overview.TotalAbsent, overview.TotalStudents)

	return overview, nil
}

// GetStudentSummary returns the monthly and weekly attendance of a student
func (s *StatsService) GetStudentSummary(ctx context.Context, studentID string) (*domain.StudentSummaryDTO, error) {
	student, err := s.attendance.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.clock()

	first, last := util.MonthBounds(now, s.loc)
	days, err := s.attendanceRepo.ListDays(ctx, student.ID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly attendance: %w", err)
	}
	daysInMonth := util.DaysInMonth(now, s.loc)

	weekly, err := s.attendance.weeklyDays(ctx, student.ID, now)
	if err != nil {
		return nil, err
	}
	presentDays := 0
	for _, d := range weekly {
		if d.Present {
			presentDays++
		}
	}
	weeklyRate := mapper.Percentage(presentDays, len(weekly))
	standing := StandingNeedsImprovement
	if weeklyRate >= GoodStandingRate {
		standing = StandingGood
	}

	return &domain.StudentSummaryDTO{
		StudentID: student.ID,
		Monthly: domain.MonthlySummaryDTO{
			Month:       now.In(s.loc).Format("2006-01"),
			DaysPresent: len(days),
			DaysInMonth: daysInMonth,
			Rate:        mapper.Percentage(len(days), daysInMonth),
		},
		Weekly: domain.WeeklySummaryDTO{
			PresentDays: presentDays,
			TotalDays:   len(weekly),
			Rate:        weeklyRate,
			Standing:    standing,
			Days:        weekly,
		},
	}, nil
}

func (s *StatsService) departmentStats(ctx context.Context, day string) ([]domain.DepartmentStatsDTO, error) {
	totals, err := s.studentRepo.CountByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	present, err := s.attendanceRepo.CountByDepartmentForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}

	stats := make([]domain.DepartmentStatsDTO, len(domain.Departments))
	for i, dept := range domain.Departments {
		stats[i] = domain.DepartmentStatsDTO{
			Department:     dept,
			TotalStudents:  totals[dept],
			PresentToday:   present[dept],
			AttendanceRate: mapper.Percentage(present[dept], totals[dept]),
		}
	}
	return stats, nil
}
