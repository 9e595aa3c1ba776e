package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WeekLength is the number of days in the weekly attendance strip
const WeekLength = 7

// AttendanceQuery filters the admin attendance listing
type AttendanceQuery struct {
	// Search matches a substring of the student name or id, ignoring case
	Search string
	// Date is an exact day (YYYY-MM-DD)
	Date       string
	Department *domain.Department
}

// AttendanceService records and queries daily attendance
type AttendanceService struct {
	attendanceRepo *repository.AttendanceRepository
	studentRepo    *repository.StudentRepository
	classRepo      *repository.ClassRepository
	notifier       *NotificationService
	clock          Clock
	loc            *time.Location
	logger         *zap.Logger
}

func NewAttendanceService(
	attendanceRepo *repository.AttendanceRepository,
	studentRepo *repository.StudentRepository,
	classRepo *repository.ClassRepository,
	notifier *NotificationService,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		notifier:       notifier,
		clock:          clock,
		loc:            loc,
		logger:         logger,
	}
}

// Mark records today's attendance for a student. Name and department are
// copied from the roster. A student can be marked at most once per day.
func (s *AttendanceService) Mark(ctx context.Context, studentID string, req *domain.MarkAttendanceRequest) (*domain.AttendanceRecordDTO, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	day := util.DayKey(now, s.loc)

	marked, err := s.attendanceRepo.ExistsForDay(ctx, student.ID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if marked {
		return nil, ErrAlreadyMarked
	}

	record := &domain.AttendanceRecord{
		ID:          uuid.New().String(),
		StudentID:   student.ID,
		StudentName: student.Name,
		Department:  student.Department,
		Day:         day,
		MarkedAt:    now.UTC(),
	}

	if req != nil {
		className, err := s.resolveClassName(ctx, student.Department, req.ClassName)
		if err != nil {
			return nil, err
		}
		record.ClassName = className

		if req.Location != nil {
			lat, lng := req.Location.Latitude, req.Location.Longitude
			record.Latitude = &lat
			record.Longitude = &lng
			record.Address = strings.TrimSpace(req.Location.Address)
		}
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMarked
		}
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	s.logger.Info("attendance marked",
		zap.String("student_id", record.StudentID),
		zap.String("day", record.Day),
		zap.String("class", record.ClassName),
	)
	s.notifier.Notify(ctx, fmt.Sprintf("%s (%s) marked attendance", record.StudentName, record.StudentID))

	dto := mapper.ToAttendanceRecordDTO(record, s.loc)
	return &dto, nil
}

// GetStudentAttendance returns every record of a student, newest first
func (s *AttendanceService) GetStudentAttendance(ctx context.Context, studentID string) ([]domain.AttendanceRecordDTO, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.List(ctx, repository.AttendanceFilter{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return mapper.ToAttendanceRecordDTOs(records, s.loc), nil
}

// GetTodayStatus reports whether the student is already marked today
func (s *AttendanceService) GetTodayStatus(ctx context.Context, studentID string) (*domain.TodayStatusDTO, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	record, err := s.attendanceRepo.GetForDay(ctx, student.ID, util.DayKey(s.clock(), s.loc))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.TodayStatusDTO{AlreadyMarked: false}, nil
		}
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	dto := mapper.ToAttendanceRecordDTO(record, s.loc)
	return &domain.TodayStatusDTO{AlreadyMarked: true, Record: &dto}, nil
}

// GetWeeklyAttendance returns the last seven days ending today, oldest first
func (s *AttendanceService) GetWeeklyAttendance(ctx context.Context, studentID string) ([]domain.WeeklyDayDTO, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.weeklyDays(ctx, student.ID, s.clock())
}

// GetTodayAttendance returns today's records across all students, newest first
func (s *AttendanceService) GetTodayAttendance(ctx context.Context) ([]domain.AttendanceRecordDTO, error) {
	records, err := s.attendanceRepo.List(ctx, repository.AttendanceFilter{Day: util.DayKey(s.clock(), s.loc)})
	if err != nil {
		return nil, fmt.Errorf("failed to list today's attendance: %w", err)
	}
	return mapper.ToAttendanceRecordDTOs(records, s.loc), nil
}

// Search lists records for the admin panel, newest first
func (s *AttendanceService) Search(ctx context.Context, query AttendanceQuery) ([]domain.AttendanceRecordDTO, error) {
	filter := repository.AttendanceFilter{Search: strings.TrimSpace(query.Search)}

	if query.Date != "" {
		day, err := util.ParseDay(query.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Day = day.Format(util.DayLayout)
	}
	if query.Department != nil {
		if !query.Department.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDepartment, *query.Department)
		}
		filter.Department = query.Department
	}

	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search attendance: %w", err)
	}
	return mapper.ToAttendanceRecordDTOs(records, s.loc), nil
}

var csvHeader = []string{
	"Record ID", "Student ID", "Student Name", "Department", "Class",
	"Date", "Timestamp", "Latitude", "Longitude", "Address",
}

// ExportCSV writes records with a day in [from, to] as CSV, newest first.
// Empty bounds are open.
func (s *AttendanceService) ExportCSV(ctx context.Context, w io.Writer, from, to string) (int, error) {
	filter := repository.AttendanceFilter{}
	if from != "" {
		day, err := util.ParseDay(from, s.loc)
		if err != nil {
			return 0, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
		}
		filter.FromDay = day.Format(util.DayLayout)
	}
	if to != "" {
		day, err := util.ParseDay(to, s.loc)
		if err != nil {
			return 0, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
		}
		filter.ToDay = day.Format(util.DayLayout)
	}
	if filter.FromDay != "" && filter.ToDay != "" && filter.FromDay > filter.ToDay {
		return 0, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}

	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendance for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range records {
		r := &records[i]
		var lat, lng string
		if r.HasLocation() {
			lat = strconv.FormatFloat(*r.Latitude, 'f', 6, 64)
			lng = strconv.FormatFloat(*r.Longitude, 'f', 6, 64)
		}
		row := []string{
			r.ID,
			r.StudentID,
			r.StudentName,
			string(r.Department),
			r.ClassName,
			r.Day,
			r.MarkedAt.In(s.loc).Format(time.RFC3339),
			lat,
			lng,
			r.Address,
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(records), nil
}

// weeklyDays builds the seven-day strip ending at now's day
func (s *AttendanceService) weeklyDays(ctx context.Context, studentID string, now time.Time) ([]domain.WeeklyDayDTO, error) {
	days := util.LastNDays(now, s.loc, WeekLength)
	from := days[0].Format(util.DayLayout)
	to := days[len(days)-1].Format(util.DayLayout)

	records, err := s.attendanceRepo.List(ctx, repository.AttendanceFilter{
		StudentID: studentID,
		FromDay:   from,
		ToDay:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly attendance: %w", err)
	}

	byDay := make(map[string]time.Time, len(records))
	for _, r := range records {
		byDay[r.Day] = r.MarkedAt.In(s.loc)
	}

	result := make([]domain.WeeklyDayDTO, len(days))
	for i, day := range days {
		key := day.Format(util.DayLayout)
		entry := domain.WeeklyDayDTO{
			Date:  key,
			Label: util.ShortDayLabel(day),
		}
		if ts, ok := byDay[key]; ok {
			entry.Present = true
			entry.Timestamp = &ts
		}
		result[i] = entry
	}
	return result, nil
}

// resolveClassName returns the stored spelling of a class of the department,
// or "" when no class is given
func (s *AttendanceService) resolveClassName(ctx context.Context, department domain.Department, className string) (string, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return "", nil
	}

	classes, err := s.classRepo.List(ctx, &department)
	if err != nil {
		return "", fmt.Errorf("failed to list classes: %w", err)
	}

	key := domain.ClassNameKey(className)
	for _, class := range classes {
		if class.NameKey == key {
			return class.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not offered by %s", ErrUnknownClass, className, department)
}

func (s *AttendanceService) getStudent(ctx context.Context, id string) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}
