package repository

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
	"gorm.io/gorm"
)

// AttendanceFilter narrows an attendance listing. Empty fields are ignored.
type AttendanceFilter struct {
	StudentID  string
	Search     string
	Day        string
	FromDay    string
	ToDay      string
	Department *domain.Department
}

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create appends a record. A second record for the same student and day
// violates the unique index and fails with gorm.ErrDuplicatedKey.
func (r *AttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AttendanceRepository) GetForDay(ctx context.Context, studentID, day string) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND day = ?", studentID, day).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) ExistsForDay(ctx context.Context, studentID, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Where("student_id = ? AND day = ?", studentID, day).
		Count(&count).Error
	return count > 0, err
}

// List returns matching records, newest first
func (r *AttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord

	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.AttendanceRecord{}), filter)

	err := query.Order("marked_at DESC").Order("id ASC").Find(&records).Error
	return records, err
}

// ListDays returns the distinct days on which a student is marked within [fromDay, toDay]
func (r *AttendanceRepository) ListDays(ctx context.Context, studentID, fromDay, toDay string) ([]string, error) {
	var days []string
	err := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Where("student_id = ? AND day >= ? AND day <= ?", studentID, fromDay, toDay).
		Distinct().
		Order("day ASC").
		Pluck("day", &days).Error
	return days, err
}

// CountByDepartmentForDay returns how many students of each department are
// marked present on day
func (r *AttendanceRepository) CountByDepartmentForDay(ctx context.Context, day string) (map[domain.Department]int, error) {
	var rows []struct {
		Department domain.Department
		Count      int
	}

	err := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Select("department, COUNT(*) AS count").
		Where("day = ?", day).
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Department]int, len(rows))
	for _, row := range rows {
		counts[row.Department] = row.Count
	}
	return counts, nil
}

func (r *AttendanceRepository) applyFilter(query *gorm.DB, filter AttendanceFilter) *gorm.DB {
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(student_name_key LIKE ? ESCAPE '\' OR LOWER(student_id) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.Day != "" {
		query = query.Where("day = ?", filter.Day)
	}
	if filter.FromDay != "" {
		query = query.Where("day >= ?", filter.FromDay)
	}
	if filter.ToDay != "" {
		query = query.Where("day <= ?", filter.ToDay)
	}
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	return query
}
