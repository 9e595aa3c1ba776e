package repository

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
	"gorm.io/gorm"
)

// StudentFilter narrows a roster listing
type StudentFilter struct {
	// Search matches a substring of the name or id, case-insensitive
	Search     string
	Department *domain.Department
}

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *StudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	var student domain.Student
	err := r.db.WithContext(ctx).First(&student, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]domain.Student, error) {
	var students []domain.Student

	query := r.db.WithContext(ctx).Model(&domain.Student{})

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(name_key LIKE ? ESCAPE '\' OR LOWER(id) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}

	err := query.Order("department ASC").Order("name_key ASC").Order("seq ASC").Find(&students).Error
	return students, err
}

// NextSequence returns the numeric suffix for the next student id
func (r *StudentRepository) NextSequence(ctx context.Context) (int, error) {
	var maxSeq int
	err := r.db.WithContext(ctx).
		Model(&domain.Student{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Student{}).Count(&count).Error
	return count, err
}

// CountByDepartment returns the number of students per department.
// Departments without students are absent from the map.
func (r *StudentRepository) CountByDepartment(ctx context.Context) (map[domain.Department]int, error) {
	var rows []struct {
		Department domain.Department
		Count      int
	}

	err := r.db.WithContext(ctx).
		Model(&domain.Student{}).
		Select("department, COUNT(*) AS count").
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
