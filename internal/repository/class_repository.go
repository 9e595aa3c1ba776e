package repository

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
	"gorm.io/gorm"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) Create(ctx context.Context, class *domain.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

// List returns classes ordered by department and name, optionally for one department
func (r *ClassRepository) List(ctx context.Context, department *domain.Department) ([]domain.Class, error) {
	var classes []domain.Class

	query := r.db.WithContext(ctx).Model(&domain.Class{})
	if department != nil {
		query = query.Where("department = ?", *department)
	}

	err := query.Order("department ASC").Order("name_key ASC").Find(&classes).Error
	return classes, err
}

// ExistsByName reports whether the department already has a class with the
// given normalized name
func (r *ClassRepository) ExistsByName(ctx context.Context, department domain.Department, nameKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Class{}).
		Where("department = ? AND name_key = ?", department, nameKey).
		Count(&count).Error
	return count > 0, err
}
