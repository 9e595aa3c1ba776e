package repository

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
	"gorm.io/gorm"
)

type DailyCodeRepository struct {
	db *gorm.DB
}

func NewDailyCodeRepository(db *gorm.DB) *DailyCodeRepository {
	return &DailyCodeRepository{db: db}
}

func (r *DailyCodeRepository) Create(ctx context.Context, code *domain.DailyCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// Latest returns the most recently issued code
func (r *DailyCodeRepository) Latest(ctx context.Context) (*domain.DailyCode, error) {
	var code domain.DailyCode
	err := r.db.WithContext(ctx).Order("id DESC").First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// DeleteBefore removes every code older than the one with id keepFromID
func (r *DailyCodeRepository) DeleteBefore(ctx context.Context, keepFromID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id < ?", keepFromID).Delete(&domain.DailyCode{})
	return result.RowsAffected, result.Error
}
