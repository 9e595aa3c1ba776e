package repository

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Add inserts a notification and drops the oldest entries beyond limit
func (r *NotificationRepository) Add(ctx context.Context, notification *domain.Notification, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return tx.Exec(
			"DELETE FROM notifications WHERE id NOT IN (SELECT id FROM notifications ORDER BY id DESC LIMIT ?)",
			limit,
		).Error
	})
}

// List returns up to limit notifications, newest first, and the total count
func (r *NotificationRepository) List(ctx context.Context, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Limit(limit).Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) Clear(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
