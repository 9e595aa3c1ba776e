package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"go.uber.org/zap"
)

// NotificationService keeps the capped admin activity log
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	limit            int
	clock            Clock
	loc              *time.Location
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance.
// limit is the maximum number of notifications kept.
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	limit int,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) *NotificationService {
	if limit < 1 {
		limit = 50
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		limit:            limit,
		clock:            clock,
		loc:              loc,
		logger:           logger,
	}
}

// Limit returns the capacity of the log
func (s *NotificationService) Limit() int {
	return s.limit
}

// Add records a message at the head of the log
func (s *NotificationService) Add(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: notification message is required", ErrInvalidInput)
	}

	notification := &domain.Notification{
		Message:   message,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.notificationRepo.Add(ctx, notification, s.limit); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// Notify adds a message and only logs failures. Used for side-effect
// notifications of other operations, which must not fail because of the log.
func (s *NotificationService) Notify(ctx context.Context, message string) {
	if err := s.Add(ctx, message); err != nil {
		s.logger.Warn("failed to record notification",
			zap.String("message", message),
			zap.Error(err),
		)
	}
}

// List returns up to limit notifications, newest first. A limit outside
// 1..capacity returns the whole log.
func (s *NotificationService) List(ctx context.Context, limit int) (*domain.NotificationListDTO, error) {
	if limit < 1 || limit > s.limit {
		limit = s.limit
	}

	notifications, total, err := s.notificationRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	items := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		items[i] = mapper.ToNotificationDTO(&notifications[i], s.loc)
	}

	return &domain.NotificationListDTO{Items: items, Total: total}, nil
}

// Clear empties the log
func (s *NotificationService) Clear(ctx context.Context) error {
	removed, err := s.notificationRepo.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	s.logger.Info("notifications cleared", zap.Int64("removed", removed))
	return nil
}
