package usecase

import (
	"context"
	"fmt"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
)

// NotificationService exposes the recipient-facing operations over the
// persisted in-app notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications repository.NotificationRepository, logger logger.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// List returns a recipient's notifications, newest first
func (s *NotificationService) List(ctx context.Context, recipientID string, limit int64) ([]*entity.Notification, error) {
	return s.notifications.FindByRecipient(ctx, recipientID, limit)
}

// UnreadCount returns how many notifications the recipient has not read
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.CountUnread(ctx, recipientID)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of a recipient as read
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.notifications.MarkAllRead(ctx, recipientID); err != nil {
		return fmt.Errorf("mark all read for %s: %w", recipientID, err)
	}
	return nil
}

// Delete removes one notification
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.notifications.Delete(ctx, id)
}

// DeleteAll removes every notification of a recipient and returns the count
func (s *NotificationService) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	deleted, err := s.notifications.DeleteAllForRecipient(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Deleted notifications", "recipientId", recipientID, "count", deleted)
	return deleted, nil
}
