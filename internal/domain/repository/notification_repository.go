package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
)

// NotificationRepository defines storage operations for in-app notifications
type NotificationRepository interface {
	Insert(ctx context.Context, notification *entity.Notification) (string, error)
	FindByRecipient(ctx context.Context, recipientID string, limit int64) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, id string) error
	DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error)
}
