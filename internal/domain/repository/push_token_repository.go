package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
)

// PushTokenRepository defines operations over the device push-token registry
type PushTokenRepository interface {
	FindActiveByUser(ctx context.Context, userID string) ([]*entity.PushToken, error)
	Save(ctx context.Context, token *entity.PushToken) error
	Deactivate(ctx context.Context, token string) error
}
