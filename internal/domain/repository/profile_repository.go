package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
)

// StylistRepository reads stylist profiles
type StylistRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Stylist, error)
}

// ServiceRepository reads the service catalog
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.SalonService, error)
}

// ClientRepository reads customer profiles
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Client, error)
}
