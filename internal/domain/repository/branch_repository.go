package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
)

// BranchRepository reads the salon branch directory
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
}
