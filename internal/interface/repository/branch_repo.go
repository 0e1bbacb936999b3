package repository

import (
	"context"
	"errors"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormBranchRepository implements the BranchRepository interface
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GORM branch repository
func NewGormBranchRepository(db *gorm.DB) repository.BranchRepository {
	return &GormBranchRepository{
		db: db,
	}
}

// Branches GORM model for database mapping
type Branches struct {
	ID        string         `gorm:"primaryKey;column:id"`
	Name      string         `gorm:"column:name"`
	Address   string         `gorm:"column:address"`
	Phone     string         `gorm:"column:phone"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Branches) TableName() string {
	return "m_branches"
}

// GetByID finds a branch by id
func (r *GormBranchRepository) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	var branch Branches
	result := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&branch)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Branch{
		ID:        branch.ID,
		Name:      branch.Name,
		Address:   branch.Address,
		Phone:     branch.Phone,
		CreatedAt: branch.CreatedAt,
		UpdatedAt: branch.UpdatedAt,
	}, nil
}
