package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgRoleRepository struct {
	db *gorm.DB
}

func NewPGRoleRepository(db *gorm.DB) RoleRepository {
	return &pgRoleRepository{db: db}
}

func (r *pgRoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *pgRoleRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
