package repository

import (
	"context"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
}
