package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

// GameFilter narrows catalog and admin game listings. Page/Limit of zero
// means "return the full filtered set".
type GameFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
	Limit      int
}

type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Game, error)
	GetBySlug(ctx context.Context, slug string) (*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	List(ctx context.Context, filter GameFilter) ([]model.Game, int64, error)
}
