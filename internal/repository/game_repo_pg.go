package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgGameRepository struct {
	db *gorm.DB
}

func NewPGGameRepository(db *gorm.DB) GameRepository {
	return &pgGameRepository{db: db}
}

func (r *pgGameRepository) Create(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *pgGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *pgGameRepository) GetBySlug(ctx context.Context, slug string) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).First(&game, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *pgGameRepository) Update(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

func (r *pgGameRepository) List(ctx context.Context, filter GameFilter) ([]model.Game, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Game{})

	if filter.ActiveOnly {
		query = query.Where("is_active = true")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.Limit > 0 {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var games []model.Game
	if err := query.Order("title").Find(&games).Error; err != nil {
		return nil, 0, err
	}
	return games, total, nil
}
