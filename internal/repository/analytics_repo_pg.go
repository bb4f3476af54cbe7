package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgAnalyticsRepository struct {
	db *gorm.DB
}

func NewPGAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &pgAnalyticsRepository{db: db}
}

func (r *pgAnalyticsRepository) Create(ctx context.Context, record *model.Analytics) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *pgAnalyticsRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Analytics, error) {
	var record model.Analytics
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *pgAnalyticsRepository) Update(ctx context.Context, record *model.Analytics) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *pgAnalyticsRepository) List(ctx context.Context, filter SessionFilter) ([]model.Analytics, int64, error) {
	query := r.scope(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.Limit > 0 {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var records []model.Analytics
	if err := query.Order("start_time DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *pgAnalyticsRepository) scope(ctx context.Context, filter SessionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Analytics{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.GameID != nil {
		query = query.Where("game_id = ?", *filter.GameID)
	}
	if filter.ActivityType != "" {
		query = query.Where("activity_type = ?", filter.ActivityType)
	}
	if !filter.From.IsZero() {
		query = query.Where("start_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("start_time < ?", filter.To)
	}
	return query
}

func (r *pgAnalyticsRepository) CountWhere(ctx context.Context, filter SessionFilter) (int64, error) {
	var count int64
	err := r.scope(ctx, filter).Count(&count).Error
	return count, err
}

func (r *pgAnalyticsRepository) SumDurationWhere(ctx context.Context, filter SessionFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, filter).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pgAnalyticsRepository) Popularity(ctx context.Context, from, to time.Time, limit int) ([]PopularityRow, error) {
	var rows []PopularityRow
	query := r.db.WithContext(ctx).Raw(`
        SELECT a.game_id, g.title, COUNT(*) AS sessions, COALESCE(SUM(a.duration), 0) AS total_duration
        FROM analytics a
        JOIN games g ON g.id = a.game_id
        WHERE a.start_time >= ? AND a.start_time < ?
        GROUP BY a.game_id, g.title
        ORDER BY sessions DESC, total_duration DESC
        LIMIT ?
    `, from, to, limit)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
