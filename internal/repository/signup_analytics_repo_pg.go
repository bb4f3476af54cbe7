package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgSignupAnalyticsRepository struct {
	db *gorm.DB
}

func NewPGSignupAnalyticsRepository(db *gorm.DB) SignupAnalyticsRepository {
	return &pgSignupAnalyticsRepository{db: db}
}

func (r *pgSignupAnalyticsRepository) Create(ctx context.Context, record *model.SignupAnalytics) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *pgSignupAnalyticsRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SignupAnalytics{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *pgSignupAnalyticsRepository) Summary(ctx context.Context, filter SignupFilter) ([]SignupSummaryRow, error) {
	query := r.db.WithContext(ctx).Model(&model.SignupAnalytics{}).
		Select("country, type, COUNT(*) AS clicks").
		Group("country, type")

	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}

	var rows []SignupSummaryRow
	if err := query.Order("clicks DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
