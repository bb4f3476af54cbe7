package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgOtpRepository struct {
	db *gorm.DB
}

func NewPGOtpRepository(db *gorm.DB) OtpRepository {
	return &pgOtpRepository{db: db}
}

func (r *pgOtpRepository) Create(ctx context.Context, otp *model.Otp) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *pgOtpRepository) LatestUnverified(ctx context.Context, userID uuid.UUID) (*model.Otp, error) {
	var otp model.Otp
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_verified = false", userID).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *pgOtpRepository) Update(ctx context.Context, otp *model.Otp) error {
	return r.db.WithContext(ctx).Save(otp).Error
}
