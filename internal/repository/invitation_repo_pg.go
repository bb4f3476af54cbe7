package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type pgInvitationRepository struct {
	db *gorm.DB
}

func NewPGInvitationRepository(db *gorm.DB) InvitationRepository {
	return &pgInvitationRepository{db: db}
}

func (r *pgInvitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := r.db.WithContext(ctx).Preload("Role").
		First(&invitation, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *pgInvitationRepository) GetPendingByEmail(ctx context.Context, email string, now time.Time) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.WithContext(ctx).Preload("Role").
		Where("lower(email) = lower(?) AND is_accepted = false AND is_expired = false AND expires_at > ?", email, now).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *pgInvitationRepository) ReplaceForEmail(ctx context.Context, invitation *model.Invitation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("lower(email) = lower(?) AND (is_accepted = true OR is_expired = true OR expires_at <= ?)",
				invitation.Email, time.Now()).
			Delete(&model.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Create(invitation).Error
	})
}

func (r *pgInvitationRepository) Update(ctx context.Context, invitation *model.Invitation) error {
	return r.db.WithContext(ctx).Save(invitation).Error
}

func (r *pgInvitationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("is_accepted = false AND is_expired = false AND expires_at <= ?", now).
		Update("is_expired", true)
	return result.RowsAffected, result.Error
}

func (r *pgInvitationRepository) List(ctx context.Context) ([]model.Invitation, error) {
	var invitations []model.Invitation
	if err := r.db.WithContext(ctx).Preload("Role").
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}
