package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type OtpRepository interface {
	Create(ctx context.Context, otp *model.Otp) error
	// LatestUnverified returns the most recent unverified OTP row for a user.
	LatestUnverified(ctx context.Context, userID uuid.UUID) (*model.Otp, error)
	Update(ctx context.Context, otp *model.Otp) error
}
