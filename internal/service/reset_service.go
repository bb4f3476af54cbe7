package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/pkg/crypto"
)

type ResetService interface {
	// RequestPasswordReset issues a reset token and mails a link. It reports
	// success whether or not the email matches an account.
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) (*model.User, error)
	// ResetPassword sets a new password and invalidates the token, so a
	// second call with the same token fails.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type resetService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      config.ResetConfig
	baseURL  string
	logger   *zap.Logger
}

func NewResetService(
	userRepo repository.UserRepository,
	mailer Mailer,
	cfg config.ResetConfig,
	baseURL string,
	logger *zap.Logger,
) ResetService {
	return &resetService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *resetService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Uniform response regardless of whether the account exists.
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	token, err := crypto.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	// Only the SHA-256 digest is stored; the plaintext goes out in the link.
	hash := crypto.HashToken(token)
	expiry := time.Now().Add(s.cfg.TokenTTL)
	user.ResetToken = &hash
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		// Still report success to the caller; failure here must not reveal
		// account existence.
		s.logger.Error("failed to send password reset email",
			zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

func (s *resetService) VerifyResetToken(ctx context.Context, token string) (*model.User, error) {
	hash := crypto.HashToken(token)
	user, err := s.userRepo.GetByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.ResetTokenExpiry == nil || !user.ResetTokenExpiry.After(time.Now()) {
		return nil, ErrResetTokenInvalid
	}
	return user, nil
}

func (s *resetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	// Empty hash plus an epoch expiry marks the token as used, distinct from
	// the never-requested NULL state.
	used := ""
	epoch := time.Unix(0, 0)
	user.ResetToken = &used
	user.ResetTokenExpiry = &epoch

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}
	return nil
}
