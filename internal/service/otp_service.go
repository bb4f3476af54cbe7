package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/pkg/crypto"
)

type OtpService interface {
	// GenerateOtp creates and persists a code for the user, returning the
	// plaintext for dispatch.
	GenerateOtp(ctx context.Context, userID uuid.UUID, otpType model.OtpType) (string, error)
	// SendOtp dispatches a generated code over the requested channel.
	SendOtp(ctx context.Context, userID uuid.UUID, code string, otpType model.OtpType) error
	// VerifyOtp checks a submitted code against the latest unverified record.
	// An expired or mismatched code yields (false, nil), not an error.
	VerifyOtp(ctx context.Context, userID uuid.UUID, code string) (bool, error)
}

type otpService struct {
	userRepo    repository.UserRepository
	otpRepo     repository.OtpRepository
	mailer      Mailer
	smsVerifier SmsVerifier
	cfg         config.OTPConfig
}

func NewOtpService(
	userRepo repository.UserRepository,
	otpRepo repository.OtpRepository,
	mailer Mailer,
	smsVerifier SmsVerifier,
	cfg config.OTPConfig,
) OtpService {
	return &otpService{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		mailer:      mailer,
		smsVerifier: smsVerifier,
		cfg:         cfg,
	}
}

func (s *otpService) GenerateOtp(ctx context.Context, userID uuid.UUID, otpType model.OtpType) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	code := s.cfg.TestCode
	if !s.isTestIdentifier(user) {
		code, err = crypto.GenerateNumericCode(s.cfg.CodeLength)
		if err != nil {
			return "", fmt.Errorf("generate otp code: %w", err)
		}
	}

	otp := &model.Otp{
		UserID:      user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Type:        otpType,
		Secret:      code,
		ExpiresAt:   time.Now().Add(time.Duration(s.cfg.ExpiryMinutes) * time.Minute),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

func (s *otpService) SendOtp(ctx context.Context, userID uuid.UUID, code string, otpType model.OtpType) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	switch otpType {
	case model.OtpTypeEmail:
		if user.Email == "" {
			return fmt.Errorf("cannot send otp: user has no email address")
		}
		if err := s.mailer.SendOtpEmail(ctx, user.Email, code); err != nil {
			return fmt.Errorf("send otp email: %w", err)
		}
		return nil

	case model.OtpTypeSMS:
		if user.PhoneNumber == "" {
			return fmt.Errorf("cannot send otp: user has no phone number")
		}
		if !s.smsVerifier.IsConfigured() {
			return fmt.Errorf("cannot send otp: sms provider is not configured")
		}
		if err := s.smsVerifier.StartVerification(ctx, user.PhoneNumber); err != nil {
			return fmt.Errorf("send otp sms: %w", err)
		}
		// Twilio Verify holds the code; the stored secret becomes a sentinel
		// so verification is delegated to the provider.
		otp, err := s.otpRepo.LatestUnverified(ctx, userID)
		if err != nil {
			return fmt.Errorf("load otp record: %w", err)
		}
		otp.Secret = model.SecretTwilioVerify
		if err := s.otpRepo.Update(ctx, otp); err != nil {
			return fmt.Errorf("update otp record: %w", err)
		}
		return nil

	case model.OtpTypeNone:
		return nil
	}
	return fmt.Errorf("unsupported otp type %q", otpType)
}

func (s *otpService) VerifyOtp(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("load user: %w", err)
	}

	// Allow-listed test identifiers bypass stored records entirely.
	if s.isTestIdentifier(user) {
		return code == s.cfg.TestCode, nil
	}

	otp, err := s.otpRepo.LatestUnverified(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load otp record: %w", err)
	}

	if time.Now().After(otp.ExpiresAt) {
		return false, nil
	}

	if otp.Secret == model.SecretTwilioVerify {
		ok, err := s.smsVerifier.CheckVerification(ctx, otp.PhoneNumber, code)
		if err != nil {
			return false, fmt.Errorf("check otp with provider: %w", err)
		}
		if !ok {
			return false, nil
		}
	} else if subtle.ConstantTimeCompare([]byte(otp.Secret), []byte(code)) != 1 {
		return false, nil
	}

	otp.IsVerified = true
	if err := s.otpRepo.Update(ctx, otp); err != nil {
		return false, fmt.Errorf("mark otp verified: %w", err)
	}
	return true, nil
}

func (s *otpService) isTestIdentifier(user *model.User) bool {
	for _, id := range s.cfg.TestIdentifiers {
		if id == user.Email || id == user.PhoneNumber {
			return true
		}
	}
	return false
}
