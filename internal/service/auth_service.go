package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/pkg/crypto"
	jwtpkg "github.com/Really-Great-Tech/chareli-backend/pkg/jwt"
)

// TokenSet represents a set of tokens returned after authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

const refreshKeyPrefix = "refresh:"

type AuthService interface {
	// RegisterPlayer self-registers a new player account. Duplicate email or
	// phone is checked across all rows, soft-deleted included.
	RegisterPlayer(ctx context.Context, name, email, phone, password string, isAdult bool) (*model.User, error)
	// Login verifies credentials by email or phone and returns the user for
	// the controller's OTP step. Unknown identity and wrong password yield
	// the same error.
	Login(ctx context.Context, identifier, password string) (*model.User, error)
	// IssueTokens mints an access/refresh pair once the OTP step passed.
	IssueTokens(ctx context.Context, user *model.User) (*TokenSet, error)
	// IssueTokensForUser loads the user and marks them verified before
	// minting tokens. Used by the OTP verification step.
	IssueTokensForUser(ctx context.Context, userID uuid.UUID) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	stateStore repository.StateStore
	jwtManager *jwtpkg.Manager
}

func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		stateStore: stateStore,
		jwtManager: jwtManager,
	}
}

func (s *authService) RegisterPlayer(ctx context.Context, name, email, phone, password string, isAdult bool) (*model.User, error) {
	// Uniqueness spans soft-deleted rows: restoration is invitation-only, so
	// a colliding registration must fail rather than resurrect the account.
	if _, err := s.userRepo.GetByEmailAny(ctx, email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if phone != "" {
		if _, err := s.userRepo.GetByPhoneAny(ctx, phone); err == nil {
			return nil, ErrAlreadyRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check phone: %w", err)
		}
	}

	role, err := s.roleRepo.GetByName(ctx, model.RolePlayer)
	if err != nil {
		return nil, fmt.Errorf("load player role: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role,
		IsActive:     true,
		IsAdult:      isAdult,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetActiveByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.GetActiveByPhone(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Auto-deactivated accounts come back on a successful login.
	now := time.Now()
	user.IsActive = true
	user.LastLoggedIn = &now
	user.LastSeen = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update login state: %w", err)
	}
	return user, nil
}

func (s *authService) IssueTokens(ctx context.Context, user *model.User) (*TokenSet, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleName())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, claims, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// Track the JTI so the refresh token can be revoked.
	key := refreshKeyPrefix + claims.ID
	if err := s.stateStore.Set(ctx, key, []byte(user.ID.String()), s.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authService) IssueTokensForUser(ctx context.Context, userID uuid.UUID) (*TokenSet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
	}
	return s.IssueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	key := refreshKeyPrefix + claims.ID
	exists, err := s.stateStore.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !exists {
		return nil, ErrRefreshTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Rotate: the old token is consumed before the new pair is issued.
	if err := s.stateStore.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.IssueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return ErrRefreshTokenInvalid
	}
	return s.stateStore.Delete(ctx, refreshKeyPrefix+claims.ID)
}
