package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/pkg/crypto"
)

// InvitationInfo is what the acceptance page needs to render.
type InvitationInfo struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	UserExists bool   `json:"userExists"`
}

type InvitationService interface {
	// CreateInvitation opens a time-boxed, role-scoped invitation. Stale
	// accepted/expired rows for the email are replaced in the same
	// transaction as the new row.
	CreateInvitation(ctx context.Context, inviterID uuid.UUID, email, roleName string) (*model.Invitation, error)
	// VerifyInvitation validates a token and expires stale pending rows on read.
	VerifyInvitation(ctx context.Context, token string) (*InvitationInfo, error)
	// RegisterFromInvitation converts an accepted invitation into an active
	// user, restoring a soft-deleted account in place when one matches.
	RegisterFromInvitation(ctx context.Context, token, name, phone, password string) (*model.User, error)
	ChangeUserRole(ctx context.Context, actorID, targetID uuid.UUID, roleName string) (*model.User, error)
	// RevokeRole downgrades the target to player; it never deletes the account.
	RevokeRole(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error)
	ListInvitations(ctx context.Context) ([]model.Invitation, error)
}

type invitationService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	invitationRepo repository.InvitationRepository
	mailer         Mailer
	cfg            config.InviteConfig
	baseURL        string
	logger         *zap.Logger
}

func NewInvitationService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	invitationRepo repository.InvitationRepository,
	mailer Mailer,
	cfg config.InviteConfig,
	baseURL string,
	logger *zap.Logger,
) InvitationService {
	return &invitationService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		invitationRepo: invitationRepo,
		mailer:         mailer,
		cfg:            cfg,
		baseURL:        baseURL,
		logger:         logger,
	}
}

func (s *invitationService) CreateInvitation(ctx context.Context, inviterID uuid.UUID, email, roleName string) (*model.Invitation, error) {
	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load inviter: %w", err)
	}
	if err := checkRoleAuthority(inviter.RoleName(), roleName); err != nil {
		return nil, err
	}

	// Soft-deleted accounts may be re-invited; active ones may not.
	if existing, err := s.userRepo.GetByEmailAny(ctx, email); err == nil {
		if !existing.IsDeleted {
			return nil, ErrAlreadyRegistered
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	now := time.Now()
	if _, err := s.invitationRepo.GetPendingByEmail(ctx, email, now); err == nil {
		return nil, ErrDuplicateInvitation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRole
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	token, err := crypto.GenerateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	invitation := &model.Invitation{
		Email:       email,
		RoleID:      role.ID,
		Role:        role,
		Token:       token,
		ExpiresAt:   now.AddDate(0, 0, s.cfg.ExpiryDays),
		InvitedByID: inviter.ID,
	}
	if err := s.invitationRepo.ReplaceForEmail(ctx, invitation); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	link := fmt.Sprintf("%s/accept-invitation/%s", s.baseURL, token)
	if err := s.mailer.SendInvitationEmail(ctx, email, link, role.Name); err != nil {
		// The invitation row already exists; the email is best-effort.
		s.logger.Error("failed to send invitation email",
			zap.String("email", email), zap.Error(err))
	}
	return invitation, nil
}

func (s *invitationService) VerifyInvitation(ctx context.Context, token string) (*InvitationInfo, error) {
	invitation, err := s.loadPending(ctx, token)
	if err != nil {
		return nil, err
	}

	userExists := false
	if _, err := s.userRepo.GetByEmailAny(ctx, invitation.Email); err == nil {
		userExists = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	return &InvitationInfo{
		Email:      invitation.Email,
		Role:       invitation.Role.Name,
		UserExists: userExists,
	}, nil
}

func (s *invitationService) RegisterFromInvitation(ctx context.Context, token, name, phone, password string) (*model.User, error) {
	invitation, err := s.loadPending(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *model.User
	existing, err := s.userRepo.GetByEmailAny(ctx, invitation.Email)
	switch {
	case err == nil && existing.IsDeleted:
		// Restore the soft-deleted row in place rather than minting a new
		// primary key.
		existing.Name = name
		existing.PhoneNumber = phone
		existing.PasswordHash = hash
		existing.RoleID = invitation.RoleID
		existing.Role = invitation.Role
		existing.IsDeleted = false
		existing.DeletedAt = nil
		existing.IsActive = true
		existing.IsVerified = true
		existing.ResetToken = nil
		existing.ResetTokenExpiry = nil
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("restore user: %w", err)
		}
		user = existing

	case err == nil:
		// An active user appeared after the invitation was issued.
		return nil, ErrAlreadyRegistered

	case errors.Is(err, gorm.ErrRecordNotFound):
		if phone != "" {
			if _, err := s.userRepo.GetActiveByPhone(ctx, phone); err == nil {
				return nil, ErrPhoneInUse
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check phone: %w", err)
			}
		}
		user = &model.User{
			Name:         name,
			Email:        invitation.Email,
			PhoneNumber:  phone,
			PasswordHash: hash,
			RoleID:       invitation.RoleID,
			Role:         invitation.Role,
			IsActive:     true,
			IsVerified:   true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

	default:
		return nil, fmt.Errorf("check email: %w", err)
	}

	invitation.IsAccepted = true
	if err := s.invitationRepo.Update(ctx, invitation); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}
	return user, nil
}

func (s *invitationService) ChangeUserRole(ctx context.Context, actorID, targetID uuid.UUID, roleName string) (*model.User, error) {
	return s.setRole(ctx, actorID, targetID, roleName)
}

func (s *invitationService) RevokeRole(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error) {
	return s.setRole(ctx, actorID, targetID, model.RolePlayer)
}

func (s *invitationService) ListInvitations(ctx context.Context) ([]model.Invitation, error) {
	return s.invitationRepo.List(ctx)
}

func (s *invitationService) setRole(ctx context.Context, actorID, targetID uuid.UUID, roleName string) (*model.User, error) {
	if actorID == targetID {
		return nil, ErrSelfRoleChange
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load actor: %w", err)
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load target: %w", err)
	}

	// The actor needs authority over the target's current role as well as the
	// requested one: an admin may not demote another admin.
	if err := checkRoleAuthority(actor.RoleName(), target.RoleName()); err != nil {
		return nil, err
	}
	if err := checkRoleAuthority(actor.RoleName(), roleName); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRole
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	target.RoleID = role.ID
	target.Role = role
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	if err := s.mailer.SendRoleChangeEmail(ctx, target.Email, role.Name); err != nil {
		// The role change already persisted; the notification is best-effort.
		s.logger.Error("failed to send role change email",
			zap.String("email", target.Email), zap.Error(err))
	}
	return target, nil
}

// loadPending resolves a token to a pending invitation, flagging expired rows
// as it finds them.
func (s *invitationService) loadPending(ctx context.Context, token string) (*model.Invitation, error) {
	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationInvalid
		}
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	if invitation.IsAccepted {
		return nil, ErrInvitationAccepted
	}
	if invitation.IsExpired || !invitation.ExpiresAt.After(time.Now()) {
		if !invitation.IsExpired {
			invitation.IsExpired = true
			if err := s.invitationRepo.Update(ctx, invitation); err != nil {
				s.logger.Warn("failed to flag expired invitation",
					zap.String("email", invitation.Email), zap.Error(err))
			}
		}
		return nil, ErrInvitationExpired
	}
	return invitation, nil
}

// checkRoleAuthority enforces the invitation/role-change hierarchy: only
// admin and superadmin act at all, and admin never touches admin or
// superadmin level roles.
func checkRoleAuthority(actorRole, subjectRole string) error {
	if !model.IsValidRole(subjectRole) {
		return ErrInvalidRole
	}
	switch actorRole {
	case model.RoleSuperAdmin:
		return nil
	case model.RoleAdmin:
		if subjectRole == model.RoleAdmin || subjectRole == model.RoleSuperAdmin {
			return ErrForbiddenRole
		}
		return nil
	default:
		return ErrForbiddenRole
	}
}
