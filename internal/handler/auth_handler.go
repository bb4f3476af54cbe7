package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/service"
	"github.com/Really-Great-Tech/chareli-backend/pkg/response"
)

type AuthHandler struct {
	authService       service.AuthService
	otpService        service.OtpService
	invitationService service.InvitationService
	resetService      service.ResetService
}

func NewAuthHandler(
	authService service.AuthService,
	otpService service.OtpService,
	invitationService service.InvitationService,
	resetService service.ResetService,
) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		otpService:        otpService,
		invitationService: invitationService,
		resetService:      resetService,
	}
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required,min=8"`
	IsAdult     bool   `json:"isAdult"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	OtpType    string `json:"otpType"`
}

type VerifyOtpRequest struct {
	UserID string `json:"userId" binding:"required"`
	Otp    string `json:"otp" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.authService.RegisterPlayer(
		c.Request.Context(), req.Name, req.Email, req.PhoneNumber, req.Password, req.IsAdult,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyRegistered),
			errors.Is(err, service.ErrPhoneInUse):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "registration failed")
		}
		return
	}

	response.Created(c, gin.H{"userId": user.ID, "email": user.Email})
}

// Login completes the password step only. On success the client receives the
// user id and must complete the OTP step before any token is issued.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
		} else {
			response.InternalError(c, "login failed")
		}
		return
	}

	otpType := model.OtpType(req.OtpType)
	if otpType == "" {
		otpType = model.OtpTypeEmail
	}

	code, err := h.otpService.GenerateOtp(c.Request.Context(), user.ID, otpType)
	if err != nil {
		response.InternalError(c, "failed to generate verification code")
		return
	}
	if err := h.otpService.SendOtp(c.Request.Context(), user.ID, code, otpType); err != nil {
		response.InternalError(c, "failed to send verification code")
		return
	}

	response.Success(c, gin.H{
		"userId":      user.ID,
		"email":       user.Email,
		"phoneNumber": user.PhoneNumber,
		"requiresOtp": true,
	})
}

// VerifyOtp completes the second login factor and issues the token pair.
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	ok, err := h.otpService.VerifyOtp(c.Request.Context(), userID, req.Otp)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, "verification failed")
		} else {
			response.InternalError(c, "verification failed")
		}
		return
	}
	if !ok {
		response.Unauthorized(c, "invalid or expired code")
		return
	}

	tokenSet, err := h.authService.IssueTokensForUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to issue tokens")
		return
	}

	response.Success(c, tokenSet)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokenSet, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			response.Unauthorized(c, "invalid refresh token")
		} else {
			response.InternalError(c, "token refresh failed")
		}
		return
	}

	response.Success(c, tokenSet)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.InternalError(c, "logout failed")
		return
	}

	response.Success(c, nil)
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

func (h *AuthHandler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	inviterID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	invitation, err := h.invitationService.CreateInvitation(
		c.Request.Context(), inviterID, req.Email, req.Role,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrForbiddenRole):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrAlreadyRegistered),
			errors.Is(err, service.ErrDuplicateInvitation):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to create invitation")
		}
		return
	}

	response.Created(c, gin.H{
		"email":     invitation.Email,
		"role":      req.Role,
		"expiresAt": invitation.ExpiresAt,
	})
}

func (h *AuthHandler) VerifyInvitation(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "missing invitation token")
		return
	}

	info, err := h.invitationService.VerifyInvitation(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationExpired):
			response.Error(c, 410, 410, "invitation has expired")
		case errors.Is(err, service.ErrInvitationAccepted):
			response.Conflict(c, "invitation already accepted")
		case errors.Is(err, service.ErrInvitationInvalid):
			response.NotFound(c, "invitation not found")
		default:
			response.InternalError(c, "failed to verify invitation")
		}
		return
	}

	response.Success(c, info)
}

type AcceptInvitationRequest struct {
	Name            string `json:"name" binding:"required"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// AcceptInvitation sets credentials for an invited account, restoring a
// soft-deleted account when the email matches one.
func (h *AuthHandler) AcceptInvitation(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "missing invitation token")
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Password != req.ConfirmPassword {
		response.BadRequest(c, "passwords do not match")
		return
	}

	user, err := h.invitationService.RegisterFromInvitation(
		c.Request.Context(), token, req.Name, req.PhoneNumber, req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationExpired):
			response.Error(c, 410, 410, "invitation has expired")
		case errors.Is(err, service.ErrInvitationAccepted):
			response.Conflict(c, "invitation already accepted")
		case errors.Is(err, service.ErrInvitationInvalid):
			response.NotFound(c, "invitation not found")
		case errors.Is(err, service.ErrPhoneInUse):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to accept invitation")
		}
		return
	}

	response.Created(c, gin.H{"userId": user.ID, "email": user.Email})
}

type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset always reports success so the endpoint cannot be used
// to probe which emails exist.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.resetService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.InternalError(c, "failed to process reset request")
		return
	}

	response.Success(c, gin.H{"message": "if the email exists, a reset link has been sent"})
}

func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "missing reset token")
		return
	}

	user, err := h.resetService.VerifyResetToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			response.Unauthorized(c, "invalid or expired reset token")
		} else {
			response.InternalError(c, "failed to verify reset token")
		}
		return
	}

	response.Success(c, gin.H{"email": user.Email})
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.resetService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			response.Unauthorized(c, "invalid or expired reset token")
		} else {
			response.InternalError(c, "failed to reset password")
		}
		return
	}

	response.Success(c, gin.H{"message": "password updated"})
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AuthHandler) ChangeUserRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	actorID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	user, err := h.invitationService.ChangeUserRole(c.Request.Context(), actorID, targetID, req.Role)
	if err != nil {
		h.writeRoleError(c, err)
		return
	}

	response.Success(c, gin.H{"userId": user.ID, "role": user.RoleName()})
}

func (h *AuthHandler) RevokeRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	actorID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	user, err := h.invitationService.RevokeRole(c.Request.Context(), actorID, targetID)
	if err != nil {
		h.writeRoleError(c, err)
		return
	}

	response.Success(c, gin.H{"userId": user.ID, "role": user.RoleName()})
}

func (h *AuthHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.invitationService.ListInvitations(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list invitations")
		return
	}
	response.Success(c, invitations)
}

func (h *AuthHandler) writeRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrSelfRoleChange):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbiddenRole):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, "failed to update role")
	}
}
