package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("email or phone number already registered")
	ErrPhoneInUse         = errors.New("phone number already in use")

	ErrInvalidRole    = errors.New("invalid role")
	ErrForbiddenRole  = errors.New("insufficient role to perform this action")
	ErrSelfRoleChange = errors.New("cannot modify your own role")

	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	ErrInvitationInvalid   = errors.New("invitation token is invalid")
	ErrInvitationAccepted  = errors.New("invitation has already been accepted")
	ErrInvitationExpired   = errors.New("invitation has expired")

	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

	ErrRefreshTokenInvalid = errors.New("refresh token invalid or revoked")

	ErrGameNotFound    = errors.New("game not found")
	ErrSessionNotFound = errors.New("session not found")
)
