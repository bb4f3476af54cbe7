package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type invitationFixture struct {
	users       *fakeUserRepo
	roles       *fakeRoleRepo
	invitations *fakeInvitationRepo
	mailer      *fakeMailer
	svc         InvitationService
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()
	f := &invitationFixture{
		users:       newFakeUserRepo(),
		roles:       newFakeRoleRepo(),
		invitations: &fakeInvitationRepo{},
		mailer:      &fakeMailer{},
	}
	f.svc = NewInvitationService(
		f.users, f.roles, f.invitations, f.mailer,
		config.InviteConfig{ExpiryDays: 7}, "https://portal.example.com", zap.NewNop(),
	)
	return f
}

func (f *invitationFixture) seedUser(t *testing.T, email, roleName string) *model.User {
	t.Helper()
	role, err := f.roles.GetByName(context.Background(), roleName)
	require.NoError(t, err)
	u := &model.User{
		Email:    email,
		RoleID:   role.ID,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("success sends email with acceptance link", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)

		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)
		require.Equal(t, "new@example.com", inv.Email)
		require.NotEmpty(t, inv.Token)
		require.True(t, inv.ExpiresAt.After(time.Now().AddDate(0, 0, 6)))

		require.Len(t, f.mailer.sent, 1)
		require.Equal(t, "invitation", f.mailer.sent[0].kind)
		require.Contains(t, f.mailer.sent[0].body, inv.Token)
	})

	t.Run("mailer failure does not fail the invitation", func(t *testing.T) {
		f := newInvitationFixture(t)
		f.mailer.err = context.DeadlineExceeded
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)

		_, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)
		require.Len(t, f.invitations.invitations, 1)
	})

	t.Run("rejects a second pending invitation for the same email", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)

		_, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)

		_, err = f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleViewer)
		require.ErrorIs(t, err, ErrDuplicateInvitation)
	})

	t.Run("rejects an email that already belongs to an active user", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		f.seedUser(t, "taken@example.com", model.RolePlayer)

		_, err := f.svc.CreateInvitation(ctx, admin.ID, "taken@example.com", model.RoleEditor)
		require.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("soft-deleted account may be re-invited", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		gone := f.seedUser(t, "gone@example.com", model.RolePlayer)
		require.NoError(t, f.users.SoftDelete(ctx, gone.ID))

		_, err := f.svc.CreateInvitation(ctx, admin.ID, "gone@example.com", model.RoleEditor)
		require.NoError(t, err)
	})

	t.Run("role hierarchy", func(t *testing.T) {
		tests := []struct {
			name       string
			actorRole  string
			targetRole string
			wantErr    error
		}{
			{"superadmin invites admin", model.RoleSuperAdmin, model.RoleAdmin, nil},
			{"superadmin invites superadmin", model.RoleSuperAdmin, model.RoleSuperAdmin, nil},
			{"admin invites editor", model.RoleAdmin, model.RoleEditor, nil},
			{"admin invites viewer", model.RoleAdmin, model.RoleViewer, nil},
			{"admin cannot invite admin", model.RoleAdmin, model.RoleAdmin, ErrForbiddenRole},
			{"admin cannot invite superadmin", model.RoleAdmin, model.RoleSuperAdmin, ErrForbiddenRole},
			{"editor cannot invite", model.RoleEditor, model.RoleViewer, ErrForbiddenRole},
			{"player cannot invite", model.RolePlayer, model.RolePlayer, ErrForbiddenRole},
			{"unknown role rejected", model.RoleAdmin, "owner", ErrInvalidRole},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				f := newInvitationFixture(t)
				actor := f.seedUser(t, "actor@example.com", tc.actorRole)

				_, err := f.svc.CreateInvitation(ctx, actor.ID, "invitee@example.com", tc.targetRole)
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
				} else {
					require.NoError(t, err)
				}
			})
		}
	})
}

func TestVerifyInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("pending invitation reports role and user existence", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)

		info, err := f.svc.VerifyInvitation(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, "new@example.com", info.Email)
		require.Equal(t, model.RoleEditor, info.Role)
		require.False(t, info.UserExists)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.VerifyInvitation(ctx, "no-such-token")
		require.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("past-deadline invitation is flagged expired on read", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)

		stored, err := f.invitations.GetByToken(ctx, inv.Token)
		require.NoError(t, err)
		stored.ExpiresAt = time.Now().Add(-time.Hour)
		require.NoError(t, f.invitations.Update(ctx, stored))

		_, err = f.svc.VerifyInvitation(ctx, inv.Token)
		require.ErrorIs(t, err, ErrInvitationExpired)

		stored, err = f.invitations.GetByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.True(t, stored.IsExpired)
	})
}

func TestRegisterFromInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a verified user and marks the invitation accepted", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)

		user, err := f.svc.RegisterFromInvitation(ctx, inv.Token, "New Person", "+15550001111", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, "new@example.com", user.Email)
		require.Equal(t, model.RoleEditor, user.RoleName())
		require.True(t, user.IsVerified)

		_, err = f.svc.RegisterFromInvitation(ctx, inv.Token, "Again", "", "other-pass")
		require.ErrorIs(t, err, ErrInvitationAccepted)
	})

	t.Run("restores a soft-deleted account in place", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		gone := f.seedUser(t, "gone@example.com", model.RolePlayer)
		require.NoError(t, f.users.SoftDelete(ctx, gone.ID))

		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "gone@example.com", model.RoleViewer)
		require.NoError(t, err)

		restored, err := f.svc.RegisterFromInvitation(ctx, inv.Token, "Back Again", "", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, gone.ID, restored.ID)
		require.False(t, restored.IsDeleted)
		require.Nil(t, restored.DeletedAt)
		require.Equal(t, model.RoleViewer, restored.RoleName())
	})

	t.Run("rejects a phone number already held by an active user", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		holder := f.seedUser(t, "holder@example.com", model.RolePlayer)
		holder.PhoneNumber = "+15550002222"
		require.NoError(t, f.users.Update(ctx, holder))

		inv, err := f.svc.CreateInvitation(ctx, admin.ID, "new@example.com", model.RoleEditor)
		require.NoError(t, err)

		_, err = f.svc.RegisterFromInvitation(ctx, inv.Token, "New Person", "+15550002222", "s3cret-pass")
		require.ErrorIs(t, err, ErrPhoneInUse)
	})
}

func TestChangeUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes a player to editor and a notification goes out", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		player := f.seedUser(t, "player@example.com", model.RolePlayer)

		updated, err := f.svc.ChangeUserRole(ctx, admin.ID, player.ID, model.RoleEditor)
		require.NoError(t, err)
		require.Equal(t, model.RoleEditor, updated.RoleName())

		require.Len(t, f.mailer.sent, 1)
		require.Equal(t, "role-change", f.mailer.sent[0].kind)
		require.Equal(t, "player@example.com", f.mailer.sent[0].to)
	})

	t.Run("admin cannot demote another admin", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		other := f.seedUser(t, "other@example.com", model.RoleAdmin)

		_, err := f.svc.ChangeUserRole(ctx, admin.ID, other.ID, model.RoleViewer)
		require.ErrorIs(t, err, ErrForbiddenRole)
	})

	t.Run("admin cannot promote to admin", func(t *testing.T) {
		f := newInvitationFixture(t)
		admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
		editor := f.seedUser(t, "editor@example.com", model.RoleEditor)

		_, err := f.svc.ChangeUserRole(ctx, admin.ID, editor.ID, model.RoleAdmin)
		require.ErrorIs(t, err, ErrForbiddenRole)
	})

	t.Run("superadmin may promote to admin", func(t *testing.T) {
		f := newInvitationFixture(t)
		root := f.seedUser(t, "root@example.com", model.RoleSuperAdmin)
		editor := f.seedUser(t, "editor@example.com", model.RoleEditor)

		updated, err := f.svc.ChangeUserRole(ctx, root.ID, editor.ID, model.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, updated.RoleName())
	})

	t.Run("self role change is rejected before anything else", func(t *testing.T) {
		f := newInvitationFixture(t)
		root := f.seedUser(t, "root@example.com", model.RoleSuperAdmin)

		_, err := f.svc.ChangeUserRole(ctx, root.ID, root.ID, model.RoleAdmin)
		require.ErrorIs(t, err, ErrSelfRoleChange)
	})
}

func TestRevokeRole(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture(t)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	editor := f.seedUser(t, "editor@example.com", model.RoleEditor)

	updated, err := f.svc.RevokeRole(ctx, admin.ID, editor.ID)
	require.NoError(t, err)
	require.Equal(t, model.RolePlayer, updated.RoleName())

	// The account survives the revocation.
	loaded, err := f.users.GetByID(ctx, editor.ID)
	require.NoError(t, err)
	require.False(t, loaded.IsDeleted)
}
