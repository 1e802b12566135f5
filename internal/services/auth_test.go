package services

import (
	"context"
	"testing"
	"time"

	"github.com/moling/userservice/internal/auth"
	"github.com/moling/userservice/internal/store/storetest"
	"github.com/moling/userservice/types"
	"github.com/stretchr/testify/require"
)

func newAuthService(repo UserRepository) *AuthService {
	tokens := auth.NewTokenService("test-signing-secret", time.Minute, 0, repo, nil)
	return NewAuthService(repo, tokens)
}

func TestRegisterDefaultsRole(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)
	require.Equal(t, types.RoleUser, user.Role)
	require.True(t, user.Active)
	require.NotZero(t, user.ID)
	require.Empty(t, user.AvatarKey)
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	repo := storetest.NewMemory()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, "Abcdef12", stored.PasswordHash)
	require.True(t, auth.VerifyPassword("Abcdef12", stored.PasswordHash))
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "Abcdef12", "superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "weak", "")
	require.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "Abcdef12", "")
	require.ErrorIs(t, err, auth.ErrDuplicateUser)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "Abcdef12", "")
	require.ErrorIs(t, err, auth.ErrDuplicateUser)
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := storetest.NewMemory()
	svc := newAuthService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice", "Abcdef12")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, registered.ID, user.ID)

	tokens := auth.NewTokenService("test-signing-secret", time.Minute, 0, repo, nil)
	identity, err := tokens.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, identity.UserID)
	require.Equal(t, types.RoleUser, identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "Wrongpw12")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthService(storetest.NewMemory())

	_, _, err := svc.Login(context.Background(), "nobody", "Abcdef12")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := storetest.NewMemory()
	svc := newAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(ctx, user.ID, false))

	_, _, err = svc.Login(ctx, "alice", "Abcdef12")
	require.ErrorIs(t, err, auth.ErrAccountInactive)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	repo := storetest.NewMemory()
	svc := newAuthService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "Abcdef12")
	require.NoError(t, err)

	// The timestamp is written from a goroutine after Login returns.
	require.Eventually(t, func() bool {
		user, err := repo.GetByID(ctx, registered.ID)
		return err == nil && user.LastLoginAt != nil
	}, time.Second, 10*time.Millisecond)
}

func TestUserServiceActivateDeactivate(t *testing.T) {
	repo := storetest.NewMemory()
	authSvc := newAuthService(repo)
	userSvc := NewUserService(repo)
	ctx := context.Background()

	user, err := authSvc.Register(ctx, "alice", "alice@example.com", "Abcdef12", "")
	require.NoError(t, err)

	require.NoError(t, userSvc.Deactivate(ctx, user.ID))
	got, err := userSvc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, got.Active)

	require.NoError(t, userSvc.Activate(ctx, user.ID))
	got, err = userSvc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.Active)
}
