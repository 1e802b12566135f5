package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/moling/userservice/internal/auth"
	"github.com/moling/userservice/internal/store"
	"github.com/moling/userservice/types"
)

// ErrInvalidRole is returned when registration names a role outside the
// deploy-time set.
var ErrInvalidRole = errors.New("invalid role")

const lastLoginTimeout = 3 * time.Second

// AuthService composes the credential store, password hasher, and token
// service into the register/login/logout flows.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewAuthService(repo UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register creates a new active account. The default role is "user" when none
// is supplied. Colliding usernames or emails yield auth.ErrDuplicateUser.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (types.User, error) {
	if role == "" {
		role = types.RoleUser
	}
	if !types.ValidRole(role) {
		return types.User{}, ErrInvalidRole
	}
	if err := auth.CheckPasswordStrength(password); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.User{}, auth.ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, auth.ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hashed,
		Active:       true,
	})
	if err != nil {
		// Unique-index backstop for concurrent registrations.
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, auth.ErrDuplicateUser
		}
		return types.User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown users and wrong
// passwords both yield auth.ErrInvalidCredentials so responses carry no
// enumeration signal; deactivated accounts yield auth.ErrAccountInactive.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, auth.ErrInvalidCredentials
		}
		return "", types.User{}, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", types.User{}, auth.ErrInvalidCredentials
	}
	if !user.Active {
		return "", types.User{}, auth.ErrAccountInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", types.User{}, err
	}

	// Best-effort; a failure to record the timestamp never fails the login.
	go s.touchLastLogin(user.ID)

	return token, user, nil
}

// Logout revokes the token for its remaining lifetime. Without a configured
// blacklist this is a no-op and the token stays valid until expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *AuthService) touchLastLogin(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), lastLoginTimeout)
	defer cancel()
	if err := s.repo.TouchLastLogin(ctx, userID, time.Now()); err != nil {
		log.Printf("failed to record last login for user %d: %v", userID, err)
	}
}
