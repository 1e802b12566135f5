package services

import (
	"context"
	"time"

	"github.com/moling/userservice/types"
)

// UserRepository defines persistence operations for users. The backing store
// enforces username/email uniqueness with unique indexes as a backstop to
// the application-level checks.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetActive(ctx context.Context, id int, active bool) error
	SetAvatarKey(ctx context.Context, id int, key string) error
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Deactivate soft-disables an account. Outstanding tokens for the user stop
// validating on their next use; the record itself is preserved.
func (s *UserService) Deactivate(ctx context.Context, id int) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate re-enables a previously deactivated account.
func (s *UserService) Activate(ctx context.Context, id int) error {
	return s.repo.SetActive(ctx, id, true)
}
