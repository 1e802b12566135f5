package types

import "time"

// Roles assignable to a user. The set is fixed at deploy time.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address, unique across accounts.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the
	// system (e.g., "admin", "user", "guest").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Active reports whether the account may authenticate. Accounts are
	// soft-deactivated rather than deleted.
	Active bool `json:"active" db:"active"`

	// AvatarKey is the object key of the user's current avatar, empty when
	// no avatar has been uploaded.
	AvatarKey string `json:"avatar_key,omitempty" db:"avatar_key"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// LastLoginAt records the most recent successful login, if any.
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// ValidRole reports whether role is one of the deploy-time role tags.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}
