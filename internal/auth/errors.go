package auth

import "errors"

// Authentication failures. Handlers report these uniformly to the client;
// the distinct values exist for internal classification.
var (
	// ErrInvalidCredentials covers both unknown users and wrong passwords
	// so responses carry no user-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned when a deactivated account attempts
	// to authenticate.
	ErrAccountInactive = errors.New("account inactive")

	// ErrDuplicateUser is returned when registration collides with an
	// existing username or email.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrWeakPassword is returned when a password fails the strength policy.
	ErrWeakPassword = errors.New("password does not meet strength requirements")

	// ErrTokenInvalid covers malformed tokens, bad signatures, and tampered
	// payloads. All three are deliberately indistinguishable to callers.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a well-signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked is returned when a token has been blacklisted before
	// its natural expiry.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrUserInactive is returned when the user referenced by an otherwise
	// valid token has been deactivated.
	ErrUserInactive = errors.New("user inactive")
)
