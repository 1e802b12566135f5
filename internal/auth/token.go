package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/moling/userservice/internal/store"
	"github.com/moling/userservice/types"
)

const signingMethod = "HS256"

// Identity is the result of a successful token validation.
type Identity struct {
	UserID int
	Role   string
}

// CredentialStore is the user lookup the token service needs to re-check the
// active flag on every validation, so deactivation takes effect without a
// server-side token list.
type CredentialStore interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, expiring session tokens.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	leeway    time.Duration
	users     CredentialStore
	blacklist Blacklist
}

// NewTokenService constructs a TokenService. blacklist may be nil, in which
// case tokens are purely stateless and cannot be revoked before expiry.
func NewTokenService(secret string, ttl, leeway time.Duration, users CredentialStore, blacklist Blacklist) *TokenService {
	if blacklist == nil {
		blacklist = NoopBlacklist{}
	}
	return &TokenService{
		secret:    []byte(secret),
		ttl:       ttl,
		leeway:    leeway,
		users:     users,
		blacklist: blacklist,
	}
}

// Issue signs a token asserting the user's identity and role, expiring after
// the configured TTL. The result is safe for transport in an Authorization
// header.
func (s *TokenService) Issue(user types.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks the token signature first, then expiry (with leeway for
// clock skew), then revocation, and finally re-checks the referenced user's
// active flag. Malformed, tampered, and wrongly-signed tokens all yield the
// same ErrTokenInvalid.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return Identity{}, err
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID < 1 {
		return Identity{}, ErrTokenInvalid
	}

	revoked, err := s.blacklist.IsRevoked(ctx, tokenString)
	if err != nil {
		return Identity{}, err
	}
	if revoked {
		return Identity{}, ErrTokenRevoked
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrUserInactive
		}
		return Identity{}, err
	}
	if !user.Active {
		return Identity{}, ErrUserInactive
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}

// Revoke blacklists the token for its remaining lifetime. Tokens already past
// expiry are a no-op.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return err
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, tokenString, remaining)
}

func (s *TokenService) parse(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Signature problems take precedence over expiry so a tampered
		// token is never reported as merely expired.
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
