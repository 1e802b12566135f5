package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordMinLength = 8

// HashPassword derives a bcrypt digest from the plaintext secret. The digest
// embeds its own salt and cost; the plaintext is never stored.
func HashPassword(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether secret matches digest. A malformed digest
// verifies as false rather than erroring, so callers cannot distinguish
// record corruption from a wrong password.
func VerifyPassword(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// CheckPasswordStrength enforces the registration password policy: minimum
// length plus at least one upper-case letter, one lower-case letter, and one
// digit.
func CheckPasswordStrength(secret string) error {
	if len(secret) < passwordMinLength {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
