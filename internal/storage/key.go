package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AvatarKey derives the deterministic object key for a user's avatar. The
// derivation is backend-independent so the same avatar is addressable
// identically across backends, and the content hash makes replacement
// cache-busting.
func AvatarKey(userID int, contentHash, ext string) string {
	return fmt.Sprintf("avatars/%d/%s%s", userID, contentHash, ext)
}

// ContentHash returns the hex SHA-256 digest of data, the hash component of
// derived object keys.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidateKey rejects keys that are empty, absolute, contain backslashes, or
// carry dot segments that could escape a directory root. The check is shared
// by every backend so key acceptance never varies by configuration.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
