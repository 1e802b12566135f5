package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvatarKeyDeterministic(t *testing.T) {
	data := []byte("avatar-bytes")
	first := AvatarKey(42, ContentHash(data), ".png")
	second := AvatarKey(42, ContentHash(data), ".png")

	require.Equal(t, first, second)
	require.Equal(t, "avatars/42/"+ContentHash(data)+".png", first)
}

func TestAvatarKeyVariesWithContent(t *testing.T) {
	first := AvatarKey(42, ContentHash([]byte("one")), ".png")
	second := AvatarKey(42, ContentHash([]byte("two")), ".png")
	require.NotEqual(t, first, second)
}

func TestContentHash(t *testing.T) {
	// SHA-256 of the empty input, a fixed value.
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(nil))
	require.Len(t, ContentHash([]byte("x")), 64)
}

func TestValidateKey(t *testing.T) {
	valid := []string{
		"avatars/1/abc.png",
		"a",
		"a/b/c",
	}
	for _, key := range valid {
		require.NoError(t, ValidateKey(key), "key %q", key)
	}

	invalid := []string{
		"",
		"/absolute/key",
		"avatars/../etc/passwd",
		"../escape",
		"avatars/./1",
		"avatars//1",
		"trailing/",
		`windows\separator`,
		"..",
	}
	for _, key := range invalid {
		require.ErrorIs(t, ValidateKey(key), ErrInvalidKey, "key %q", key)
	}
}
