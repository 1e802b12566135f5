package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/moling/userservice/config"
	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "token_blacklist:"

// Blacklist records tokens revoked before their natural expiry.
type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisBlacklist keeps revoked tokens in Redis, each entry expiring together
// with the token itself. Entries are keyed by token digest so raw tokens are
// never stored.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(cfg config.RedisConfig) *RedisBlacklist {
	return &RedisBlacklist{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return b.client.Set(ctx, blacklistKey(token), 1, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping reports reachability of the Redis instance.
func (b *RedisBlacklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// NoopBlacklist is used when no Redis instance is configured; revocation
// before expiry is then unavailable and tokens stay valid until they expire.
type NoopBlacklist struct{}

func (NoopBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return nil
}

func (NoopBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return false, nil
}
