package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

const sessionPrefix = "session:"

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// StoreSession mirrors an issued auth token so it can be revoked before
// its JWT expiry. A nil client means redis is not configured; sessions
// then live only as signed tokens.
func StoreSession(ctx context.Context, token string, userID int, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, sessionPrefix+token, userID, ttl).Err(); err != nil {
		log.Error().Err(err).Msg("failed to store session in redis")
	}
}

// SessionValid reports whether the token is still mirrored. Without redis
// every signed token is accepted until it expires.
func SessionValid(ctx context.Context, token string) bool {
	if Rdb == nil {
		return true
	}
	_, err := Rdb.Get(ctx, sessionPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to check session in redis")
		return true
	}
	return true
}

func RevokeSession(ctx context.Context, token string) error {
	if Rdb == nil {
		return nil
	}
	if err := Rdb.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
