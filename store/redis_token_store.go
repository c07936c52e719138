package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"uptask/utils"
)

const redisTokenPrefix = "confirm:"

// RedisTokenStore keeps each code under its own key and lets Redis expire it.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func (s *RedisTokenStore) Issue(ctx context.Context, userID uint) (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := utils.GenerateOTP()
		if err != nil {
			return "", err
		}

		ok, err := s.client.SetNX(ctx, redisTokenPrefix+code, userID, s.ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", errCodeExhausted
}

func (s *RedisTokenStore) Validate(ctx context.Context, code string) (uint, error) {
	if code == "" {
		return 0, ErrTokenNotFound
	}
	return parseUserID(s.client.Get(ctx, redisTokenPrefix+code).Result())
}

func (s *RedisTokenStore) Consume(ctx context.Context, code string) (uint, error) {
	if code == "" {
		return 0, ErrTokenNotFound
	}
	return parseUserID(s.client.GetDel(ctx, redisTokenPrefix+code).Result())
}

// PurgeExpired is a no-op: Redis expires keys on its own.
func (s *RedisTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func parseUserID(value string, err error) (uint, error) {
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
