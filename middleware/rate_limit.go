package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"uptask/utils"
)

// AuthRateLimiter throttles the unauthenticated auth endpoints per client IP
// and route. Keys use the route pattern so a code carried in the path cannot
// open a fresh bucket. A nil client keeps the counters in memory.
func AuthRateLimiter(max int, client *redis.Client) fiber.Handler {
	cfg := limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s%s:%s", rateLimitPrefix, c.IP(), c.Route().Path)
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit_hit", map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get(fiber.HeaderUserAgent),
			})

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again in a minute",
			})
		},
	}
	if client != nil {
		cfg.Storage = NewRedisStorage(client)
	}
	return limiter.New(cfg)
}

const rateLimitPrefix = "rl:auth:"

// RedisStorage implements fiber.Storage for Redis on a client shared with
// other components. It only ever touches the limiter's keys.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

// Reset drops the limiter counters and nothing else.
func (r *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, rateLimitPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client belongs to the caller.
func (r *RedisStorage) Close() error {
	return nil
}
