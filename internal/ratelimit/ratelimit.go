// Package ratelimit throttles credential endpoints. With Redis configured
// the window counters are shared across instances; without it a per-process
// in-memory limiter takes over.
package ratelimit

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"

	"github.com/tradegate/backoffice/internal/response"
)

// New limits each client IP to max requests per window on the routes it
// wraps. name keeps counters for different endpoint groups apart.
func New(rdb *redis.Client, name string, max int, window time.Duration) fiber.Handler {
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:        max,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return response.TooManyRequests(c)
			},
		})
	}
	return redisLimiter(rdb, name, max, window)
}

func redisLimiter(rdb *redis.Client, name string, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.IP())
		ctx := c.UserContext()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not lock everyone out.
			log.Printf("⚠️ rate limiter unavailable: %v", err)
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}
		if count > int64(max) {
			ttl, err := rdb.TTL(ctx, key).Result()
			if err == nil && ttl > 0 {
				c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			return response.TooManyRequests(c)
		}
		return c.Next()
	}
}
